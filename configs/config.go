package configs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Env  string `mapstructure:"env"`
		Seed bool   `mapstructure:"seed"`
	} `mapstructure:"app"`
	HTTP struct {
		Addr         string        `mapstructure:"addr"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
		IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	} `mapstructure:"http"`
	DB  DBConfig `mapstructure:"db"`
	JWT struct {
		SECRET string        `mapstructure:"secret"`
		TTL    time.Duration `mapstructure:"ttl"`
	} `mapstructure:"jwt"`
	Wallet struct {
		StartingBalance   int64         `mapstructure:"starting_balance"`
		MaxTransferAmount int64         `mapstructure:"max_transfer_amount"`
		OperationTimeout  time.Duration `mapstructure:"operation_timeout"`
	} `mapstructure:"wallet"`
	RabbitMQ struct {
		URL      string `mapstructure:"url"`
		Exchange string `mapstructure:"exchange"`
	} `mapstructure:"rabbitmq"`
	Outbox struct {
		Interval    time.Duration `mapstructure:"interval"`
		BatchSize   int           `mapstructure:"batch_size"`
		MaxAttempts int           `mapstructure:"max_attempts"`
	} `mapstructure:"outbox"`
	Admin struct {
		Emails []string `mapstructure:"emails"`
	} `mapstructure:"admin"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "production")
	v.SetDefault("app.seed", false)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("wallet.starting_balance", 10000)
	v.SetDefault("wallet.max_transfer_amount", 100000)
	v.SetDefault("wallet.operation_timeout", 5*time.Second)
	v.SetDefault("rabbitmq.exchange", "wallet.events")
	v.SetDefault("outbox.interval", 2*time.Second)
	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.max_attempts", 10)
}

// LoadConfig reads config.yaml from the given directories (./configs when
// none are given). Values can be overridden from the environment, e.g.
// DB_DSN or JWT_SECRET; a .env file in the working directory is loaded first.
func LoadConfig(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if len(paths) == 0 {
		paths = []string{"./configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	for _, key := range []string{"db.dsn", "jwt.secret", "rabbitmq.url", "admin.emails"} {
		_ = v.BindEnv(key)
	}

	var fileLookupError viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &fileLookupError) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DB.DSN == "" {
		return errors.New("db.dsn is required")
	}
	if c.JWT.SECRET == "" {
		return errors.New("jwt.secret is required")
	}
	if c.Wallet.StartingBalance < 0 {
		return errors.New("wallet.starting_balance must not be negative")
	}
	return nil
}

// IsAdmin reports whether email is listed under admin.emails.
func (c *Config) IsAdmin(email string) bool {
	for _, e := range c.Admin.Emails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}
