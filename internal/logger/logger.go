package logger

import (
	"strings"

	"go.uber.org/zap"
)

var Log = zap.NewNop()

// Init replaces the no-op logger. "development" and "dev" get a console
// logger at debug level; anything else gets the production JSON logger.
func Init(env string) {
	switch strings.ToLower(env) {
	case "development", "dev":
		Log = zap.Must(zap.NewDevelopment())
	default:
		Log = zap.Must(zap.NewProduction())
	}
}

func Sugar() *zap.SugaredLogger {
	return Log.Sugar()
}
