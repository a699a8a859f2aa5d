package models

import (
	"time"

	"github.com/google/uuid"
)

type TxKind string

const (
	KindPayment TxKind = "payment"
	KindRequest TxKind = "request"
)

type TxStatus string

const (
	StatusSuccess  TxStatus = "success"
	StatusPending  TxStatus = "pending"
	StatusAccepted TxStatus = "accepted"
	StatusRejected TxStatus = "rejected"
)

// Terminal reports whether no further transition is allowed from s.
func (s TxStatus) Terminal() bool {
	return s != StatusPending
}

const (
	MethodOnline  = "online"
	MethodOffline = "offline"
	MethodRequest = "request"
	MethodQR      = "qr"
)

// Account is a user's wallet. Balance is kept in minor units.
type Account struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone     string    `gorm:"size:10" json:"phone,omitempty"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Balance   int64     `gorm:"not null;default:0;check:balance >= 0" json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Transaction is a single ledger record. A payment references both parties
// in one row; for a request SenderID is the requester and ReceiverID is the
// account asked to pay.
type Transaction struct {
	ID             uint64     `gorm:"primaryKey" json:"id"`
	SenderID       uint64     `gorm:"not null;index;uniqueIndex:idx_transactions_sender_idem,priority:1" json:"senderId"`
	ReceiverID     uint64     `gorm:"not null;index" json:"receiverId"`
	Kind           TxKind     `gorm:"size:16;not null" json:"kind"`
	Amount         int64      `gorm:"not null;check:amount > 0" json:"amount"`
	Status         TxStatus   `gorm:"size:16;not null;index" json:"status"`
	Method         string     `gorm:"size:32;not null;default:online" json:"method"`
	Description    string     `gorm:"size:500" json:"description,omitempty"`
	IdempotencyKey *string    `gorm:"size:128;uniqueIndex:idx_transactions_sender_idem,priority:2" json:"idempotencyKey,omitempty"`
	RequestID      *uint64    `gorm:"index" json:"requestId,omitempty"`
	CreatedAt      time.Time  `gorm:"index" json:"createdAt"`
	ResolvedAt     *time.Time `json:"resolvedAt,omitempty"`

	Sender   *Account `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver *Account `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}

type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "pending"
	OutboxPublished OutboxStatus = "published"
	OutboxFailed    OutboxStatus = "failed"
)

// OutboxEvent is written in the same database transaction as the change it
// describes and published asynchronously.
type OutboxEvent struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Type        string       `gorm:"size:64;not null" json:"type"`
	Payload     string       `gorm:"type:jsonb;not null" json:"payload"`
	Status      OutboxStatus `gorm:"size:16;not null;index" json:"status"`
	Attempts    int          `gorm:"not null;default:0" json:"attempts"`
	LastError   string       `gorm:"size:500" json:"lastError,omitempty"`
	CreatedAt   time.Time    `gorm:"index" json:"createdAt"`
	PublishedAt *time.Time   `json:"publishedAt,omitempty"`
}
