package wallet

import "time"

const (
	EventTransferCompleted = "transfer.completed"
	EventRequestCreated    = "request.created"
	EventRequestAccepted   = "request.accepted"
	EventRequestRejected   = "request.rejected"
)

type TransferEvent struct {
	TransactionID uint64    `json:"transactionId"`
	SenderID      uint64    `json:"senderId"`
	ReceiverID    uint64    `json:"receiverId"`
	Amount        int64     `json:"amount"`
	Method        string    `json:"method"`
	RequestID     *uint64   `json:"requestId,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

type RequestEvent struct {
	RequestID   uint64    `json:"requestId"`
	RequesterID uint64    `json:"requesterId"`
	PayerID     uint64    `json:"payerId"`
	Amount      int64     `json:"amount"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurredAt"`
}
