// Package creditscore derives a bounded score from an account's balance and
// ledger history. It only reads; nothing here mutates wallet state.
package creditscore

import (
	"github.com/GiorgiUbiria/ewallet/internal/models"
	"github.com/GiorgiUbiria/ewallet/internal/wallet"
)

const (
	BaseScore = 700
	MinScore  = 300
	MaxScore  = 900
)

type Metrics struct {
	TotalTransactions   int   `json:"totalTransactions"`
	Balance             int64 `json:"balance"`
	TotalSentAmount     int64 `json:"totalSentAmount"`
	TotalReceivedAmount int64 `json:"totalReceivedAmount"`
	FailedTransactions  int   `json:"failedTransactions"`
	PendingRequests     int   `json:"pendingRequests"`
}

type Factor struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

type Report struct {
	CreditScore int      `json:"creditScore"`
	Metrics     Metrics  `json:"metrics"`
	Factors     []Factor `json:"factors"`
}

func Collect(accountID uint64, balance int64, records []models.Transaction) Metrics {
	m := Metrics{TotalTransactions: len(records), Balance: balance}
	for _, t := range records {
		switch t.Status {
		case models.StatusSuccess:
			if t.Kind != models.KindPayment {
				continue
			}
			if t.SenderID == accountID {
				m.TotalSentAmount += t.Amount
			}
			if t.ReceiverID == accountID {
				m.TotalReceivedAmount += t.Amount
			}
		case models.StatusRejected:
			m.FailedTransactions++
		case models.StatusPending:
			m.PendingRequests++
		}
	}
	return m
}

// FromSummary builds metrics from an aggregate over the whole ledger.
func FromSummary(balance int64, sum wallet.LedgerSummary) Metrics {
	return Metrics{
		TotalTransactions:   int(sum.Total),
		Balance:             balance,
		TotalSentAmount:     sum.SentAmount,
		TotalReceivedAmount: sum.ReceivedAmount,
		FailedTransactions:  int(sum.Rejected),
		PendingRequests:     int(sum.Pending),
	}
}

// Calculate scores an account. Records should be every ledger entry the
// account took part in.
func Calculate(accountID uint64, balance int64, records []models.Transaction) Report {
	return Score(Collect(accountID, balance, records))
}

func Score(m Metrics) Report {
	score := BaseScore
	var factors []Factor
	add := func(name string, points int) {
		score += points
		factors = append(factors, Factor{Name: name, Points: points})
	}

	if m.TotalTransactions > 3 {
		add("active_account", 20)
	}

	switch {
	case m.Balance > 10000:
		add("excellent_balance", 30)
	case m.Balance > 5000:
		add("good_balance", 20)
	case m.Balance > 3000:
		add("fair_balance", 10)
	}

	switch {
	case m.TotalReceivedAmount > 10000:
		add("high_income", 25)
	case m.TotalReceivedAmount > 5000:
		add("good_income", 15)
	case m.TotalReceivedAmount > 2000:
		add("decent_income", 10)
	}

	switch {
	case m.Balance < 1000:
		add("very_low_balance", -25)
	case m.Balance < 2000:
		add("low_balance", -10)
	}

	if m.TotalSentAmount > m.TotalReceivedAmount && m.TotalSentAmount > 5000 {
		add("negative_cash_flow", -15)
	}

	score = max(MinScore, min(MaxScore, score))
	return Report{CreditScore: score, Metrics: m, Factors: factors}
}
