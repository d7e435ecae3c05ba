package models

import "time"

type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusCompleted, TransactionStatusFailed:
		return true
	}
	return false
}

type Transaction struct {
	ID            uint              `json:"id" gorm:"primaryKey"`
	OrderID       uint              `json:"orderId" gorm:"not null;index"`
	Amount        int64             `json:"amount" gorm:"not null"`
	PaymentMethod PaymentMethod     `json:"paymentMethod" gorm:"not null"`
	Status        TransactionStatus `json:"status" gorm:"not null"`
	CreatedAt     time.Time         `json:"createdAt" gorm:"index"`
}

type NewTransaction struct {
	OrderID       uint
	Amount        int64
	PaymentMethod PaymentMethod
	Status        TransactionStatus
}
