package models

import "time"

// Debt is a named lending/borrowing case. Its net balance is the signed sum
// of the transactions linked through DebtDetail rows: income means being
// repaid, expense means lending out.
type Debt struct {
	Base
	UserID      string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Description string     `gorm:"not null" json:"description"`
	PromiseDate *time.Time `json:"promise_date,omitempty"`

	Details []DebtDetail `gorm:"foreignKey:DebtID;constraint:OnDelete:CASCADE" json:"details,omitempty"`
}

// DebtDetail links a transaction (the actual money movement) to a debt case.
type DebtDetail struct {
	Base
	TransactionID string `gorm:"type:uuid;not null;index" json:"transaction_id"`
	DebtID        string `gorm:"type:uuid;not null;index" json:"debt_id"`

	Transaction Transaction `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"transaction,omitempty"`
}
