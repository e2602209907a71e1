package models

import "time"

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
	TransactionTypeMove    TransactionType = "move"
)

// Transaction is the single source of truth for all money movement.
// Amounts are non-negative integers in the smallest currency unit; the
// sign of a row's contribution to a fund balance is determined by its
// type and by which side of a move the fund is on.
type Transaction struct {
	Base
	GroupID     string          `gorm:"type:uuid;not null;index" json:"group_id"`
	Type        TransactionType `gorm:"not null" json:"type"`
	Amount      int64           `gorm:"type:bigint;not null" json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `gorm:"column:transaction_date;not null;index" json:"transaction_date"`
	FundID      string          `gorm:"type:uuid;not null;index" json:"fund_id"`
	MemberID    *string         `gorm:"type:uuid" json:"member_id,omitempty"`
	TagID       *string         `gorm:"type:uuid" json:"tag_id,omitempty"`

	// Destination fund, set only for type=move.
	ToFundID *string `gorm:"type:uuid;index" json:"to_fund_id,omitempty"`

	Fund   Fund    `gorm:"foreignKey:FundID;constraint:OnDelete:CASCADE" json:"fund,omitempty"`
	ToFund *Fund   `gorm:"foreignKey:ToFundID;constraint:OnDelete:CASCADE" json:"to_fund,omitempty"`
	Member *Member `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"member,omitempty"`
	Tag    *Tag    `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE" json:"tag,omitempty"`
}
