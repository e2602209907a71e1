package models

import "time"

// ExpensePlan is a monthly spending ceiling for a tag. "Spent" is never
// stored: it is the sum of expense transactions sharing the plan's tag in
// the month of FromDate, computed by the plan service.
type ExpensePlan struct {
	Base
	UserID   string    `gorm:"type:uuid;not null;index" json:"user_id"`
	TagID    string    `gorm:"type:uuid;not null;index" json:"tag_id"`
	FromDate time.Time `gorm:"not null" json:"from_date"`
	ToDate   time.Time `gorm:"not null" json:"to_date"`
	Value    int64     `gorm:"type:bigint;not null" json:"value"`

	Tag Tag `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE" json:"tag,omitempty"`
}

// PlanStatus classifies plan-vs-actual spend for display.
type PlanStatus string

const (
	PlanStatusOK   PlanStatus = "ok"   // spent <= 50% of budget
	PlanStatusWarn PlanStatus = "warn" // 50% < spent <= 90%
	PlanStatusOver PlanStatus = "over" // spent > 90%
)
