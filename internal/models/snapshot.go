package models

import (
	"time"

	"fundpool/internal/uuid"

	"gorm.io/gorm"
)

// Snapshot is an immutable point-in-time copy of every fund balance in a
// group. Balance is the total across all funds at capture time. Snapshots
// are never mutated; they can only be deleted wholesale, which cascades to
// their FundSnapshot children.
type Snapshot struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID   string    `gorm:"type:uuid;not null;index" json:"group_id"`
	Balance   int64     `gorm:"type:bigint;not null" json:"balance"`
	CreatedAt time.Time `json:"created_at"`

	Funds []FundSnapshot `gorm:"foreignKey:SnapshotID;constraint:OnDelete:CASCADE" json:"funds,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (s *Snapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New()
	}
	return nil
}

// FundSnapshot is one fund's captured balance within a snapshot.
type FundSnapshot struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	SnapshotID string `gorm:"type:uuid;not null;index" json:"snapshot_id"`
	FundID     string `gorm:"type:uuid;not null" json:"fund_id"`
	Balance    int64  `gorm:"type:bigint;not null" json:"balance"`

	// Joined fund name for display, not a column.
	FundName string `gorm:"-" json:"fund_name,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (f *FundSnapshot) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New()
	}
	return nil
}
