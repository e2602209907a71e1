package models

import "time"

// Fund is a named money pool within a group. Its balance is never stored;
// it is always derived from the transaction log (see the ledger service).
type Fund struct {
	Base
	GroupID string `gorm:"type:uuid;not null;index" json:"group_id"`
	Name    string `gorm:"not null" json:"name"`

	Memberships []FundMember   `gorm:"foreignKey:FundID;constraint:OnDelete:CASCADE" json:"memberships,omitempty"`
	Snapshots   []FundSnapshot `gorm:"foreignKey:FundID;constraint:OnDelete:CASCADE" json:"-"`
}

// FundMember is the membership join between a fund and a member. Its
// existence means the member participates in that fund; it plays no part
// in balance computation.
type FundMember struct {
	FundID   string    `gorm:"type:uuid;primaryKey" json:"fund_id"`
	MemberID string    `gorm:"type:uuid;primaryKey" json:"member_id"`
	JoinedAt time.Time `gorm:"not null" json:"joined_at"`

	Fund   Fund   `gorm:"foreignKey:FundID;constraint:OnDelete:CASCADE" json:"fund,omitempty"`
	Member Member `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"member,omitempty"`
}

// TableName overrides the default pluralization for the composite join table.
func (FundMember) TableName() string { return "fund_members" }
