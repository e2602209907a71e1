package models

// Member is a person in a group. Members participate in funds through
// FundMember rows and can be attached to transactions they paid.
type Member struct {
	Base
	GroupID string `gorm:"type:uuid;not null;index" json:"group_id"`
	Name    string `gorm:"not null" json:"name"`
	Role    string `json:"role,omitempty"`

	Transactions []Transaction `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"transactions,omitempty"`
	Memberships  []FundMember  `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"memberships,omitempty"`
}
