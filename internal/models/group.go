package models

// Group is the tenant boundary: every member, fund, and transaction belongs
// to exactly one group. Deleting a group cascades to all of them.
type Group struct {
	Base
	UserID      string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`

	Members      []Member      `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Funds        []Fund        `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"funds,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"transactions,omitempty"`
}
