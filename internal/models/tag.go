package models

// Reserved tag IDs seeded by the initial migration. Transactions created by
// the debt screens default to one of these so debt totals can tell lending
// from repayment apart.
const (
	TagIDLent   = "00000000-0000-7000-8000-000000000001"
	TagIDRepaid = "00000000-0000-7000-8000-000000000002"
)

// Tag is a free-form category, optionally attached to transactions and
// expense plans.
type Tag struct {
	Base
	Name string `gorm:"not null" json:"name"`
}

// Reserved reports whether the tag is one of the seeded system tags,
// which cannot be deleted.
func (t *Tag) Reserved() bool {
	return t.ID == TagIDLent || t.ID == TagIDRepaid
}
