package model

import "time"

// Local is a licensed business location. The license number is the business
// key; the national id may legitimately repeat (sentinel "-" for missing or
// zero ids) and carries no uniqueness constraint.
type Local struct {
	ID               string          `gorm:"primarykey;type:varchar(36)" json:"id"`
	NationalID       string          `gorm:"index;type:varchar(20)" json:"national_id"`
	Name             string          `json:"name"`
	LicenseNumber    string          `gorm:"uniqueIndex;type:varchar(30);not null" json:"license_number"`
	RepresentativeID *string         `gorm:"index;type:varchar(36)" json:"representative_id"` // set at creation, never reassigned by re-import
	Representative   *Representative `gorm:"foreignKey:RepresentativeID" json:"representative,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

func (Local) TableName() string {
	return "locales"
}
