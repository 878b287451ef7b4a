package model

import "time"

// Representative is the legal representative optionally associated with a
// Local. Created once per distinct national id by the import path, never
// updated by it.
type Representative struct {
	ID         string    `gorm:"primarykey;type:varchar(36)" json:"id"`
	NationalID *string   `gorm:"uniqueIndex;type:varchar(20)" json:"national_id"` // nullable: absent means "no representative"
	Name       string    `gorm:"not null" json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Representative) TableName() string {
	return "representantes"
}
