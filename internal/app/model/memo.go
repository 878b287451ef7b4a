package model

import "time"

// Memo is one business-license payment record. Memos are append-only: the
// import path never deduplicates them, so re-importing a sheet adds new rows.
type Memo struct {
	ID              string    `gorm:"primarykey;type:varchar(36)" json:"id"`
	Address         string    `gorm:"type:text" json:"address"` // derived from street + number + clarification
	Type            string    `gorm:"type:varchar(20)" json:"type"`
	Period          string    `gorm:"type:varchar(20)" json:"period"`
	Capital         float64   `json:"capital"`
	TaxableAmount   float64   `json:"taxable_amount"`
	Total           float64   `json:"total"`
	Issuance        int       `json:"issuance"`
	BusinessSector  string    `json:"business_sector"`
	AdditionalTaxID *string   `gorm:"type:varchar(30)" json:"additional_tax_id"`
	LocalID         *string   `gorm:"index;type:varchar(36)" json:"local_id"`
	Local           *Local    `gorm:"foreignKey:LocalID" json:"local,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func (Memo) TableName() string {
	return "memos"
}
