package model

// PayTime is the decomposed payment date paired one-to-one with a Memo.
// Deliberately no declared association: pay times are bulk-inserted ahead of
// their memos inside the same chunk, so the schema must not enforce the
// reference.
type PayTime struct {
	MemoID string `gorm:"primarykey;type:varchar(36)" json:"memo_id"`
	Year   int    `json:"year"`
	Month  int    `json:"month"`
	Day    int    `json:"day"`
}

func (PayTime) TableName() string {
	return "pay_times"
}
