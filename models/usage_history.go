package models

import "time"

const UsageHistoryTable = "lab_usage_history"

// UsageHistory is an append-only ledger row. One row is written per item at
// approval (full requested quantity) and at return time for the consumed
// remainder. Rows are never updated or deleted.
type UsageHistory struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	ChemicalID  string    `gorm:"type:uuid;index;not null" json:"chemicalId"`
	BorrowingID string    `gorm:"type:uuid;index" json:"borrowingId"`
	UserID      string    `gorm:"type:uuid;index;not null" json:"userId"`
	Quantity    float64   `gorm:"type:numeric(12,3);not null" json:"quantity"`
	RecordedAt  time.Time `gorm:"index;not null" json:"recordedAt"`

	CreatedAt time.Time `json:"createdAt"`
}

func (UsageHistory) TableName() string { return UsageHistoryTable }
