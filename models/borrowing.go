package models

import "time"

const BorrowingTable = "lab_borrowings"
const BorrowingItemTable = "lab_borrowing_items"

type BorrowingStatus string

const (
	StatusPending  BorrowingStatus = "PENDING"
	StatusApproved BorrowingStatus = "APPROVED"
	StatusRejected BorrowingStatus = "REJECTED"
	StatusReturned BorrowingStatus = "RETURNED"
	StatusOverdue  BorrowingStatus = "OVERDUE"
)

// BorrowingAction names a requested status transition. Action values equal the
// target status they lead to.
type BorrowingAction string

const (
	ActionApprove BorrowingAction = "APPROVED"
	ActionReject  BorrowingAction = "REJECTED"
	ActionReturn  BorrowingAction = "RETURNED"
	ActionOverdue BorrowingAction = "OVERDUE"
)

// Transition is one legal edge of the borrowing lifecycle.
type Transition struct {
	From BorrowingStatus
	To   BorrowingStatus
}

// Transitions is the full lifecycle: PENDING→APPROVED, PENDING→REJECTED,
// APPROVED→RETURNED, APPROVED→OVERDUE. Anything else is illegal.
var Transitions = map[BorrowingAction]Transition{
	ActionApprove: {From: StatusPending, To: StatusApproved},
	ActionReject:  {From: StatusPending, To: StatusRejected},
	ActionReturn:  {From: StatusApproved, To: StatusReturned},
	ActionOverdue: {From: StatusApproved, To: StatusOverdue},
}

func (a BorrowingAction) Valid() bool {
	_, ok := Transitions[a]
	return ok
}

type Borrowing struct {
	ID         string          `gorm:"type:uuid;primaryKey" json:"id"`
	BorrowerID string          `gorm:"type:uuid;index;not null" json:"borrowerId"`
	Purpose    string          `gorm:"size:500;not null" json:"purpose"`
	Status     BorrowingStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`

	RequestedAt time.Time  `gorm:"index;not null" json:"requestedAt"`
	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	ApprovedBy  *string    `gorm:"type:uuid" json:"approvedBy,omitempty"`
	RejectedAt  *time.Time `json:"rejectedAt,omitempty"`
	RejectedBy  *string    `gorm:"type:uuid" json:"rejectedBy,omitempty"`
	ReturnedAt  *time.Time `json:"returnedAt,omitempty"`
	ReturnedTo  *string    `gorm:"type:uuid" json:"returnedTo,omitempty"`
	Notes       string     `gorm:"size:500" json:"notes,omitempty"`

	Items []BorrowingItem `gorm:"foreignKey:BorrowingID" json:"items"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type BorrowingItem struct {
	ID          string   `gorm:"type:uuid;primaryKey" json:"id"`
	BorrowingID string   `gorm:"type:uuid;index;not null" json:"borrowingId"`
	ChemicalID  string   `gorm:"type:uuid;index;not null" json:"chemicalId"`
	Quantity    float64  `gorm:"type:numeric(12,3);not null" json:"quantity"`
	Returned    bool     `gorm:"not null;default:false" json:"returned"`
	ReturnedQty *float64 `gorm:"type:numeric(12,3)" json:"returnedQty,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Borrowing) TableName() string     { return BorrowingTable }
func (BorrowingItem) TableName() string { return BorrowingItemTable }
