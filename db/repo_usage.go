package db

import (
	"context"
	"time"

	"github.com/alwiirfani/chemicals-sub000/models"
)

type UsageQuery struct {
	ChemicalID string
	UserID     string
	From       *time.Time
	To         *time.Time
	Page       int
	Size       int
}

// UsageRow joins the ledger with chemical and user names for reporting.
type UsageRow struct {
	ID           string    `json:"id"`
	ChemicalID   string    `json:"chemicalId"`
	ChemicalName string    `json:"chemicalName"`
	Unit         string    `json:"unit"`
	UserID       string    `json:"userId"`
	UserName     string    `json:"userName"`
	BorrowingID  string    `json:"borrowingId"`
	Quantity     float64   `json:"quantity"`
	RecordedAt   time.Time `json:"recordedAt"`
}

type ListUsageResult struct {
	Rows  []UsageRow `json:"rows"`
	Total int64      `json:"total"`
}

func (r *Repo) ListUsage(ctx context.Context, q UsageQuery) (ListUsageResult, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 500 {
		q.Size = 50
	}

	base := r.DB.WithContext(ctx).
		Table(models.UsageHistoryTable + " h").
		Joins("JOIN " + models.ChemicalTable + " c ON c.id = h.chemical_id").
		Joins("JOIN " + models.UserTable + " u ON u.id = h.user_id")
	if q.ChemicalID != "" {
		base = base.Where("h.chemical_id = ?", q.ChemicalID)
	}
	if q.UserID != "" {
		base = base.Where("h.user_id = ?", q.UserID)
	}
	if q.From != nil {
		base = base.Where("h.recorded_at >= ?", *q.From)
	}
	if q.To != nil {
		base = base.Where("h.recorded_at < ?", *q.To)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return ListUsageResult{}, err
	}

	var rows []UsageRow
	if err := base.
		Select(`
			h.id, h.chemical_id, c.name AS chemical_name, c.unit,
			h.user_id, u.display_name AS user_name,
			h.borrowing_id, h.quantity, h.recorded_at
		`).
		Order("h.recorded_at DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Scan(&rows).Error; err != nil {
		return ListUsageResult{}, err
	}
	return ListUsageResult{Rows: rows, Total: total}, nil
}

// DashboardSummary backs the reporting landing page.
type DashboardSummary struct {
	Chemicals        int64             `json:"chemicals"`
	PendingApprovals int64             `json:"pendingApprovals"`
	OpenBorrowings   int64             `json:"openBorrowings"`
	OverdueCount     int64             `json:"overdueCount"`
	LowStock         []models.Chemical `json:"lowStock"`
}

func (r *Repo) DashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	var s DashboardSummary
	db := r.DB.WithContext(ctx)

	if err := db.Model(&models.Chemical{}).Count(&s.Chemicals).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Borrowing{}).
		Where("status = ?", models.StatusPending).
		Count(&s.PendingApprovals).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Borrowing{}).
		Where("status = ?", models.StatusApproved).
		Count(&s.OpenBorrowings).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Borrowing{}).
		Where("status = ?", models.StatusOverdue).
		Count(&s.OverdueCount).Error; err != nil {
		return nil, err
	}

	low, err := r.ListLowStockChemicals(ctx, 10)
	if err != nil {
		return nil, err
	}
	s.LowStock = low
	return &s, nil
}
