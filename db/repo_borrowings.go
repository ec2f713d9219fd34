package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alwiirfani/chemicals-sub000/models"
)

type NewBorrowingItem struct {
	ChemicalID string  `json:"chemicalId" binding:"required"`
	Quantity   float64 `json:"quantity" binding:"required,gt=0"`
}

// CreateBorrowing records an intake request with status PENDING. Stock is not
// checked here; the sufficiency check happens at approval.
func (r *Repo) CreateBorrowing(ctx context.Context, borrowerID, purpose string, items []NewBorrowingItem) (*models.Borrowing, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	now := time.Now().UTC()
	b := &models.Borrowing{
		ID:          uuid.NewString(),
		BorrowerID:  borrowerID,
		Purpose:     purpose,
		Status:      models.StatusPending,
		RequestedAt: now,
	}
	// 同一化学品只允许出现一行，提前拦截，免得撞唯一索引
	seen := make(map[string]bool, len(items))
	for _, in := range items {
		if seen[in.ChemicalID] {
			return nil, ErrDuplicateItem
		}
		seen[in.ChemicalID] = true
		b.Items = append(b.Items, models.BorrowingItem{
			ID:         uuid.NewString(),
			ChemicalID: in.ChemicalID,
			Quantity:   in.Quantity,
		})
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 先确认每个化学品存在
		for _, it := range b.Items {
			var n int64
			if err := tx.Model(&models.Chemical{}).Where("id = ?", it.ChemicalID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrNotFound
			}
		}
		return tx.Create(b).Error
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

type ReturnedItem struct {
	ID          string  `json:"id" binding:"required"`
	ReturnedQty float64 `json:"returnedQty"`
}

// TransitionResult is the response payload of one status change: the reloaded
// borrowing and any ledger rows the transition created.
type TransitionResult struct {
	Borrowing *models.Borrowing     `json:"borrowing"`
	Usage     []models.UsageHistory `json:"usage,omitempty"`
}

// TransitionBorrowing applies one lifecycle action atomically. The borrowing
// row and every touched chemical row are locked FOR UPDATE, so the stock
// sufficiency check and the decrement commit or roll back together; two
// concurrent approvals competing for the same chemical serialize on the row
// lock and the loser sees the post-decrement stock.
func (r *Repo) TransitionBorrowing(ctx context.Context, borrowingID, actorID string, action models.BorrowingAction, returned []ReturnedItem) (*TransitionResult, error) {
	edge, ok := models.Transitions[action]
	if !ok {
		return nil, &InvalidTransitionError{Action: action}
	}

	var result TransitionResult
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 锁住该借用单
		var b models.Borrowing
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&b, "id = ?", borrowingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if b.Status != edge.From {
			return &InvalidTransitionError{Current: b.Status, Action: action}
		}

		var items []models.BorrowingItem
		if err := tx.Where("borrowing_id = ?", b.ID).
			Order("created_at ASC").
			Find(&items).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		updates := map[string]any{"status": edge.To, "updated_at": now}

		switch action {
		case models.ActionApprove:
			for _, it := range items {
				usage, err := r.consumeStock(tx, it.ChemicalID, it.Quantity, b, now)
				if err != nil {
					return err
				}
				result.Usage = append(result.Usage, *usage)
			}
			updates["approved_at"] = now
			updates["approved_by"] = actorID
			updates["rejected_at"] = nil
			updates["rejected_by"] = nil

		case models.ActionReject:
			updates["rejected_at"] = now
			updates["rejected_by"] = actorID
			updates["approved_at"] = nil
			updates["approved_by"] = nil

		case models.ActionReturn:
			usage, err := r.reconcileReturn(tx, b, items, returned, now)
			if err != nil {
				return err
			}
			result.Usage = usage
			updates["returned_at"] = now
			updates["returned_to"] = actorID

		case models.ActionOverdue:
			// 仅改状态，不动库存
		}

		if err := tx.Model(&models.Borrowing{}).
			Where("id = ?", b.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		var out models.Borrowing
		if err := tx.Preload("Items").First(&out, "id = ?", b.ID).Error; err != nil {
			return err
		}
		result.Borrowing = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// consumeStock locks the chemical row, verifies sufficiency under the lock,
// decrements the counter and appends the ledger row for the full quantity.
func (r *Repo) consumeStock(tx *gorm.DB, chemicalID string, qty float64, b models.Borrowing, now time.Time) (*models.UsageHistory, error) {
	var chem models.Chemical
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&chem, "id = ?", chemicalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if chem.CurrentStock < qty {
		return nil, &InsufficientStockError{
			ChemicalID:   chem.ID,
			ChemicalName: chem.Name,
			Available:    chem.CurrentStock,
			Requested:    qty,
		}
	}
	if err := tx.Model(&models.Chemical{}).
		Where("id = ?", chem.ID).
		Update("current_stock", gorm.Expr("current_stock - ?", qty)).Error; err != nil {
		return nil, err
	}

	usage := &models.UsageHistory{
		ID:          uuid.NewString(),
		ChemicalID:  chem.ID,
		BorrowingID: b.ID,
		UserID:      b.BorrowerID,
		Quantity:    qty,
		RecordedAt:  now,
	}
	if err := tx.Create(usage).Error; err != nil {
		return nil, err
	}
	return usage, nil
}

// reconcileReturn validates the supplied per-item quantities and applies the
// stock increments plus consumed-remainder ledger rows. Every item of the
// borrowing must appear in the payload; any bad or missing entry aborts the
// whole return before anything is written.
func (r *Repo) reconcileReturn(tx *gorm.DB, b models.Borrowing, items []models.BorrowingItem, returned []ReturnedItem, now time.Time) ([]models.UsageHistory, error) {
	if len(returned) == 0 {
		return nil, &ReturnItemError{Reason: "returnedItems is required for RETURNED"}
	}

	byID := make(map[string]models.BorrowingItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	qtyByID := make(map[string]float64, len(returned))
	for _, re := range returned {
		it, ok := byID[re.ID]
		if !ok {
			return nil, &ReturnItemError{ItemID: re.ID, Reason: "does not belong to this borrowing"}
		}
		if _, dup := qtyByID[re.ID]; dup {
			return nil, &ReturnItemError{ItemID: re.ID, Reason: "duplicate entry"}
		}
		if re.ReturnedQty < 0 || re.ReturnedQty > it.Quantity {
			return nil, &ReturnItemError{ItemID: re.ID, Reason: "returnedQty out of range"}
		}
		qtyByID[re.ID] = re.ReturnedQty
	}
	// 每一行都必须在归还单里确认
	for _, it := range items {
		if _, ok := qtyByID[it.ID]; !ok {
			return nil, &ReturnItemError{ItemID: it.ID, Reason: "missing from return payload"}
		}
	}

	var usage []models.UsageHistory
	for _, it := range items {
		returnedQty := qtyByID[it.ID]

		if returnedQty > 0 {
			var chem models.Chemical
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&chem, "id = ?", it.ChemicalID).Error; err != nil {
				return nil, err
			}
			if err := tx.Model(&models.Chemical{}).
				Where("id = ?", it.ChemicalID).
				Update("current_stock", gorm.Expr("current_stock + ?", returnedQty)).Error; err != nil {
				return nil, err
			}
		}

		if err := tx.Model(&models.BorrowingItem{}).
			Where("id = ?", it.ID).
			Updates(map[string]any{
				"returned":     true,
				"returned_qty": returnedQty,
				"updated_at":   now,
			}).Error; err != nil {
			return nil, err
		}

		if remainder := it.Quantity - returnedQty; remainder > 0 {
			row := models.UsageHistory{
				ID:          uuid.NewString(),
				ChemicalID:  it.ChemicalID,
				BorrowingID: b.ID,
				UserID:      b.BorrowerID,
				Quantity:    remainder,
				RecordedAt:  now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return nil, err
			}
			usage = append(usage, row)
		}
	}
	return usage, nil
}

func (r *Repo) FindBorrowingByID(ctx context.Context, id string) (*models.Borrowing, error) {
	var b models.Borrowing
	err := r.DB.WithContext(ctx).Preload("Items").First(&b, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

type BorrowingsQuery struct {
	Status     string
	BorrowerID string
	Page       int
	Size       int
}

type ListBorrowingsResult struct {
	Borrowings []models.Borrowing `json:"borrowings"`
	Total      int64              `json:"total"`
}

func (r *Repo) ListBorrowings(ctx context.Context, q BorrowingsQuery) (ListBorrowingsResult, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 100 {
		q.Size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.Borrowing{})
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.BorrowerID != "" {
		tx = tx.Where("borrower_id = ?", q.BorrowerID)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListBorrowingsResult{}, err
	}

	var bs []models.Borrowing
	if err := tx.
		Preload("Items").
		Order("requested_at DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&bs).Error; err != nil {
		return ListBorrowingsResult{}, err
	}
	return ListBorrowingsResult{Borrowings: bs, Total: total}, nil
}
