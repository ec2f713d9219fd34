package db

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/alwiirfani/chemicals-sub000/models"
)

func (r *Repo) CreateChemical(ctx context.Context, c *models.Chemical) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *Repo) FindChemicalByID(ctx context.Context, id string) (*models.Chemical, error) {
	var c models.Chemical
	if err := r.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

type ListChemicalsResult struct {
	Chemicals []models.Chemical `json:"chemicals"`
	Total     int64             `json:"total"`
}

func (r *Repo) ListChemicals(ctx context.Context, q string, page, size int) (ListChemicalsResult, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.Chemical{})
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ? OR cas_number LIKE ?", like, like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListChemicalsResult{}, err
	}

	var cs []models.Chemical
	if err := tx.
		Order("name ASC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&cs).Error; err != nil {
		return ListChemicalsResult{}, err
	}
	return ListChemicalsResult{Chemicals: cs, Total: total}, nil
}

// UpdateChemical never touches current_stock; stock only moves through the
// borrowing transition.
func (r *Repo) UpdateChemical(ctx context.Context, id string, fields map[string]any) error {
	delete(fields, "current_stock")
	res := r.DB.WithContext(ctx).Model(&models.Chemical{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustStock applies a manual correction (goods received, stocktake) and
// refuses to take the counter below zero.
func (r *Repo) AdjustStock(ctx context.Context, id string, delta float64) (*models.Chemical, error) {
	res := r.DB.WithContext(ctx).Model(&models.Chemical{}).
		Where("id = ? AND current_stock + ? >= 0", id, delta).
		Update("current_stock", gorm.Expr("current_stock + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// 分清“不存在”和“会变负数”
		if _, err := r.FindChemicalByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, &InsufficientStockError{ChemicalID: id, Requested: -delta}
	}
	return r.FindChemicalByID(ctx, id)
}

func (r *Repo) DeleteChemicalByID(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&models.Chemical{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) ListLowStockChemicals(ctx context.Context, limit int) ([]models.Chemical, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var cs []models.Chemical
	err := r.DB.WithContext(ctx).
		Where("current_stock <= min_stock").
		Order("current_stock ASC").
		Limit(limit).
		Find(&cs).Error
	return cs, err
}
