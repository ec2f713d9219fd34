package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/alwiirfani/chemicals-sub000/models"
)

func (r *Repo) CreateSDSDocument(ctx context.Context, d *models.SDSDocument) error {
	return r.DB.WithContext(ctx).Create(d).Error
}

func (r *Repo) FindSDSDocumentByID(ctx context.Context, id string) (*models.SDSDocument, error) {
	var d models.SDSDocument
	if err := r.DB.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *Repo) ListSDSDocuments(ctx context.Context, chemicalID string) ([]models.SDSDocument, error) {
	var ds []models.SDSDocument
	err := r.DB.WithContext(ctx).
		Where("chemical_id = ?", chemicalID).
		Order("created_at DESC").
		Find(&ds).Error
	return ds, err
}

func (r *Repo) DeleteSDSDocumentByID(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&models.SDSDocument{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
