package models

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{db: db}
}

// GetAll returns every category with its translations, in display order.
func (r *CategoriesRepository) GetAll(ctx context.Context) ([]ProductCategory, error) {
	var categories []ProductCategory
	err := r.db.WithContext(ctx).
		Preload("Translations").
		Order("sort_order ASC").
		Find(&categories).Error
	if err != nil {
		return nil, &QueryError{Op: "list categories", Err: err}
	}
	return categories, nil
}

func (r *CategoriesRepository) GetByID(ctx context.Context, id uuid.UUID) (*ProductCategory, error) {
	var category ProductCategory
	err := r.db.WithContext(ctx).
		Preload("Translations").
		First(&category, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "product category", ID: id.String()}
		}
		return nil, &QueryError{Op: "get category", Err: err}
	}
	return &category, nil
}

// Create persists a category and its translations in one transaction.
func (r *CategoriesRepository) Create(ctx context.Context, sortOrder int, translations []TranslationInput) (*ProductCategory, error) {
	if len(translations) == 0 {
		return nil, &ValidationError{Msg: "at least one translation is required"}
	}

	category := &ProductCategory{
		ID:        uuid.New(),
		SortOrder: sortOrder,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(category).Error; err != nil {
			return err
		}
		for _, in := range translations {
			t := ProductCategoryTranslation{
				ID:                uuid.New(),
				ProductCategoryID: category.ID,
				Locale:            in.Locale,
				Name:              in.Name,
			}
			if err := tx.Create(&t).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, mapWriteError("create category", err)
	}
	return r.GetByID(ctx, category.ID)
}
