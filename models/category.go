package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductCategory groups products on the menu (sushi, maki, bento...).
// SortOrder drives the display order on the storefront.
type ProductCategory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	SortOrder int `gorm:"not null;default:0"`

	Translations []ProductCategoryTranslation `gorm:"foreignKey:ProductCategoryID;constraint:OnDelete:CASCADE"`
}

func (c *ProductCategory) TableName() string {
	return "product_categories"
}

// TranslatedName returns the category label for the given locale, falling
// back to the canonical locale.
func (c *ProductCategory) TranslatedName(locale Locale) string {
	fallback := ""
	for i := range c.Translations {
		t := &c.Translations[i]
		if t.Locale == locale {
			return t.Name
		}
		if t.Locale == CanonicalLocale {
			fallback = t.Name
		}
	}
	return fallback
}

// ProductCategoryTranslation carries the localized category label.
// (product_category_id, locale) is unique.
type ProductCategoryTranslation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ProductCategoryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_category_translations_locale"`
	Locale            Locale    `gorm:"size:2;not null;uniqueIndex:idx_category_translations_locale"`
	Name              string    `gorm:"not null"`
}

func (t *ProductCategoryTranslation) TableName() string {
	return "product_category_translations"
}
