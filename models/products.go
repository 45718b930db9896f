package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Locale identifies a translation language.
type Locale string

const (
	LocaleEN Locale = "EN"
	LocaleFR Locale = "FR"
)

// CanonicalLocale is the locale whose product name derives the URL slug.
const CanonicalLocale = LocaleFR

// ParseLocale normalizes a client-supplied locale string.
func ParseLocale(raw string) (Locale, bool) {
	switch raw {
	case "EN", "en":
		return LocaleEN, true
	case "FR", "fr":
		return LocaleFR, true
	}
	return "", false
}

// Product represents a menu item in the catalog.
// The code is a short SKU with a letter prefix and a numeric suffix
// (A1, A2, ... B12); products created without a code sort last.
type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Price    *decimal.Decimal `gorm:"type:decimal(10,2)"`
	IsActive bool             `gorm:"not null;default:true"`
	Code     *string          `gorm:"size:16"`
	Slug     string           `gorm:"uniqueIndex;not null"`

	Translations []ProductTranslation `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Categories   []ProductCategory    `gorm:"many2many:product_product_category"`
	Attachments  []Attachment         `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (p *Product) TableName() string {
	return "products"
}

// TranslatedName returns the product name for the given locale, falling
// back to the canonical locale when the translation is missing.
func (p *Product) TranslatedName(locale Locale) string {
	fallback := ""
	for i := range p.Translations {
		t := &p.Translations[i]
		if t.Locale == locale {
			return t.Name
		}
		if t.Locale == CanonicalLocale {
			fallback = t.Name
		}
	}
	return fallback
}

// Preview returns the single listing thumbnail attachment, if any.
func (p *Product) Preview() *Attachment {
	for i := range p.Attachments {
		if p.Attachments[i].Preview {
			return &p.Attachments[i]
		}
	}
	return nil
}

// ProductTranslation carries the localized name and description of a
// product. (product_id, locale) is unique.
type ProductTranslation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ProductID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_translations_locale"`
	Locale      Locale    `gorm:"size:2;not null;uniqueIndex:idx_product_translations_locale"`
	Name        string    `gorm:"not null"`
	Description *string
}

func (t *ProductTranslation) TableName() string {
	return "product_translations"
}

// Attachment references the stored image derivatives of a product. Path is
// the base object name without extension; the physical format variants
// (avif, webp, png) share it. At most one attachment per product carries
// preview=true, enforced by a partial unique index.
type Attachment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Path      string    `gorm:"not null"`
	Preview   bool      `gorm:"not null;default:false"`
}

func (a *Attachment) TableName() string {
	return "attachments"
}
