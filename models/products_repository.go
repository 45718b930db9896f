package models

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultPageSize is used when a listing request does not name one.
const DefaultPageSize = 20

type ProductsRepository struct {
	db       *gorm.DB
	pageSize int
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return NewProductsRepositoryWithPageSize(db, DefaultPageSize)
}

// NewProductsRepositoryWithPageSize sets the page size used when a listing
// request does not name one.
func NewProductsRepositoryWithPageSize(db *gorm.DB, pageSize int) *ProductsRepository {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &ProductsRepository{
		db:       db,
		pageSize: pageSize,
	}
}

// ProductFilters narrows a product listing. Search matches the translated
// name for the requested locale OR the SKU code, both as case-insensitive
// substrings. Codes are not localized data, so the code branch ignores the
// locale on purpose.
type ProductFilters struct {
	CategoryIDs []uuid.UUID
	Search      string
	Locale      Locale
}

// ProductPage is one page of a filtered, sorted listing.
type ProductPage struct {
	Items    []Product
	Total    int64
	Page     int
	PageSize int
}

// TranslationInput is one locale entry of a product mutation.
type TranslationInput struct {
	Locale      Locale
	Name        string
	Description *string
}

// ProductInput carries the mutable fields of a product. On update, nil
// slices leave the corresponding association untouched, while a non-nil
// CategoryIDs fully replaces the category set.
type ProductInput struct {
	Price        *decimal.Decimal
	IsActive     *bool
	Code         *string
	Translations []TranslationInput
	CategoryIDs  []uuid.UUID
}

func (r *ProductsRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Translations").
		Preload("Categories").
		Preload("Categories.Translations").
		Preload("Attachments", "preview = ?", true)
}

// List builds the filtered catalog listing. Filtering happens in SQL; the
// natural code ordering and page slicing happen in process so the comparator
// stays dialect independent (the catalog is a few hundred rows at most).
func (r *ProductsRepository) List(ctx context.Context, filters ProductFilters, page, pageSize int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = r.pageSize
	}

	query := r.preloaded(ctx).Model(&Product{})

	if len(filters.CategoryIDs) > 0 {
		query = query.Where("products.id IN (?)",
			r.db.Table("product_product_category").
				Select("product_id").
				Where("product_category_id IN ?", filters.CategoryIDs))
	}

	if filters.Search != "" {
		needle := "%" + strings.ToLower(filters.Search) + "%"
		nameMatch := r.db.Table("product_translations").
			Select("product_id").
			Where("locale = ? AND LOWER(name) LIKE ?", filters.Locale, needle)
		query = query.Where(
			r.db.Where("products.id IN (?)", nameMatch).
				Or("LOWER(products.code) LIKE ?", needle))
	}

	var products []Product
	if err := query.Find(&products).Error; err != nil {
		return nil, &QueryError{Op: "list products", Err: err}
	}

	sortProducts(products, filters.Locale)

	total := int64(len(products))
	start := (page - 1) * pageSize
	if start > len(products) {
		start = len(products)
	}
	end := start + pageSize
	if end > len(products) {
		end = len(products)
	}

	return &ProductPage{
		Items:    products[start:end],
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (r *ProductsRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var product Product
	if err := r.preloaded(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "product", ID: id.String()}
		}
		return nil, &QueryError{Op: "get product", Err: err}
	}
	return &product, nil
}

// Create persists a product, its translations and its category links in one
// transaction. The canonical-locale translation is required because it
// derives the slug.
func (r *ProductsRepository) Create(ctx context.Context, input ProductInput) (*Product, error) {
	canonical := findTranslation(input.Translations, CanonicalLocale)
	if canonical == nil {
		return nil, &ValidationError{Msg: "a " + string(CanonicalLocale) + " translation is required"}
	}

	product := &Product{
		ID:       uuid.New(),
		Price:    input.Price,
		IsActive: true,
		Code:     input.Code,
		Slug:     slug.Make(canonical.Name),
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return err
		}
		for _, in := range input.Translations {
			t := ProductTranslation{
				ID:          uuid.New(),
				ProductID:   product.ID,
				Locale:      in.Locale,
				Name:        in.Name,
				Description: in.Description,
			}
			if err := tx.Create(&t).Error; err != nil {
				return err
			}
		}
		return replaceCategories(tx, product, input.CategoryIDs)
	})
	if err != nil {
		return nil, mapWriteError("create product", err)
	}

	return r.GetByID(ctx, product.ID)
}

// Update rewrites the product row, upserts the supplied translations by
// (product, locale) and fully replaces the category set when one is given.
// Everything happens in one transaction; any failure rolls back all of it.
func (r *ProductsRepository) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*Product, error) {
	product, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.Price != nil {
			product.Price = input.Price
		}
		if input.IsActive != nil {
			product.IsActive = *input.IsActive
		}
		if input.Code != nil {
			product.Code = input.Code
		}
		if canonical := findTranslation(input.Translations, CanonicalLocale); canonical != nil {
			product.Slug = slug.Make(canonical.Name)
		}
		if err := tx.Model(product).Updates(map[string]any{
			"price":     product.Price,
			"is_active": product.IsActive,
			"code":      product.Code,
			"slug":      product.Slug,
		}).Error; err != nil {
			return err
		}

		for _, in := range input.Translations {
			res := tx.Model(&ProductTranslation{}).
				Where("product_id = ? AND locale = ?", product.ID, in.Locale).
				Updates(map[string]any{"name": in.Name, "description": in.Description})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				t := ProductTranslation{
					ID:          uuid.New(),
					ProductID:   product.ID,
					Locale:      in.Locale,
					Name:        in.Name,
					Description: in.Description,
				}
				if err := tx.Create(&t).Error; err != nil {
					return err
				}
			}
		}

		if input.CategoryIDs != nil {
			return replaceCategories(tx, product, input.CategoryIDs)
		}
		return nil
	})
	if err != nil {
		return nil, mapWriteError("update product", err)
	}

	return r.GetByID(ctx, id)
}

// SavePreviewAttachment records the preview attachment for a product. First
// write wins: if a preview row already exists the existing one is returned.
func (r *ProductsRepository) SavePreviewAttachment(ctx context.Context, productID uuid.UUID, path string) (*Attachment, error) {
	var att Attachment
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND preview = ?", productID, true).
		Attrs(Attachment{
			ID:        uuid.New(),
			ProductID: productID,
			Path:      path,
			Preview:   true,
		}).
		FirstOrCreate(&att).Error
	if err != nil {
		return nil, mapWriteError("save preview attachment", err)
	}
	return &att, nil
}

// replaceCategories syncs the product/category pivot with full-replace
// semantics. All referenced categories must exist.
func replaceCategories(tx *gorm.DB, product *Product, categoryIDs []uuid.UUID) error {
	if categoryIDs == nil {
		return nil
	}
	categories := make([]ProductCategory, 0, len(categoryIDs))
	if len(categoryIDs) > 0 {
		if err := tx.Find(&categories, "id IN ?", categoryIDs).Error; err != nil {
			return err
		}
		if len(categories) != len(categoryIDs) {
			return &NotFoundError{Entity: "product category", ID: "in " + joinIDs(categoryIDs)}
		}
	}
	return tx.Model(product).Association("Categories").Replace(categories)
}

func findTranslation(translations []TranslationInput, locale Locale) *TranslationInput {
	for i := range translations {
		if translations[i].Locale == locale {
			return &translations[i]
		}
	}
	return nil
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}

// mapWriteError keeps the typed taxonomy: uniqueness violations surface as
// ConflictError, domain errors pass through, anything else is a QueryError.
func mapWriteError(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &ConflictError{Msg: op + ": duplicate key", Err: err}
	}
	var nf *NotFoundError
	var vd *ValidationError
	if errors.As(err, &nf) || errors.As(err, &vd) {
		return err
	}
	return &QueryError{Op: op, Err: err}
}

// sortProducts orders the listing the way the printed menu reads: code
// letter prefix first, then the embedded number ascending (A1, A2, A10, B1),
// then the requested locale's name. Products without a code sort last.
func sortProducts(products []Product, locale Locale) {
	sort.SliceStable(products, func(i, j int) bool {
		return compareProducts(&products[i], &products[j], locale) < 0
	})
}

func compareProducts(a, b *Product, locale Locale) int {
	aPrefix, aNum, aOK := splitCode(a.Code)
	bPrefix, bNum, bOK := splitCode(b.Code)

	switch {
	case aOK && !bOK:
		return -1
	case !aOK && bOK:
		return 1
	case aOK && bOK:
		if c := strings.Compare(aPrefix, bPrefix); c != 0 {
			return c
		}
		if aNum != bNum {
			return aNum - bNum
		}
	}

	if c := strings.Compare(a.TranslatedName(locale), b.TranslatedName(locale)); c != 0 {
		return c
	}
	return strings.Compare(a.ID.String(), b.ID.String())
}

// splitCode extracts the leading alphabetic prefix and the first embedded
// integer of a SKU code ("A12" -> "A", 12).
func splitCode(code *string) (prefix string, num int, ok bool) {
	if code == nil || *code == "" {
		return "", 0, false
	}
	s := *code
	i := 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	prefix = strings.ToUpper(s[:i])

	j := i
	for j < len(s) && !isDigit(s[j]) {
		j++
	}
	k := j
	for k < len(s) && isDigit(s[k]) {
		k++
	}
	if j < k {
		num, _ = strconv.Atoi(s[j:k])
	}
	return prefix, num, true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
