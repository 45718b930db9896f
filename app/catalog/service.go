package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/tokyosushibar/backend/models"
)

// ProductStore is the slice of the products repository the catalog needs.
type ProductStore interface {
	List(ctx context.Context, filters models.ProductFilters, page, pageSize int) (*models.ProductPage, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, input models.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input models.ProductInput) (*models.Product, error)
}

type CategoryStore interface {
	GetAll(ctx context.Context) ([]models.ProductCategory, error)
}

// Service fronts the catalog for the GraphQL layer: it validates client
// input and delegates to the repositories.
type Service struct {
	products   ProductStore
	categories CategoryStore
}

func NewService(products ProductStore, categories CategoryStore) *Service {
	return &Service{products: products, categories: categories}
}

// ListQuery mirrors the products(...) query arguments.
type ListQuery struct {
	CategoryIDs []uuid.UUID
	Search      string
	Locale      string
	Page        int
	First       int
}

func (s *Service) ListProducts(ctx context.Context, q ListQuery) (*models.ProductPage, error) {
	locale, ok := models.ParseLocale(q.Locale)
	if !ok {
		return nil, &models.ValidationError{Msg: "unsupported locale: " + q.Locale}
	}
	return s.products.List(ctx, models.ProductFilters{
		CategoryIDs: q.CategoryIDs,
		Search:      q.Search,
		Locale:      locale,
	}, q.Page, q.First)
}

func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	if err := validateTranslations(input.Translations); err != nil {
		return nil, err
	}
	return s.products.Create(ctx, input)
}

func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, input models.ProductInput) (*models.Product, error) {
	if err := validateTranslations(input.Translations); err != nil {
		return nil, err
	}
	return s.products.Update(ctx, id, input)
}

func validateTranslations(translations []models.TranslationInput) error {
	for _, t := range translations {
		if t.Name == "" {
			return &models.ValidationError{Msg: "translation name must not be empty"}
		}
		if t.Locale != models.LocaleEN && t.Locale != models.LocaleFR {
			return &models.ValidationError{Msg: "unsupported locale: " + string(t.Locale)}
		}
	}
	return nil
}
