package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/tokyosushibar/backend/models"
)

// CategoryView is a category flattened to one locale for listing.
type CategoryView struct {
	ID        uuid.UUID
	Name      string
	SortOrder int
}

// ListCategories returns every category in display order, labeled in the
// requested locale.
func (s *Service) ListCategories(ctx context.Context, rawLocale string) ([]CategoryView, error) {
	locale, ok := models.ParseLocale(rawLocale)
	if !ok {
		return nil, &models.ValidationError{Msg: "unsupported locale: " + rawLocale}
	}

	categories, err := s.categories.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]CategoryView, len(categories))
	for i := range categories {
		views[i] = CategoryView{
			ID:        categories[i].ID,
			Name:      categories[i].TranslatedName(locale),
			SortOrder: categories[i].SortOrder,
		}
	}
	return views, nil
}
