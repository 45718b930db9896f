package graphql

import (
	"github.com/tokyosushibar/backend/app/auth"
	"github.com/tokyosushibar/backend/app/catalog"
	"github.com/tokyosushibar/backend/models"
)

// The schema resolves child fields through maps, so every entity is
// flattened here once instead of teaching the runtime about gorm structs.

func toProduct(p *models.Product) map[string]any {
	if p == nil {
		return nil
	}
	out := map[string]any{
		"id":           p.ID.String(),
		"isActive":     p.IsActive,
		"slug":         p.Slug,
		"translations": toTranslations(p.Translations),
		"categories":   toCategories(p.Categories),
	}
	if p.Price != nil {
		out["price"] = p.Price.InexactFloat64()
	}
	if p.Code != nil {
		out["code"] = *p.Code
	}
	if preview := p.Preview(); preview != nil {
		out["preview"] = map[string]any{
			"id":      preview.ID.String(),
			"path":    preview.Path,
			"preview": preview.Preview,
		}
	}
	return out
}

func toTranslations(translations []models.ProductTranslation) []map[string]any {
	out := make([]map[string]any, len(translations))
	for i, t := range translations {
		m := map[string]any{
			"locale": string(t.Locale),
			"name":   t.Name,
		}
		if t.Description != nil {
			m["description"] = *t.Description
		}
		out[i] = m
	}
	return out
}

func toCategories(categories []models.ProductCategory) []map[string]any {
	out := make([]map[string]any, len(categories))
	for i := range categories {
		c := &categories[i]
		translations := make([]map[string]any, len(c.Translations))
		for j, t := range c.Translations {
			translations[j] = map[string]any{
				"locale": string(t.Locale),
				"name":   t.Name,
			}
		}
		out[i] = map[string]any{
			"id":           c.ID.String(),
			"sortOrder":    c.SortOrder,
			"translations": translations,
		}
	}
	return out
}

func toCategoryViews(views []catalog.CategoryView) []map[string]any {
	out := make([]map[string]any, len(views))
	for i, v := range views {
		out[i] = map[string]any{
			"id":        v.ID.String(),
			"name":      v.Name,
			"sortOrder": v.SortOrder,
		}
	}
	return out
}

func toProductPage(page *models.ProductPage) map[string]any {
	items := make([]map[string]any, len(page.Items))
	for i := range page.Items {
		items[i] = toProduct(&page.Items[i])
	}
	return map[string]any{
		"total":    page.Total,
		"page":     page.Page,
		"pageSize": page.PageSize,
		"items":    items,
	}
}

func toOrder(o *models.Order) map[string]any {
	if o == nil {
		return nil
	}
	items := make([]map[string]any, len(o.Items))
	for i, item := range o.Items {
		items[i] = map[string]any{
			"quantity": item.Quantity,
			"product":  toProduct(&item.Product),
		}
	}
	out := map[string]any{
		"id":          o.ID.String(),
		"status":      string(o.Status),
		"paymentMode": string(o.PaymentMode),
		"items":       items,
	}
	if o.MolliePaymentURL != nil {
		out["checkoutUrl"] = *o.MolliePaymentURL
	}
	if o.UserID != nil {
		out["userId"] = o.UserID.String()
	}
	return out
}

func toTokenSet(set *auth.TokenSet) map[string]any {
	return map[string]any{
		"accessToken":  set.AccessToken,
		"tokenType":    set.TokenType,
		"expiresIn":    set.ExpiresIn,
		"refreshToken": set.RefreshToken,
	}
}
