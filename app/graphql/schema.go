package graphql

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	gql "github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"

	"github.com/tokyosushibar/backend/app/auth"
	"github.com/tokyosushibar/backend/app/catalog"
	"github.com/tokyosushibar/backend/app/orders"
	"github.com/tokyosushibar/backend/models"
)

// OrderCreator is the slice of the order service the schema mounts.
type OrderCreator interface {
	CreateOrder(ctx context.Context, items []orders.LineItemInput, userID *uuid.UUID) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// TokenBridge is the slice of the auth service the schema mounts.
type TokenBridge interface {
	Login(ctx context.Context, email, password string) (*auth.TokenSet, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenSet, error)
}

var localeEnum = gql.NewEnum(gql.EnumConfig{
	Name: "Locale",
	Values: gql.EnumValueConfigMap{
		"EN": &gql.EnumValueConfig{Value: "EN"},
		"FR": &gql.EnumValueConfig{Value: "FR"},
	},
})

var translationType = gql.NewObject(gql.ObjectConfig{
	Name: "ProductTranslation",
	Fields: gql.Fields{
		"locale":      &gql.Field{Type: gql.NewNonNull(localeEnum)},
		"name":        &gql.Field{Type: gql.NewNonNull(gql.String)},
		"description": &gql.Field{Type: gql.String},
	},
})

var categoryType = gql.NewObject(gql.ObjectConfig{
	Name: "ProductCategory",
	Fields: gql.Fields{
		"id":           &gql.Field{Type: gql.NewNonNull(gql.ID)},
		"sortOrder":    &gql.Field{Type: gql.NewNonNull(gql.Int)},
		"translations": &gql.Field{Type: gql.NewList(translationType)},
	},
})

var categoryViewType = gql.NewObject(gql.ObjectConfig{
	Name: "Category",
	Fields: gql.Fields{
		"id":        &gql.Field{Type: gql.NewNonNull(gql.ID)},
		"name":      &gql.Field{Type: gql.NewNonNull(gql.String)},
		"sortOrder": &gql.Field{Type: gql.NewNonNull(gql.Int)},
	},
})

var attachmentType = gql.NewObject(gql.ObjectConfig{
	Name: "Attachment",
	Fields: gql.Fields{
		"id":      &gql.Field{Type: gql.NewNonNull(gql.ID)},
		"path":    &gql.Field{Type: gql.NewNonNull(gql.String)},
		"preview": &gql.Field{Type: gql.NewNonNull(gql.Boolean)},
	},
})

var productType = gql.NewObject(gql.ObjectConfig{
	Name: "Product",
	Fields: gql.Fields{
		"id":           &gql.Field{Type: gql.NewNonNull(gql.ID)},
		"price":        &gql.Field{Type: gql.Float},
		"isActive":     &gql.Field{Type: gql.NewNonNull(gql.Boolean)},
		"code":         &gql.Field{Type: gql.String},
		"slug":         &gql.Field{Type: gql.NewNonNull(gql.String)},
		"translations": &gql.Field{Type: gql.NewList(translationType)},
		"categories":   &gql.Field{Type: gql.NewList(categoryType)},
		"preview":      &gql.Field{Type: attachmentType},
	},
})

var productPageType = gql.NewObject(gql.ObjectConfig{
	Name: "ProductPage",
	Fields: gql.Fields{
		"total":    &gql.Field{Type: gql.NewNonNull(gql.Int)},
		"page":     &gql.Field{Type: gql.NewNonNull(gql.Int)},
		"pageSize": &gql.Field{Type: gql.NewNonNull(gql.Int)},
		"items":    &gql.Field{Type: gql.NewList(productType)},
	},
})

var orderItemType = gql.NewObject(gql.ObjectConfig{
	Name: "OrderItem",
	Fields: gql.Fields{
		"product":  &gql.Field{Type: productType},
		"quantity": &gql.Field{Type: gql.NewNonNull(gql.Int)},
	},
})

var orderType = gql.NewObject(gql.ObjectConfig{
	Name: "Order",
	Fields: gql.Fields{
		"id":          &gql.Field{Type: gql.NewNonNull(gql.ID)},
		"status":      &gql.Field{Type: gql.NewNonNull(gql.String)},
		"paymentMode": &gql.Field{Type: gql.NewNonNull(gql.String)},
		"checkoutUrl": &gql.Field{Type: gql.String},
		"userId":      &gql.Field{Type: gql.ID},
		"items":       &gql.Field{Type: gql.NewList(orderItemType)},
	},
})

var tokenSetType = gql.NewObject(gql.ObjectConfig{
	Name: "TokenSet",
	Fields: gql.Fields{
		"accessToken":  &gql.Field{Type: gql.NewNonNull(gql.String)},
		"tokenType":    &gql.Field{Type: gql.NewNonNull(gql.String)},
		"expiresIn":    &gql.Field{Type: gql.NewNonNull(gql.Int)},
		"refreshToken": &gql.Field{Type: gql.NewNonNull(gql.String)},
	},
})

var translationInput = gql.NewInputObject(gql.InputObjectConfig{
	Name: "TranslationInput",
	Fields: gql.InputObjectConfigFieldMap{
		"locale":      &gql.InputObjectFieldConfig{Type: gql.NewNonNull(localeEnum)},
		"name":        &gql.InputObjectFieldConfig{Type: gql.NewNonNull(gql.String)},
		"description": &gql.InputObjectFieldConfig{Type: gql.String},
	},
})

var lineItemInput = gql.NewInputObject(gql.InputObjectConfig{
	Name: "LineItemInput",
	Fields: gql.InputObjectConfigFieldMap{
		"productId": &gql.InputObjectFieldConfig{Type: gql.NewNonNull(gql.ID)},
		"quantity":  &gql.InputObjectFieldConfig{Type: gql.NewNonNull(gql.Int)},
	},
})

type resolver struct {
	catalog *catalog.Service
	orders  OrderCreator
	auth    TokenBridge
}

// New builds the executable schema over the three application services.
func New(catalogSvc *catalog.Service, orderSvc OrderCreator, authSvc TokenBridge) (gql.Schema, error) {
	r := &resolver{catalog: catalogSvc, orders: orderSvc, auth: authSvc}

	query := gql.NewObject(gql.ObjectConfig{
		Name: "Query",
		Fields: gql.Fields{
			"product": &gql.Field{
				Type: productType,
				Args: gql.FieldConfigArgument{
					"id": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.ID)},
				},
				Resolve: r.product,
			},
			"products": &gql.Field{
				Type: productPageType,
				Args: gql.FieldConfigArgument{
					"categories": &gql.ArgumentConfig{Type: gql.NewList(gql.NewNonNull(gql.ID))},
					"search":     &gql.ArgumentConfig{Type: gql.String},
					"locale":     &gql.ArgumentConfig{Type: gql.NewNonNull(localeEnum)},
					"page":       &gql.ArgumentConfig{Type: gql.Int},
					"first":      &gql.ArgumentConfig{Type: gql.Int},
				},
				Resolve: r.products,
			},
			"categories": &gql.Field{
				Type: gql.NewList(categoryViewType),
				Args: gql.FieldConfigArgument{
					"locale": &gql.ArgumentConfig{Type: gql.NewNonNull(localeEnum)},
				},
				Resolve: r.categories,
			},
			"order": &gql.Field{
				Type: orderType,
				Args: gql.FieldConfigArgument{
					"id": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.ID)},
				},
				Resolve: r.order,
			},
		},
	})

	mutation := gql.NewObject(gql.ObjectConfig{
		Name: "Mutation",
		Fields: gql.Fields{
			"createProduct": &gql.Field{
				Type: productType,
				Args: gql.FieldConfigArgument{
					"price":        &gql.ArgumentConfig{Type: gql.Float},
					"isActive":     &gql.ArgumentConfig{Type: gql.Boolean},
					"code":         &gql.ArgumentConfig{Type: gql.String},
					"translations": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.NewList(gql.NewNonNull(translationInput)))},
					"categories":   &gql.ArgumentConfig{Type: gql.NewList(gql.NewNonNull(gql.ID))},
				},
				Resolve: r.createProduct,
			},
			"updateProduct": &gql.Field{
				Type: productType,
				Args: gql.FieldConfigArgument{
					"id":           &gql.ArgumentConfig{Type: gql.NewNonNull(gql.ID)},
					"price":        &gql.ArgumentConfig{Type: gql.Float},
					"isActive":     &gql.ArgumentConfig{Type: gql.Boolean},
					"code":         &gql.ArgumentConfig{Type: gql.String},
					"translations": &gql.ArgumentConfig{Type: gql.NewList(gql.NewNonNull(translationInput))},
					"categories":   &gql.ArgumentConfig{Type: gql.NewList(gql.NewNonNull(gql.ID))},
				},
				Resolve: r.updateProduct,
			},
			"createOrder": &gql.Field{
				Type: orderType,
				Args: gql.FieldConfigArgument{
					"products": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.NewList(gql.NewNonNull(lineItemInput)))},
				},
				Resolve: r.createOrder,
			},
			"login": &gql.Field{
				Type: tokenSetType,
				Args: gql.FieldConfigArgument{
					"email":    &gql.ArgumentConfig{Type: gql.NewNonNull(gql.String)},
					"password": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.String)},
				},
				Resolve: r.login,
			},
			"refreshToken": &gql.Field{
				Type: tokenSetType,
				Args: gql.FieldConfigArgument{
					"refreshToken": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.String)},
				},
				Resolve: r.refreshToken,
			},
		},
	})

	return gql.NewSchema(gql.SchemaConfig{Query: query, Mutation: mutation})
}

func (r *resolver) product(p gql.ResolveParams) (any, error) {
	id, err := argUUID(p.Args, "id")
	if err != nil {
		return nil, err
	}
	product, err := r.catalog.GetProduct(p.Context, id)
	if err != nil {
		return nil, err
	}
	return toProduct(product), nil
}

func (r *resolver) products(p gql.ResolveParams) (any, error) {
	categoryIDs, err := argUUIDList(p.Args, "categories")
	if err != nil {
		return nil, err
	}
	page, err := r.catalog.ListProducts(p.Context, catalog.ListQuery{
		CategoryIDs: categoryIDs,
		Search:      argString(p.Args, "search"),
		Locale:      argString(p.Args, "locale"),
		Page:        argInt(p.Args, "page"),
		First:       argInt(p.Args, "first"),
	})
	if err != nil {
		return nil, err
	}
	return toProductPage(page), nil
}

func (r *resolver) categories(p gql.ResolveParams) (any, error) {
	views, err := r.catalog.ListCategories(p.Context, argString(p.Args, "locale"))
	if err != nil {
		return nil, err
	}
	return toCategoryViews(views), nil
}

func (r *resolver) order(p gql.ResolveParams) (any, error) {
	id, err := argUUID(p.Args, "id")
	if err != nil {
		return nil, err
	}
	order, err := r.orders.GetOrder(p.Context, id)
	if err != nil {
		return nil, err
	}
	return toOrder(order), nil
}

func (r *resolver) createProduct(p gql.ResolveParams) (any, error) {
	input, err := productInputFromArgs(p.Args)
	if err != nil {
		return nil, err
	}
	product, err := r.catalog.CreateProduct(p.Context, input)
	if err != nil {
		return nil, err
	}
	return toProduct(product), nil
}

func (r *resolver) updateProduct(p gql.ResolveParams) (any, error) {
	id, err := argUUID(p.Args, "id")
	if err != nil {
		return nil, err
	}
	input, err := productInputFromArgs(p.Args)
	if err != nil {
		return nil, err
	}
	product, err := r.catalog.UpdateProduct(p.Context, id, input)
	if err != nil {
		return nil, err
	}
	return toProduct(product), nil
}

func (r *resolver) createOrder(p gql.ResolveParams) (any, error) {
	raw, _ := p.Args["products"].([]any)
	items := make([]orders.LineItemInput, 0, len(raw))
	for _, entry := range raw {
		fields, ok := entry.(map[string]any)
		if !ok {
			return nil, &models.ValidationError{Msg: "malformed line item"}
		}
		productID, err := uuid.Parse(fmt.Sprint(fields["productId"]))
		if err != nil {
			return nil, &models.ValidationError{Msg: "productId must be a valid uuid"}
		}
		quantity, _ := fields["quantity"].(int)
		items = append(items, orders.LineItemInput{ProductID: productID, Quantity: quantity})
	}

	userID, _ := auth.UserIDFromContext(p.Context)
	order, err := r.orders.CreateOrder(p.Context, items, userID)
	if err != nil {
		return nil, err
	}
	return toOrder(order), nil
}

func (r *resolver) login(p gql.ResolveParams) (any, error) {
	set, err := r.auth.Login(p.Context, argString(p.Args, "email"), argString(p.Args, "password"))
	if err != nil {
		return nil, err
	}
	return toTokenSet(set), nil
}

func (r *resolver) refreshToken(p gql.ResolveParams) (any, error) {
	set, err := r.auth.Refresh(p.Context, argString(p.Args, "refreshToken"))
	if err != nil {
		return nil, err
	}
	return toTokenSet(set), nil
}

func productInputFromArgs(args map[string]any) (models.ProductInput, error) {
	var input models.ProductInput

	if v, ok := args["price"].(float64); ok {
		price := decimal.NewFromFloat(v).Round(2)
		input.Price = &price
	}
	if v, ok := args["isActive"].(bool); ok {
		input.IsActive = &v
	}
	if v, ok := args["code"].(string); ok {
		input.Code = &v
	}

	if raw, ok := args["translations"].([]any); ok {
		input.Translations = make([]models.TranslationInput, 0, len(raw))
		for _, entry := range raw {
			fields, ok := entry.(map[string]any)
			if !ok {
				return input, &models.ValidationError{Msg: "malformed translation"}
			}
			t := models.TranslationInput{
				Locale: models.Locale(fmt.Sprint(fields["locale"])),
				Name:   fmt.Sprint(fields["name"]),
			}
			if d, ok := fields["description"].(string); ok {
				t.Description = &d
			}
			input.Translations = append(input.Translations, t)
		}
	}

	categoryIDs, err := argUUIDList(args, "categories")
	if err != nil {
		return input, err
	}
	input.CategoryIDs = categoryIDs

	return input, nil
}

func argString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func argInt(args map[string]any, key string) int {
	v, _ := args[key].(int)
	return v
}

func argUUID(args map[string]any, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(fmt.Sprint(args[key]))
	if err != nil {
		return uuid.Nil, &models.ValidationError{Msg: key + " must be a valid uuid"}
	}
	return id, nil
}

func argUUIDList(args map[string]any, key string) ([]uuid.UUID, error) {
	raw, ok := args[key].([]any)
	if !ok {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, entry := range raw {
		id, err := uuid.Parse(fmt.Sprint(entry))
		if err != nil {
			return nil, &models.ValidationError{Msg: key + " must contain valid uuids"}
		}
		ids = append(ids, id)
	}
	return ids, nil
}
