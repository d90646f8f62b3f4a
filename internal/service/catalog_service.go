package service

import (
	"strings"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/checkout"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/models"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductDetail is a catalog entry with its promotional price applied.
type ProductDetail struct {
	Slug            string                `json:"slug"`
	Name            string                `json:"name"`
	Description     string                `json:"description"`
	Price           models.Money          `json:"price"`
	OriginalPrice   models.Money          `json:"original_price"`
	CompareAtPrice  *models.Money         `json:"compare_at_price,omitempty"`
	Currency        string                `json:"currency"`
	Images          []string              `json:"images"`
	Options         models.VariantOptions `json:"options"`
	InStock         bool                  `json:"in_stock"`
	DiscountPercent int                   `json:"discount_percent"`
}

// CatalogService serves the read-only product catalog.
type CatalogService struct {
	productRepo repository.ProductRepository
	rules       checkout.PricingRules
}

// NewCatalogService creates the catalog service.
func NewCatalogService(productRepo repository.ProductRepository, rules checkout.PricingRules) *CatalogService {
	return &CatalogService{productRepo: productRepo, rules: rules}
}

// List returns the catalog in display order, optionally filtered by a
// name/slug search term.
func (s *CatalogService) List(search string) ([]ProductDetail, error) {
	products, err := s.productRepo.List(repository.ProductListFilter{
		Search: strings.TrimSpace(search),
	})
	if err != nil {
		return nil, err
	}
	details := make([]ProductDetail, 0, len(products))
	for _, product := range products {
		details = append(details, s.toDetail(&product))
	}
	return details, nil
}

// GetBySlug returns one product.
func (s *CatalogService) GetBySlug(slug string) (*ProductDetail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrProductNotFound
	}
	product, err := s.productRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	detail := s.toDetail(product)
	return &detail, nil
}

var hundred = decimal.NewFromInt(100)

func (s *CatalogService) toDetail(product *models.Product) ProductDetail {
	discounted := checkout.DiscountedUnitPrice(product.PriceAmount.Decimal, s.rules)
	percent := int(s.rules.DiscountRate.Mul(hundred).IntPart())
	images := product.Images
	if images == nil {
		images = []string{}
	}
	options := product.Options
	if options == nil {
		options = models.VariantOptions{}
	}
	return ProductDetail{
		Slug:            product.Slug,
		Name:            product.Name,
		Description:     product.Description,
		Price:           models.NewMoneyFromDecimal(discounted),
		OriginalPrice:   product.PriceAmount,
		CompareAtPrice:  product.CompareAtAmount,
		Currency:        s.rules.Currency,
		Images:          images,
		Options:         options,
		InStock:         product.InStock,
		DiscountPercent: percent,
	}
}
