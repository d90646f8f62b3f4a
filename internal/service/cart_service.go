package service

import (
	"context"
	"sort"
	"strings"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/broadcast"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/checkout"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/constants"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/logger"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/models"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/repository"

	"github.com/shopspring/decimal"
)

// CartLineDetail is one cart line resolved against the catalog.
type CartLineDetail struct {
	ProductKey    string            `json:"product_key"`
	Name          string            `json:"name"`
	Quantity      int               `json:"quantity"`
	Variant       map[string]string `json:"variant,omitempty"`
	UnitPrice     models.Money      `json:"unit_price"`
	OriginalPrice models.Money      `json:"original_price"`
	LineTotal     models.Money      `json:"line_total"`
	Image         string            `json:"image,omitempty"`
	InStock       bool              `json:"in_stock"`
}

// CartView is the resolved cart with its badge count.
type CartView struct {
	Items    []CartLineDetail `json:"items"`
	Count    int              `json:"count"`
	Currency string           `json:"currency"`
}

// AddCartItemInput adds quantity to a product/variant line.
type AddCartItemInput struct {
	Token      string
	ProductKey string
	Quantity   int
	Variant    map[string]string
}

// SetCartQuantityInput replaces a line's quantity; zero or less removes it.
type SetCartQuantityInput struct {
	Token      string
	ProductKey string
	Quantity   int
	Variant    map[string]string
}

// CartService owns the cart blobs. Every mutation rewrites the whole
// blob for the token and broadcasts the change to other open views.
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	broadcaster *broadcast.Broadcaster
	rules       checkout.PricingRules
}

// NewCartService creates the cart service.
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, broadcaster *broadcast.Broadcaster, rules checkout.PricingRules) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		broadcaster: broadcaster,
		rules:       rules,
	}
}

// normalizeVariant drops blank attribute values so an empty selection and
// an all-blank selection share one identity. Nil means no variant.
func normalizeVariant(variant map[string]string) map[string]string {
	if len(variant) == 0 {
		return nil
	}
	normalized := map[string]string{}
	for k, v := range variant {
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		normalized[k] = v
	}
	if len(normalized) == 0 {
		return nil
	}
	return normalized
}

// variantKey derives a stable identity string from a normalized variant.
func variantKey(variant map[string]string) string {
	if len(variant) == 0 {
		return ""
	}
	keys := make([]string, 0, len(variant))
	for k := range variant {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(variant[k])
		b.WriteByte(';')
	}
	return b.String()
}

func sameLine(line models.CartLine, productKey string, variant map[string]string) bool {
	return line.ProductKey == productKey && variantKey(line.Variant) == variantKey(variant)
}

// Lines loads the raw cart lines for a token. A missing cart is an
// empty cart.
func (s *CartService) Lines(token string) ([]models.CartLine, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrCartTokenRequired
	}
	cart, err := s.cartRepo.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return []models.CartLine{}, nil
	}
	return models.DecodeCartLines(cart.ItemsJSON)
}

// View resolves the cart against the catalog. Lines whose product has
// left the catalog are dropped from the view but kept in the blob.
func (s *CartService) View(token string) (*CartView, error) {
	lines, err := s.Lines(token)
	if err != nil {
		return nil, err
	}
	details, _, err := s.resolve(lines)
	if err != nil {
		return nil, err
	}
	count := 0
	for _, d := range details {
		count += d.Quantity
	}
	return &CartView{Items: details, Count: count, Currency: s.rules.Currency}, nil
}

// Count returns the badge count: total quantity across resolvable lines.
func (s *CartService) Count(token string) (int, error) {
	view, err := s.View(token)
	if err != nil {
		return 0, err
	}
	return view.Count, nil
}

// Add merges quantity into the line matching product and variant, or
// appends a new line at the end.
func (s *CartService) Add(ctx context.Context, input AddCartItemInput) (*CartView, error) {
	if input.Quantity <= 0 || strings.TrimSpace(input.ProductKey) == "" {
		return nil, ErrInvalidCartItem
	}
	product, err := s.productRepo.GetBySlug(input.ProductKey)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if !product.InStock {
		return nil, ErrProductNotAvailable
	}

	variant := normalizeVariant(input.Variant)
	return s.mutate(ctx, input.Token, func(lines []models.CartLine) []models.CartLine {
		for i := range lines {
			if sameLine(lines[i], input.ProductKey, variant) {
				lines[i].Quantity += input.Quantity
				return lines
			}
		}
		return append(lines, models.CartLine{
			ProductKey: input.ProductKey,
			Quantity:   input.Quantity,
			Variant:    variant,
		})
	})
}

// SetQuantity replaces a line's quantity in place; zero or less removes
// the line. A missing line is left alone.
func (s *CartService) SetQuantity(ctx context.Context, input SetCartQuantityInput) (*CartView, error) {
	if strings.TrimSpace(input.ProductKey) == "" {
		return nil, ErrInvalidCartItem
	}
	variant := normalizeVariant(input.Variant)
	return s.mutate(ctx, input.Token, func(lines []models.CartLine) []models.CartLine {
		for i := range lines {
			if sameLine(lines[i], input.ProductKey, variant) {
				if input.Quantity <= 0 {
					return append(lines[:i], lines[i+1:]...)
				}
				lines[i].Quantity = input.Quantity
				return lines
			}
		}
		return lines
	})
}

// Remove deletes the line matching product and variant.
func (s *CartService) Remove(ctx context.Context, token, productKey string, variant map[string]string) (*CartView, error) {
	return s.SetQuantity(ctx, SetCartQuantityInput{
		Token:      token,
		ProductKey: productKey,
		Quantity:   0,
		Variant:    variant,
	})
}

// Clear empties the cart and broadcasts the wipe.
func (s *CartService) Clear(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrCartTokenRequired
	}
	if err := s.save(token, []models.CartLine{}); err != nil {
		return err
	}
	s.publish(ctx, token, constants.CartActionCleared)
	return nil
}

func (s *CartService) mutate(ctx context.Context, token string, fn func([]models.CartLine) []models.CartLine) (*CartView, error) {
	lines, err := s.Lines(token)
	if err != nil {
		return nil, err
	}
	lines = fn(lines)
	if err := s.save(token, lines); err != nil {
		return nil, err
	}
	s.publish(ctx, token, constants.CartActionUpdated)

	details, _, err := s.resolve(lines)
	if err != nil {
		return nil, err
	}
	count := 0
	for _, d := range details {
		count += d.Quantity
	}
	return &CartView{Items: details, Count: count, Currency: s.rules.Currency}, nil
}

// save rewrites the whole blob under the current schema. Last writer
// wins across concurrently open views.
func (s *CartService) save(token string, lines []models.CartLine) error {
	blob, err := models.EncodeCartLines(lines)
	if err != nil {
		return err
	}
	cart, err := s.cartRepo.GetByToken(token)
	if err != nil {
		return err
	}
	if cart == nil {
		cart = &models.Cart{Token: token}
	}
	cart.SchemaVersion = constants.CartSchemaCurrent
	cart.ItemsJSON = blob
	return s.cartRepo.Save(cart)
}

func (s *CartService) publish(ctx context.Context, token, action string) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Publish(ctx, broadcast.CartEvent{Token: token, Action: action})
}

// resolve joins cart lines with the catalog. The second return value
// carries the priced lines used by checkout totals.
func (s *CartService) resolve(lines []models.CartLine) ([]CartLineDetail, []checkout.PricedLine, error) {
	if len(lines) == 0 {
		return []CartLineDetail{}, []checkout.PricedLine{}, nil
	}
	slugSet := map[string]bool{}
	slugs := make([]string, 0, len(lines))
	for _, line := range lines {
		if !slugSet[line.ProductKey] {
			slugSet[line.ProductKey] = true
			slugs = append(slugs, line.ProductKey)
		}
	}
	products, err := s.productRepo.ListBySlugs(slugs)
	if err != nil {
		return nil, nil, err
	}
	bySlug := make(map[string]*models.Product, len(products))
	for i := range products {
		bySlug[products[i].Slug] = &products[i]
	}

	details := make([]CartLineDetail, 0, len(lines))
	priced := make([]checkout.PricedLine, 0, len(lines))
	for _, line := range lines {
		product, ok := bySlug[line.ProductKey]
		if !ok {
			logger.Warnw("cart_line_orphaned", "product_key", line.ProductKey)
			continue
		}
		unit := checkout.DiscountedUnitPrice(product.PriceAmount.Decimal, s.rules)
		total := unit.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}
		details = append(details, CartLineDetail{
			ProductKey:    line.ProductKey,
			Name:          product.Name,
			Quantity:      line.Quantity,
			Variant:       line.Variant,
			UnitPrice:     models.NewMoneyFromDecimal(unit),
			OriginalPrice: product.PriceAmount,
			LineTotal:     models.NewMoneyFromDecimal(total),
			Image:         image,
			InStock:       product.InStock,
		})
		priced = append(priced, checkout.PricedLine{
			ProductKey: line.ProductKey,
			Name:       product.Name,
			Quantity:   line.Quantity,
			Variant:    line.Variant,
			UnitPrice:  unit,
			LineTotal:  total,
		})
	}
	return details, priced, nil
}

// PricedLines resolves the cart into checkout pricing input.
func (s *CartService) PricedLines(token string) ([]checkout.PricedLine, error) {
	lines, err := s.Lines(token)
	if err != nil {
		return nil, err
	}
	_, priced, err := s.resolve(lines)
	if err != nil {
		return nil, err
	}
	return priced, nil
}
