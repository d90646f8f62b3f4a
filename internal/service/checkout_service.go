package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/checkout"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/constants"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/logger"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/models"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/payment"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/queue"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/repository"
)

// CheckoutState is the wizard snapshot returned to the storefront.
// Card data never leaves the server unmasked.
type CheckoutState struct {
	Step             string                `json:"step"`
	MaxStep          string                `json:"max_step"`
	Address          checkout.Address      `json:"address"`
	ShippingTier     string                `json:"shipping_tier"`
	DeliveryEstimate string                `json:"delivery_estimate"`
	CardMasked       string                `json:"card_masked,omitempty"`
	CardholderName   string                `json:"cardholder_name,omitempty"`
	Expiry           string                `json:"expiry,omitempty"`
	Errors           checkout.FieldErrors  `json:"errors"`
	Items            []checkout.PricedLine `json:"items"`
	Totals           checkout.Totals       `json:"totals"`
	OrderRef         string                `json:"order_ref,omitempty"`
}

// CheckoutService drives the wizard. Sessions live in memory keyed by
// cart token and expire after the configured TTL.
type CheckoutService struct {
	mu       sync.Mutex
	sessions map[string]*checkout.Session

	cartService *CartService
	orderRepo   repository.OrderRepository
	gateway     payment.Gateway
	queueClient *queue.Client
	rules       checkout.PricingRules
	ttl         time.Duration
	now         func() time.Time
}

// NewCheckoutService creates the checkout service.
func NewCheckoutService(cartService *CartService, orderRepo repository.OrderRepository, gateway payment.Gateway, queueClient *queue.Client, rules checkout.PricingRules, ttl time.Duration) *CheckoutService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CheckoutService{
		sessions:    map[string]*checkout.Session{},
		cartService: cartService,
		orderRepo:   orderRepo,
		gateway:     gateway,
		queueClient: queueClient,
		rules:       rules,
		ttl:         ttl,
		now:         time.Now,
	}
}

// Begin returns the live session for a token, starting one when absent
// or expired. Completed sessions restart so the shopper can buy again.
func (s *CheckoutService) Begin(token string) (*CheckoutState, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrCartTokenRequired
	}
	now := s.now()
	s.mu.Lock()
	sess, ok := s.sessions[token]
	expired := ok && now.After(sess.ExpiresAt)
	s.mu.Unlock()

	restart := !ok || expired
	if !restart {
		sess.Lock()
		restart = sess.Complete()
		sess.Unlock()
	}
	if restart {
		sess = checkout.NewSession(token)
	}

	s.mu.Lock()
	sess.ExpiresAt = now.Add(s.ttl)
	s.sessions[token] = sess
	s.mu.Unlock()

	sess.Lock()
	defer sess.Unlock()
	return s.state(sess)
}

// State returns the current wizard snapshot.
func (s *CheckoutService) State(token string) (*CheckoutState, error) {
	sess, err := s.session(token)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	return s.state(sess)
}

func (s *CheckoutService) session(token string) (*checkout.Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrCartTokenRequired
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if now.After(sess.ExpiresAt) {
		delete(s.sessions, token)
		return nil, ErrSessionNotFound
	}
	sess.ExpiresAt = now.Add(s.ttl)
	return sess, nil
}

// UpdateAddress replaces the address form and marks the named fields as
// touched. Validation failures surface in the state, not as errors.
func (s *CheckoutService) UpdateAddress(token string, address checkout.Address, touched []string) (*CheckoutState, error) {
	sess, err := s.session(token)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	sess.SetAddress(address)
	for _, f := range touched {
		sess.Touch(f)
	}
	return s.state(sess)
}

// UpdateShipping selects the shipping tier.
func (s *CheckoutService) UpdateShipping(token, tier string) (*CheckoutState, error) {
	sess, err := s.session(token)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	sess.SetTier(tier)
	return s.state(sess)
}

// UpdatePayment replaces the card form and marks the named fields as
// touched.
func (s *CheckoutService) UpdatePayment(token string, card checkout.CardDetails, touched []string) (*CheckoutState, error) {
	sess, err := s.session(token)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	sess.SetCard(card)
	for _, f := range touched {
		sess.Touch(f)
	}
	return s.state(sess)
}

// Next advances the wizard one step. Invalid input keeps the wizard in
// place; the refreshed state carries the now-visible field errors.
func (s *CheckoutService) Next(token string) (*CheckoutState, error) {
	sess, err := s.session(token)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	if err := sess.Advance(s.now()); err != nil {
		switch {
		case errors.Is(err, checkout.ErrAddressInvalid), errors.Is(err, checkout.ErrPaymentInvalid):
			// reflected in the state's errors map
		default:
			return nil, err
		}
	}
	return s.state(sess)
}

// Back moves one step backward.
func (s *CheckoutService) Back(token string) (*CheckoutState, error) {
	sess, err := s.session(token)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	sess.Back()
	return s.state(sess)
}

// Goto jumps to an already-reached step.
func (s *CheckoutService) Goto(token, stepName string) (*CheckoutState, error) {
	sess, err := s.session(token)
	if err != nil {
		return nil, err
	}
	target, err := checkout.ParseStep(stepName)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	if err := sess.Goto(target); err != nil {
		return nil, err
	}
	return s.state(sess)
}

// PlaceOrder finalizes the wizard: re-validates everything, authorizes
// the charge, persists the order, clears the cart and queues the
// confirmation email. On validation failure the wizard jumps back to
// the first broken step and the refreshed state is returned.
func (s *CheckoutService) PlaceOrder(ctx context.Context, token string) (*CheckoutState, error) {
	sess, err := s.session(token)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	priced, err := s.cartService.PricedLines(token)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := sess.PlaceOrder(now, len(priced) == 0); err != nil {
		switch {
		case errors.Is(err, checkout.ErrAddressInvalid), errors.Is(err, checkout.ErrPaymentInvalid):
			state, stateErr := s.state(sess)
			if stateErr != nil {
				return nil, stateErr
			}
			return state, err
		default:
			return nil, err
		}
	}

	totals := checkout.ComputeTotals(priced, sess.Tier, s.rules)
	draftLines := make([]payment.DraftLine, 0, len(priced))
	for _, line := range priced {
		draftLines = append(draftLines, payment.DraftLine{
			ProductKey: line.ProductKey,
			Name:       line.Name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
		})
	}
	result, err := s.gateway.Submit(ctx, payment.Draft{
		Lines:          draftLines,
		Total:          totals.Total,
		Currency:       totals.Currency,
		CardholderName: sess.Card.CardholderName,
		CardNumber:     sess.Card.CardNumber,
	})
	if err != nil {
		// the wizard returns to review so the shopper can retry
		sess.Step = checkout.StepReview
		sess.MaxStep = checkout.StepReview
		switch {
		case errors.Is(err, payment.ErrCardDeclined):
			return nil, ErrPaymentDeclined
		default:
			logger.Errorw("payment_submit_failed", "provider", s.gateway.Name(), "error", err)
			return nil, ErrPaymentUnavailable
		}
	}
	sess.OrderRef = result.OrderRef

	order := s.buildOrder(sess, priced, totals, now)
	if err := s.orderRepo.Create(order); err != nil {
		logger.Errorw("order_persist_failed", "order_ref", result.OrderRef, "error", err)
		return nil, err
	}

	if err := s.cartService.Clear(ctx, token); err != nil {
		logger.Warnw("cart_clear_failed", "token", token, "error", err)
	}

	if err := s.queueClient.EnqueueOrderConfirmationEmail(queue.OrderConfirmationEmailPayload{OrderID: order.ID}); err != nil {
		logger.Warnw("confirmation_email_enqueue_failed", "order_id", order.ID, "error", err)
	}

	logger.Infow("order_placed",
		"order_ref", order.Reference,
		"total", order.TotalAmount.String(),
		"items", len(order.Items),
	)
	return s.state(sess)
}

func (s *CheckoutService) buildOrder(sess *checkout.Session, priced []checkout.PricedLine, totals checkout.Totals, now time.Time) *models.Order {
	items := make([]models.OrderItem, 0, len(priced))
	for _, line := range priced {
		items = append(items, models.OrderItem{
			ProductKey:  line.ProductKey,
			Name:        line.Name,
			Quantity:    line.Quantity,
			UnitPrice:   models.NewMoneyFromDecimal(line.UnitPrice),
			TotalAmount: models.NewMoneyFromDecimal(line.LineTotal),
			Variant:     models.StringMap(line.Variant),
		})
	}
	return &models.Order{
		Reference:      sess.OrderRef,
		Status:         constants.OrderStatusConfirmed,
		Currency:       totals.Currency,
		SubtotalAmount: models.NewMoneyFromDecimal(totals.Subtotal),
		ShippingAmount: models.NewMoneyFromDecimal(totals.Shipping),
		TaxAmount:      models.NewMoneyFromDecimal(totals.Tax),
		TotalAmount:    models.NewMoneyFromDecimal(totals.Total),
		ShippingTier:   sess.Tier,
		Email:          sess.Address.Email,
		RecipientName:  strings.TrimSpace(sess.Address.FirstName + " " + sess.Address.LastName),
		City:           sess.Address.City,
		Country:        sess.Address.Country,
		CardMasked:     checkout.MaskCardNumber(sess.Card.CardNumber),
		PlacedAt:       now,
		Items:          items,
	}
}

func (s *CheckoutService) state(sess *checkout.Session) (*CheckoutState, error) {
	priced, err := s.cartService.PricedLines(sess.Token)
	if err != nil {
		return nil, err
	}
	totals := checkout.ComputeTotals(priced, sess.Tier, s.rules)
	state := &CheckoutState{
		Step:             sess.Step.String(),
		MaxStep:          sess.MaxStep.String(),
		Address:          sess.Address,
		ShippingTier:     sess.Tier,
		DeliveryEstimate: checkout.DeliveryEstimate(sess.Tier),
		CardholderName:   sess.Card.CardholderName,
		Expiry:           sess.Card.Expiry,
		Errors:           sess.VisibleErrors(s.now()),
		Items:            priced,
		Totals:           totals,
		OrderRef:         sess.OrderRef,
	}
	if strings.TrimSpace(sess.Card.CardNumber) != "" {
		state.CardMasked = checkout.MaskCardNumber(sess.Card.CardNumber)
	}
	return state, nil
}

// SweepExpired drops sessions past their TTL. The app runs this on a
// ticker.
func (s *CheckoutService) SweepExpired() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}
