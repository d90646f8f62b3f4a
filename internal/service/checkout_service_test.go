package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/broadcast"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/checkout"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/constants"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/payment/mockpay"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/queue"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/repository"

	"gorm.io/gorm"
)

type checkoutFixture struct {
	cart     *CartService
	checkout *CheckoutService
	orders   *OrderService
	db       *gorm.DB
}

func newCheckoutFixture(t *testing.T, name, declineCard string) *checkoutFixture {
	t.Helper()
	db := openTestDB(t, name)
	rules := testPricingRules()
	cart := NewCartService(
		repository.NewCartRepository(db),
		repository.NewProductRepository(db),
		broadcast.New(),
		rules,
	)
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatal(err)
	}
	orderRepo := repository.NewOrderRepository(db)
	co := NewCheckoutService(cart, orderRepo, mockpay.New(declineCard), queueClient, rules, time.Hour)
	return &checkoutFixture{
		cart:     cart,
		checkout: co,
		orders:   NewOrderService(orderRepo),
		db:       db,
	}
}

func fillValidForms(t *testing.T, f *checkoutFixture, token string) {
	t.Helper()
	if _, err := f.checkout.UpdateAddress(token, checkout.Address{
		FirstName: "Jane", LastName: "Doe",
		Email: "jane@example.com", Phone: "+1 (555) 123-4567",
		Line1: "1 Main St", City: "Springfield", State: "IL",
		Zip: "62704", Country: "US",
	}, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := f.checkout.UpdatePayment(token, checkout.CardDetails{
		CardholderName: "Jane Doe",
		CardNumber:     "4242424242424242",
		Expiry:         "12/39",
		CVC:            "123",
	}, nil); err != nil {
		t.Fatal(err)
	}
}

func walkToReview(t *testing.T, f *checkoutFixture, token string) {
	t.Helper()
	for i := 0; i < 3; i++ {
		state, err := f.checkout.Next(token)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if len(state.Errors) > 0 && i == 2 {
			t.Fatalf("unexpected visible errors: %v", state.Errors)
		}
	}
}

func TestCheckoutHappyPath(t *testing.T) {
	f := newCheckoutFixture(t, "checkout_happy", "")
	seedProduct(t, f.db, "sony-tv", 599)
	ctx := context.Background()

	if _, err := f.cart.Add(ctx, AddCartItemInput{Token: "tok", ProductKey: "sony-tv", Quantity: 1}); err != nil {
		t.Fatal(err)
	}
	state, err := f.checkout.Begin("tok")
	if err != nil {
		t.Fatal(err)
	}
	if state.Step != "address" {
		t.Fatalf("expected address, got %s", state.Step)
	}
	if state.Totals.Subtotal.String() != "539.1" {
		t.Errorf("subtotal = %s, want 539.1", state.Totals.Subtotal)
	}

	fillValidForms(t, f, "tok")
	if _, err := f.checkout.UpdateShipping("tok", constants.ShippingTierExpress); err != nil {
		t.Fatal(err)
	}
	walkToReview(t, f, "tok")

	state, err = f.checkout.State("tok")
	if err != nil {
		t.Fatal(err)
	}
	if state.Totals.Total.String() != "564.09" {
		t.Errorf("express total = %s, want 564.09", state.Totals.Total)
	}
	if state.DeliveryEstimate != constants.DeliveryEstimateExpress {
		t.Errorf("estimate = %q", state.DeliveryEstimate)
	}
	if state.CardMasked != "**** **** **** 4242" {
		t.Errorf("card masked = %q", state.CardMasked)
	}

	state, err = f.checkout.PlaceOrder(ctx, "tok")
	if err != nil {
		t.Fatal(err)
	}
	if state.Step != "confirmation" {
		t.Fatalf("expected confirmation, got %s", state.Step)
	}
	if state.OrderRef == "" {
		t.Fatal("order ref missing")
	}

	// Cart is cleared after placement.
	count, err := f.cart.Count("tok")
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("cart should be empty after placement, got %d", count)
	}

	order, err := f.orders.GetByReference(state.OrderRef)
	if err != nil {
		t.Fatal(err)
	}
	if order.Status != constants.OrderStatusConfirmed {
		t.Errorf("order status = %q", order.Status)
	}
	if order.TotalAmount.String() != "564.09" {
		t.Errorf("order total = %s", order.TotalAmount)
	}
	if len(order.Items) != 1 || order.Items[0].ProductKey != "sony-tv" {
		t.Errorf("unexpected order items %+v", order.Items)
	}
	if order.CardMasked != "**** **** **** 4242" {
		t.Errorf("order card masked = %q", order.CardMasked)
	}
}

func TestCheckoutEmptyCartCannotPlace(t *testing.T) {
	f := newCheckoutFixture(t, "checkout_empty", "")
	seedProduct(t, f.db, "sony-tv", 599)
	ctx := context.Background()

	if _, err := f.cart.Add(ctx, AddCartItemInput{Token: "tok", ProductKey: "sony-tv", Quantity: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.checkout.Begin("tok"); err != nil {
		t.Fatal(err)
	}
	fillValidForms(t, f, "tok")
	walkToReview(t, f, "tok")

	if err := f.cart.Clear(ctx, "tok"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.checkout.PlaceOrder(ctx, "tok"); !errors.Is(err, checkout.ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestCheckoutDecline(t *testing.T) {
	f := newCheckoutFixture(t, "checkout_decline", "4242424242424242")
	seedProduct(t, f.db, "sony-tv", 599)
	ctx := context.Background()

	if _, err := f.cart.Add(ctx, AddCartItemInput{Token: "tok", ProductKey: "sony-tv", Quantity: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.checkout.Begin("tok"); err != nil {
		t.Fatal(err)
	}
	fillValidForms(t, f, "tok")
	walkToReview(t, f, "tok")

	if _, err := f.checkout.PlaceOrder(ctx, "tok"); !errors.Is(err, ErrPaymentDeclined) {
		t.Fatalf("expected ErrPaymentDeclined, got %v", err)
	}

	// Shopper stays at review and the cart survives for a retry.
	state, err := f.checkout.State("tok")
	if err != nil {
		t.Fatal(err)
	}
	if state.Step != "review" {
		t.Errorf("expected review after decline, got %s", state.Step)
	}
	count, err := f.cart.Count("tok")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("cart should survive a decline, got %d", count)
	}
}

func TestCheckoutInvalidAddressBlocksAdvance(t *testing.T) {
	f := newCheckoutFixture(t, "checkout_invalid", "")
	seedProduct(t, f.db, "sony-tv", 599)
	ctx := context.Background()

	if _, err := f.cart.Add(ctx, AddCartItemInput{Token: "tok", ProductKey: "sony-tv", Quantity: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.checkout.Begin("tok"); err != nil {
		t.Fatal(err)
	}

	// Errors stay hidden until the fields are touched by a failed advance.
	state, err := f.checkout.State("tok")
	if err != nil {
		t.Fatal(err)
	}
	if len(state.Errors) != 0 {
		t.Fatalf("errors should be hidden before interaction, got %v", state.Errors)
	}

	state, err = f.checkout.Next("tok")
	if err != nil {
		t.Fatal(err)
	}
	if state.Step != "address" {
		t.Errorf("invalid address should keep the wizard in place, got %s", state.Step)
	}
	if state.Errors["first_name"] == "" {
		t.Errorf("failed advance should surface errors, got %v", state.Errors)
	}
}

func TestCheckoutPlaceOrderJumpsBack(t *testing.T) {
	f := newCheckoutFixture(t, "checkout_jumpback", "")
	seedProduct(t, f.db, "sony-tv", 599)
	ctx := context.Background()

	if _, err := f.cart.Add(ctx, AddCartItemInput{Token: "tok", ProductKey: "sony-tv", Quantity: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.checkout.Begin("tok"); err != nil {
		t.Fatal(err)
	}
	fillValidForms(t, f, "tok")
	walkToReview(t, f, "tok")

	// Invalidate the card after reaching review.
	if _, err := f.checkout.UpdatePayment("tok", checkout.CardDetails{
		CardholderName: "Jane Doe",
		CardNumber:     "4242424242424241",
		Expiry:         "12/39",
		CVC:            "123",
	}, nil); err != nil {
		t.Fatal(err)
	}

	state, err := f.checkout.PlaceOrder(ctx, "tok")
	if !errors.Is(err, checkout.ErrPaymentInvalid) {
		t.Fatalf("expected ErrPaymentInvalid, got %v", err)
	}
	if state == nil || state.Step != "payment" {
		t.Fatalf("expected jump back to payment, got %+v", state)
	}
	if state.Errors["card_number"] == "" {
		t.Errorf("card error should be visible, got %v", state.Errors)
	}
}

func TestCheckoutSessionExpiry(t *testing.T) {
	f := newCheckoutFixture(t, "checkout_expiry", "")
	seedProduct(t, f.db, "sony-tv", 599)

	if _, err := f.checkout.Begin("tok"); err != nil {
		t.Fatal(err)
	}

	base := time.Now()
	f.checkout.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, err := f.checkout.State("tok"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expired session should vanish, got %v", err)
	}

	f.checkout.now = time.Now
	if _, err := f.checkout.Begin("tok"); err != nil {
		t.Fatal(err)
	}
	f.checkout.now = func() time.Time { return base.Add(3 * time.Hour) }
	if removed := f.checkout.SweepExpired(); removed != 1 {
		t.Errorf("sweep should remove 1 session, got %d", removed)
	}
}

func TestCheckoutVariantReachesOrder(t *testing.T) {
	f := newCheckoutFixture(t, "checkout_variant", "")
	seedProduct(t, f.db, "iphone15", 999)
	ctx := context.Background()

	variant := map[string]string{"color": "black", "storage": "256GB"}
	if _, err := f.cart.Add(ctx, AddCartItemInput{Token: "tok", ProductKey: "iphone15", Quantity: 1, Variant: variant}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.checkout.Begin("tok"); err != nil {
		t.Fatal(err)
	}
	fillValidForms(t, f, "tok")
	walkToReview(t, f, "tok")

	state, err := f.checkout.PlaceOrder(ctx, "tok")
	if err != nil {
		t.Fatal(err)
	}
	order, err := f.orders.GetByReference(state.OrderRef)
	if err != nil {
		t.Fatal(err)
	}
	if got := map[string]string(order.Items[0].Variant); got["color"] != "black" || got["storage"] != "256GB" {
		t.Errorf("variant snapshot lost, got %v", got)
	}
}

func TestCheckoutConcurrentRequestsSameToken(t *testing.T) {
	f := newCheckoutFixture(t, "checkout_concurrent", "")
	seedProduct(t, f.db, "sony-tv", 599)
	ctx := context.Background()

	if _, err := f.cart.Add(ctx, AddCartItemInput{Token: "tok", ProductKey: "sony-tv", Quantity: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.checkout.Begin("tok"); err != nil {
		t.Fatal(err)
	}

	address := checkout.Address{
		FirstName: "Jane", LastName: "Doe",
		Email: "jane@example.com", Phone: "+1 (555) 123-4567",
		Line1: "1 Main St", City: "Springfield", State: "IL",
		Zip: "62704", Country: "US",
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				if _, err := f.checkout.UpdateAddress("tok", address, []string{"first_name", "email"}); err != nil {
					t.Error(err)
					return
				}
				if _, err := f.checkout.Next("tok"); err != nil {
					t.Error(err)
					return
				}
				if _, err := f.checkout.State("tok"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	state, err := f.checkout.State("tok")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := checkout.ParseStep(state.Step); err != nil {
		t.Fatalf("session left in unknown step %q", state.Step)
	}
}
