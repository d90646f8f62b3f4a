package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/broadcast"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/checkout"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/models"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/payment/mockpay"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/provider"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/queue"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/repository"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newTestHandler(t *testing.T, name string) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Cart{}, &models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	rules := checkout.PricingRules{
		Currency:     "USD",
		DiscountRate: decimal.NewFromFloat(0.10),
		ExpressFee:   decimal.NewFromFloat(24.99),
	}
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}
	broadcaster := broadcast.New()
	cartService := service.NewCartService(cartRepo, productRepo, broadcaster, rules)
	container := &provider.Container{
		Broadcaster:     broadcaster,
		ProductRepo:     productRepo,
		CartRepo:        cartRepo,
		OrderRepo:       orderRepo,
		QueueClient:     queueClient,
		CatalogService:  service.NewCatalogService(productRepo, rules),
		CartService:     cartService,
		CheckoutService: service.NewCheckoutService(cartService, orderRepo, mockpay.New(""), queueClient, rules, 30*time.Minute),
		OrderService:    service.NewOrderService(orderRepo),
	}
	return New(container), db
}

func newTestEngine(h *Handler) *gin.Engine {
	engine := gin.New()
	engine.GET("/products", h.ListProducts)
	engine.GET("/products/:slug", h.GetProduct)
	engine.GET("/cart", h.GetCart)
	engine.GET("/cart/count", h.GetCartCount)
	engine.POST("/cart/items", h.AddCartItem)
	engine.POST("/checkout/session", h.BeginCheckout)
	engine.PUT("/checkout/address", h.UpdateAddress)
	engine.PUT("/checkout/shipping", h.UpdateShipping)
	engine.PUT("/checkout/payment", h.UpdatePayment)
	engine.POST("/checkout/next", h.NextStep)
	engine.POST("/checkout/place-order", h.PlaceOrder)
	engine.GET("/orders/:reference", h.GetOrder)
	return engine
}

func seedHandlerProduct(t *testing.T, db *gorm.DB, slug string, price float64) {
	t.Helper()
	product := models.Product{
		Slug:        slug,
		Name:        slug,
		PriceAmount: models.NewMoneyFromFloat(price),
		InStock:     true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(CartTokenHeader, token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope failed: %v, body %s", err, w.Body.String())
	}
	return envelope
}

func envelopeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	envelope := decodeEnvelope(t, w)
	data, ok := envelope["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected data object, body %s", w.Body.String())
	}
	return data
}

func envelopeCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	envelope := decodeEnvelope(t, w)
	code, ok := envelope["status_code"].(float64)
	if !ok {
		t.Fatalf("expected status_code, body %s", w.Body.String())
	}
	return int(code)
}

func TestCartTokenMintedWhenAbsent(t *testing.T) {
	h, _ := newTestHandler(t, "handler_token")
	engine := newTestEngine(h)

	w := doJSON(t, engine, http.MethodGet, "/cart", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get(CartTokenHeader) == "" {
		t.Fatal("expected minted cart token in response header")
	}
}

func TestCartTokenEchoed(t *testing.T) {
	h, _ := newTestHandler(t, "handler_echo")
	engine := newTestEngine(h)

	w := doJSON(t, engine, http.MethodGet, "/cart", "tok-shopper", "")
	if got := w.Header().Get(CartTokenHeader); got != "tok-shopper" {
		t.Fatalf("expected echoed token, got %q", got)
	}
}

func TestAddCartItemAndCount(t *testing.T) {
	h, db := newTestHandler(t, "handler_add")
	engine := newTestEngine(h)
	seedHandlerProduct(t, db, "galaxy-s24", 599)

	w := doJSON(t, engine, http.MethodPost, "/cart/items", "tok-add",
		`{"product_key":"galaxy-s24","quantity":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body %s", w.Code, w.Body.String())
	}
	data := envelopeData(t, w)
	if count, _ := data["count"].(float64); count != 2 {
		t.Fatalf("expected count 2, got %v", data["count"])
	}

	w = doJSON(t, engine, http.MethodGet, "/cart/count", "tok-add", "")
	data = envelopeData(t, w)
	if count, _ := data["count"].(float64); count != 2 {
		t.Fatalf("expected badge count 2, got %v", data["count"])
	}
}

func TestAddCartItemUnknownProduct(t *testing.T) {
	h, _ := newTestHandler(t, "handler_unknown")
	engine := newTestEngine(h)

	w := doJSON(t, engine, http.MethodPost, "/cart/items", "tok-unknown",
		`{"product_key":"no-such","quantity":1}`)
	if code := envelopeCode(t, w); code != 404 {
		t.Fatalf("expected code 404, got %d, body %s", code, w.Body.String())
	}
}

func TestGetProductNotFound(t *testing.T) {
	h, _ := newTestHandler(t, "handler_product_404")
	engine := newTestEngine(h)

	w := doJSON(t, engine, http.MethodGet, "/products/ghost", "", "")
	if code := envelopeCode(t, w); code != 404 {
		t.Fatalf("expected code 404, got %d", code)
	}
}

func TestCheckoutFlowOverHTTP(t *testing.T) {
	h, db := newTestHandler(t, "handler_checkout")
	engine := newTestEngine(h)
	seedHandlerProduct(t, db, "galaxy-s24", 599)
	token := "tok-checkout"

	w := doJSON(t, engine, http.MethodPost, "/cart/items", token,
		`{"product_key":"galaxy-s24","quantity":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("add to cart failed: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, engine, http.MethodPost, "/checkout/session", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("begin checkout failed: %d %s", w.Code, w.Body.String())
	}
	data := envelopeData(t, w)
	if data["step"] != "address" {
		t.Fatalf("expected address step, got %v", data["step"])
	}

	w = doJSON(t, engine, http.MethodPut, "/checkout/address", token,
		`{"address":{"first_name":"Jane","last_name":"Doe","email":"jane@example.com","phone":"4155550123","line1":"1 Market St","city":"San Francisco","state":"CA","zip":"94105","country":"US"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update address failed: %d %s", w.Code, w.Body.String())
	}
	w = doJSON(t, engine, http.MethodPost, "/checkout/next", token, "")
	if data = envelopeData(t, w); data["step"] != "shipping" {
		t.Fatalf("expected shipping step, got %v", data["step"])
	}

	w = doJSON(t, engine, http.MethodPut, "/checkout/shipping", token, `{"tier":"standard"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update shipping failed: %d %s", w.Code, w.Body.String())
	}
	w = doJSON(t, engine, http.MethodPost, "/checkout/next", token, "")
	if data = envelopeData(t, w); data["step"] != "payment" {
		t.Fatalf("expected payment step, got %v", data["step"])
	}

	w = doJSON(t, engine, http.MethodPut, "/checkout/payment", token,
		`{"card":{"cardholder_name":"Jane Doe","card_number":"4242 4242 4242 4242","expiry":"12/39","cvc":"123"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update payment failed: %d %s", w.Code, w.Body.String())
	}
	w = doJSON(t, engine, http.MethodPost, "/checkout/next", token, "")
	if data = envelopeData(t, w); data["step"] != "review" {
		t.Fatalf("expected review step, got %v", data["step"])
	}

	w = doJSON(t, engine, http.MethodPost, "/checkout/place-order", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("place order failed: %d %s", w.Code, w.Body.String())
	}
	data = envelopeData(t, w)
	if data["step"] != "confirmation" {
		t.Fatalf("expected confirmation step, got %v", data["step"])
	}
	reference, _ := data["order_ref"].(string)
	if !strings.HasPrefix(reference, "ZV-") {
		t.Fatalf("expected ZV- order reference, got %q", reference)
	}

	w = doJSON(t, engine, http.MethodGet, "/orders/"+reference, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get order failed: %d %s", w.Code, w.Body.String())
	}
	data = envelopeData(t, w)
	if data["reference"] != reference {
		t.Fatalf("expected order %q, got %v", reference, data["reference"])
	}

	w = doJSON(t, engine, http.MethodGet, "/cart/count", token, "")
	data = envelopeData(t, w)
	if count, _ := data["count"].(float64); count != 0 {
		t.Fatalf("expected cleared cart, got %v", data["count"])
	}
}

func TestPlaceOrderValidationReturnsState(t *testing.T) {
	h, db := newTestHandler(t, "handler_validation")
	engine := newTestEngine(h)
	seedHandlerProduct(t, db, "galaxy-s24", 599)
	token := "tok-invalid"

	w := doJSON(t, engine, http.MethodPost, "/cart/items", token,
		`{"product_key":"galaxy-s24","quantity":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("add to cart failed: %d %s", w.Code, w.Body.String())
	}
	w = doJSON(t, engine, http.MethodPost, "/checkout/session", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("begin checkout failed: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, engine, http.MethodPost, "/checkout/place-order", token, "")
	if code := envelopeCode(t, w); code != 400 {
		t.Fatalf("expected code 400 before review, got %d %s", code, w.Body.String())
	}
}
