package provider

import (
	"time"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/broadcast"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/cache"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/checkout"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/config"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/constants"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/logger"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/models"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/payment"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/payment/mockpay"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/queue"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/repository"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/service"

	"github.com/shopspring/decimal"
)

// Container wires repositories, services and shared infrastructure.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Broadcaster *broadcast.Broadcaster

	// Repositories
	ProductRepo repository.ProductRepository
	CartRepo    repository.CartRepository
	OrderRepo   repository.OrderRepository

	// Services
	CatalogService  *service.CatalogService
	CartService     *service.CartService
	CheckoutService *service.CheckoutService
	OrderService    *service.OrderService

	Gateway payment.Gateway
}

// NewContainer initializes the container.
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Broadcaster: broadcast.New(),
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
}

func (c *Container) initServices() {
	rules := c.PricingRules()
	c.Gateway = buildGateway(c.Config)

	c.CatalogService = service.NewCatalogService(c.ProductRepo, rules)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, c.Broadcaster, rules)
	c.CheckoutService = service.NewCheckoutService(
		c.CartService,
		c.OrderRepo,
		c.Gateway,
		c.QueueClient,
		rules,
		time.Duration(c.Config.Checkout.SessionTTLMinutes)*time.Minute,
	)
	c.OrderService = service.NewOrderService(c.OrderRepo)
}

// PricingRules converts pricing config into checkout rules.
func (c *Container) PricingRules() checkout.PricingRules {
	return checkout.PricingRules{
		Currency:              c.Config.Pricing.Currency,
		DiscountRate:          decimal.NewFromFloat(c.Config.Pricing.DiscountRate),
		ExpressFee:            decimal.NewFromFloat(c.Config.Pricing.ExpressFee),
		FreeShippingThreshold: decimal.NewFromFloat(c.Config.Pricing.FreeShippingThreshold),
	}
}

func buildGateway(cfg *config.Config) payment.Gateway {
	switch cfg.Payment.Provider {
	case constants.PaymentProviderMock, "":
		return mockpay.New(cfg.Payment.Mock.DeclineCard)
	default:
		logger.Warnw("payment_provider_unknown",
			"provider", cfg.Payment.Provider,
			"fallback", constants.PaymentProviderMock,
		)
		return mockpay.New(cfg.Payment.Mock.DeclineCard)
	}
}
