package constants

// Shipping tier constants
const (
	ShippingTierStandard = "standard"
	ShippingTierExpress  = "express"
)

// Delivery estimate copy per tier
const (
	DeliveryEstimateStandard = "5-12 business days"
	DeliveryEstimateExpress  = "2-5 business days"
)

// Order status constants
const (
	OrderStatusConfirmed = "confirmed"
)

// Cart blob schema versions
const (
	// CartSchemaLegacy is the variant-less line format kept for old carts.
	CartSchemaLegacy = 1
	// CartSchemaCurrent carries an optional variant selection per line.
	CartSchemaCurrent = 2
)

// Queue names
const (
	QueueDefault = "default"
)

// Task type constants
const (
	TaskOrderConfirmationEmail = "order:confirmation_email"
)

// Cart change actions broadcast to other open views
const (
	CartActionUpdated = "updated"
	CartActionCleared = "cleared"
)

// Payment provider constants
const (
	PaymentProviderMock = "mock"
)
