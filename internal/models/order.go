package models

import (
	"time"

	"gorm.io/gorm"
)

// Order is the record persisted after a successful checkout. Card data is
// never stored beyond the masked last-4 presentation.
type Order struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	Reference      string         `gorm:"uniqueIndex;not null" json:"reference"`
	Status         string         `gorm:"index;not null" json:"status"`
	Currency       string         `gorm:"not null" json:"currency"`
	SubtotalAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal_amount"`
	ShippingAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_amount"`
	TaxAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`
	TotalAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`
	ShippingTier   string         `gorm:"type:varchar(20);not null" json:"shipping_tier"`
	Email          string         `gorm:"index" json:"email"`
	RecipientName  string         `json:"recipient_name"`
	City           string         `json:"city"`
	Country        string         `json:"country"`
	CardMasked     string         `gorm:"type:varchar(32)" json:"card_masked"`
	PlacedAt       time.Time      `gorm:"index" json:"placed_at"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// TableName names the table.
func (Order) TableName() string {
	return "orders"
}

// OrderItem is a snapshot of one cart line at placement time.
type OrderItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	OrderID     uint      `gorm:"index;not null" json:"order_id"`
	ProductKey  string    `gorm:"not null" json:"product_key"`
	Name        string    `gorm:"not null" json:"name"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	UnitPrice   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`
	TotalAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`
	Variant     StringMap `gorm:"type:json" json:"variant,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName names the table.
func (OrderItem) TableName() string {
	return "order_items"
}
