package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// VariantOption is one selectable product attribute and its allowed values.
type VariantOption struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// VariantOptions is a JSON-encoded, order-preserving option set column.
type VariantOptions []VariantOption

// Value implements driver.Valuer.
func (v VariantOptions) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Scan implements sql.Scanner.
func (v *VariantOptions) Scan(value interface{}) error {
	if value == nil {
		*v = VariantOptions{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, v)
}

// Product is an immutable catalog record. The checkout flow never writes it.
type Product struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Slug            string         `gorm:"uniqueIndex;not null" json:"slug"`
	Name            string         `gorm:"not null" json:"name"`
	Description     string         `gorm:"type:text" json:"description"`
	PriceAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"`
	CompareAtAmount *Money         `gorm:"type:decimal(20,2)" json:"compare_at_amount,omitempty"`
	Images          StringArray    `gorm:"type:json" json:"images"`
	Options         VariantOptions `gorm:"type:json" json:"options"`
	InStock         bool           `gorm:"default:true;index" json:"in_stock"`
	SortOrder       int            `gorm:"default:0;index" json:"sort_order"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName names the table.
func (Product) TableName() string {
	return "products"
}
