package models

import (
	"github.com/wallgreat218-lgtm/zenvora-store/internal/logger"

	"github.com/shopspring/decimal"
)

func compareAt(amount float64) *Money {
	m := NewMoneyFromDecimal(decimal.NewFromFloat(amount))
	return &m
}

// DefaultCatalog is the built-in consumer-electronics catalog used to seed
// an empty store.
func DefaultCatalog() []Product {
	return []Product{
		{
			Slug:        "iphone15",
			Name:        "iPhone 15",
			Description: "Latest iPhone 15",
			PriceAmount: NewMoneyFromFloat(999),
			Images:      StringArray{"/products/iphone15.svg"},
			Options: VariantOptions{
				{Name: "color", Values: []string{"Graphite", "Silver", "Blue"}},
				{Name: "storage", Values: []string{"128GB", "256GB", "512GB"}},
			},
			InStock:   true,
			SortOrder: 1,
		},
		{
			Slug:        "galaxy-s24",
			Name:        "Galaxy S24",
			Description: "Samsung Galaxy S24",
			PriceAmount: NewMoneyFromFloat(899),
			Images:      StringArray{"/products/galaxy-s24.svg"},
			Options: VariantOptions{
				{Name: "color", Values: []string{"Onyx Black", "Marble Gray"}},
				{Name: "storage", Values: []string{"128GB", "256GB"}},
			},
			InStock:   true,
			SortOrder: 2,
		},
		{
			Slug:            "dell-laptop",
			Name:            "Dell Laptop",
			Description:     "Powerful Dell laptop",
			PriceAmount:     NewMoneyFromFloat(1199),
			CompareAtAmount: compareAt(1399),
			Images:          StringArray{"/products/dell-laptop.svg"},
			InStock:         true,
			SortOrder:       3,
		},
		{
			Slug:        "hp-desktop",
			Name:        "HP Desktop",
			Description: "Reliable HP desktop",
			PriceAmount: NewMoneyFromFloat(799),
			Images:      StringArray{"/products/hp-desktop.svg"},
			InStock:     true,
			SortOrder:   4,
		},
		{
			Slug:            "sony-tv",
			Name:            "Sony TV",
			Description:     "Crystal clear Sony TV",
			PriceAmount:     NewMoneyFromFloat(699),
			CompareAtAmount: compareAt(899),
			Images:          StringArray{"/products/sony-tv.svg"},
			InStock:         true,
			SortOrder:       5,
		},
		{
			Slug:        "logitech-mouse",
			Name:        "Logitech Mouse",
			Description: "Ergonomic mouse",
			PriceAmount: NewMoneyFromFloat(49),
			Images:      StringArray{"/products/logitech-mouse.svg"},
			Options: VariantOptions{
				{Name: "color", Values: []string{"Black", "White"}},
			},
			InStock:   true,
			SortOrder: 6,
		},
		{
			Slug:        "keyboard",
			Name:        "Mechanical Keyboard",
			Description: "Tactile mechanical keyboard",
			PriceAmount: NewMoneyFromFloat(129),
			Images:      StringArray{"/products/keyboard.svg"},
			InStock:     true,
			SortOrder:   7,
		},
		{
			Slug:        "headphones",
			Name:        "Wireless Headphones",
			Description: "Noise-cancelling headphones",
			PriceAmount: NewMoneyFromFloat(199),
			Images:      StringArray{"/products/headphones.svg"},
			Options: VariantOptions{
				{Name: "color", Values: []string{"Black", "Silver"}},
			},
			InStock:   true,
			SortOrder: 8,
		},
	}
}

// SeedDefaultCatalog inserts the built-in catalog when the products table
// is empty. Existing catalogs are left untouched.
func SeedDefaultCatalog() error {
	var count int64
	DB.Model(&Product{}).Count(&count)
	if count > 0 {
		return nil
	}

	products := DefaultCatalog()
	if err := DB.Create(&products).Error; err != nil {
		return err
	}
	logger.Infow("default_catalog_seeded", "products", len(products))
	return nil
}
