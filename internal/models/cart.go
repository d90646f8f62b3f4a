package models

import (
	"encoding/json"
	"time"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/constants"
)

// CartLine is one entry in a cart blob, keyed by product and variant
// selection. Variant is nil for products without options.
type CartLine struct {
	ProductKey string            `json:"product_key"`
	Quantity   int               `json:"quantity"`
	Variant    map[string]string `json:"variant,omitempty"`
}

// legacyCartLine is the v1 variant-less line format.
type legacyCartLine struct {
	ProductKey string `json:"product_key"`
	Slug       string `json:"slug"`
	Quantity   int    `json:"quantity"`
}

// cartEnvelope wraps the ordered line list under a schema version.
type cartEnvelope struct {
	Version int             `json:"version"`
	Items   json.RawMessage `json:"items"`
}

// Cart persists a whole cart as one blob per token. Writes replace the
// blob atomically, so last writer wins across concurrently open views.
type Cart struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	Token         string    `gorm:"uniqueIndex;not null" json:"token"`
	SchemaVersion int       `gorm:"not null;default:2" json:"schema_version"`
	ItemsJSON     []byte    `gorm:"type:json" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `gorm:"index" json:"updated_at"`
}

// TableName names the table.
func (Cart) TableName() string {
	return "carts"
}

// EncodeCartLines serializes lines under the current schema version.
func EncodeCartLines(lines []CartLine) ([]byte, error) {
	if lines == nil {
		lines = []CartLine{}
	}
	items, err := json.Marshal(lines)
	if err != nil {
		return nil, err
	}
	return json.Marshal(cartEnvelope{
		Version: constants.CartSchemaCurrent,
		Items:   items,
	})
}

// DecodeCartLines parses a cart blob, tolerating the legacy v1 schema:
// a bare array (or version-1 envelope) of variant-less lines keyed by
// slug, each migrated by wrapping it with an absent variant selection.
func DecodeCartLines(blob []byte) ([]CartLine, error) {
	if len(blob) == 0 {
		return []CartLine{}, nil
	}

	raw := blob
	version := constants.CartSchemaLegacy
	if blob[0] == '{' {
		var envelope cartEnvelope
		if err := json.Unmarshal(blob, &envelope); err != nil {
			return nil, err
		}
		raw = envelope.Items
		version = envelope.Version
	}
	if len(raw) == 0 {
		return []CartLine{}, nil
	}

	if version >= constants.CartSchemaCurrent {
		var lines []CartLine
		if err := json.Unmarshal(raw, &lines); err != nil {
			return nil, err
		}
		if lines == nil {
			lines = []CartLine{}
		}
		return lines, nil
	}

	var legacy []legacyCartLine
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, err
	}
	lines := make([]CartLine, 0, len(legacy))
	for _, item := range legacy {
		key := item.ProductKey
		if key == "" {
			key = item.Slug
		}
		lines = append(lines, CartLine{
			ProductKey: key,
			Quantity:   item.Quantity,
		})
	}
	return lines, nil
}
