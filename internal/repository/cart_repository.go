package repository

import (
	"errors"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/models"

	"gorm.io/gorm"
)

// CartRepository is the cart blob data access interface.
type CartRepository interface {
	GetByToken(token string) (*models.Cart, error)
	Save(cart *models.Cart) error
	DeleteByToken(token string) error
	WithTx(tx *gorm.DB) CartRepository
}

// GormCartRepository is the GORM implementation.
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates the cart repository.
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormCartRepository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// GetByToken returns the cart blob for a token, nil when absent.
func (r *GormCartRepository) GetByToken(token string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Where("token = ?", token).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Save writes the whole blob, replacing any previous state for the token.
func (r *GormCartRepository) Save(cart *models.Cart) error {
	if cart == nil {
		return nil
	}
	if cart.ID != 0 {
		return r.db.Model(cart).Updates(map[string]interface{}{
			"schema_version": cart.SchemaVersion,
			"items_json":     cart.ItemsJSON,
		}).Error
	}
	return r.db.Create(cart).Error
}

// DeleteByToken drops the cart record entirely.
func (r *GormCartRepository) DeleteByToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&models.Cart{}).Error
}
