package repository

import (
	"errors"
	"strings"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/models"

	"gorm.io/gorm"
)

// ProductListFilter narrows the catalog listing.
type ProductListFilter struct {
	Search      string
	InStockOnly bool
}

// ProductRepository is the catalog data access interface.
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, error)
	GetBySlug(slug string) (*models.Product, error)
	ListBySlugs(slugs []string) ([]models.Product, error)
	Create(product *models.Product) error
	Count() (int64, error)
	WithTx(tx *gorm.DB) ProductRepository
}

// GormProductRepository is the GORM implementation.
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates the catalog repository.
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// List returns the catalog in display order.
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, error) {
	var products []models.Product
	query := r.db.Model(&models.Product{})
	if filter.InStockOnly {
		query = query.Where("in_stock = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR slug LIKE ?", like, like)
	}
	if err := query.Order("sort_order ASC, id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetBySlug returns one product, nil when absent.
func (r *GormProductRepository) GetBySlug(slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.Where("slug = ?", slug).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListBySlugs resolves cart lines against the catalog in one query.
func (r *GormProductRepository) ListBySlugs(slugs []string) ([]models.Product, error) {
	if len(slugs) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	if err := r.db.Where("slug IN ?", slugs).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Create inserts a product.
func (r *GormProductRepository) Create(product *models.Product) error {
	if product == nil {
		return nil
	}
	return r.db.Create(product).Error
}

// Count returns the catalog size including out-of-stock products.
func (r *GormProductRepository) Count() (int64, error) {
	var total int64
	err := r.db.Model(&models.Product{}).Count(&total).Error
	return total, err
}
