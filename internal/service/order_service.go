package service

import (
	"strings"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/models"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/repository"
)

// OrderService serves the post-checkout order lookup.
type OrderService struct {
	orderRepo repository.OrderRepository
}

// NewOrderService creates the order service.
func NewOrderService(orderRepo repository.OrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

// GetByReference returns the confirmed order for a reference.
func (s *OrderService) GetByReference(reference string) (*models.Order, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}
