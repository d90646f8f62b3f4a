package queue

import (
	"encoding/json"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderConfirmationEmail sends the receipt after checkout.
	TaskOrderConfirmationEmail = constants.TaskOrderConfirmationEmail
)

// OrderConfirmationEmailPayload identifies the confirmed order.
type OrderConfirmationEmailPayload struct {
	OrderID uint `json:"order_id"`
}

// NewOrderConfirmationEmailTask builds the confirmation email task.
func NewOrderConfirmationEmailTask(payload OrderConfirmationEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderConfirmationEmail, body), nil
}
