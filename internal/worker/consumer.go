package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/logger"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/provider"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer handles queued tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates a consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register binds task handlers onto the mux.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderConfirmationEmail, c.handleOrderConfirmationEmail)
}

// handleOrderConfirmationEmail emits the post-checkout confirmation. There is
// no SMTP relay wired in yet, so the send is a structured log line carrying
// everything the mail template needs.
func (c *Consumer) handleOrderConfirmationEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_confirmation_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderConfirmationEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_confirmation_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_confirmation_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_confirmation_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_confirmation_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	receiver := strings.TrimSpace(order.Email)
	if receiver == "" {
		logger.Debugw("worker_order_confirmation_skip_empty_receiver", "order_id", order.ID, "reference", order.Reference)
		return nil
	}
	logger.Infow("order_confirmation_email_sent",
		"order_id", order.ID,
		"reference", order.Reference,
		"receiver_email", receiver,
		"recipient", order.RecipientName,
		"total", order.TotalAmount.String(),
		"currency", order.Currency,
		"items", len(order.Items),
	)
	return nil
}
