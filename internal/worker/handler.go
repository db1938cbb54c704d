// Package worker reacts to placed orders: it mails the buyer a confirmation
// and starts processing the order.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
	"github.com/joao-fontenele/ekla-marketplace/internal/email"
	"github.com/joao-fontenele/ekla-marketplace/internal/orders"
)

type EmailSender interface {
	Send(ctx context.Context, msg email.Message) (email.Receipt, error)
}

type NotificationHandler struct {
	emails EmailSender
	orders orders.Repository
	logger *slog.Logger
}

func NewNotificationHandler(emails EmailSender, repo orders.Repository, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		emails: emails,
		orders: repo,
		logger: logger,
	}
}

// Handle processes one order.placed payload. Only pending orders move to
// processing, so a status an admin or seller already changed is kept.
func (h *NotificationHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderPlacedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order placed event: %w", err)
	}

	h.logger.InfoContext(ctx, "processing order placed event", "order_id", event.OrderID, "number", event.Number)

	receipt, err := h.emails.Send(ctx, confirmationEmail(event))
	if err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	h.logger.InfoContext(ctx, "confirmation email sent", "order_id", event.OrderID, "email_id", receipt.ID)

	order, err := h.orders.GetByID(ctx, event.OrderID)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		h.logger.WarnContext(ctx, "placed order not found", "order_id", event.OrderID)
		return nil
	}

	updated, err := h.orders.TransitionStatus(ctx, event.OrderID, domain.OrderStatusPending, domain.OrderStatusProcessing)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if updated == nil {
		h.logger.InfoContext(ctx, "order already moved on", "order_id", event.OrderID)
		return nil
	}

	h.logger.InfoContext(ctx, "order processing started", "order_id", event.OrderID)
	return nil
}

func confirmationEmail(event domain.OrderPlacedEvent) email.Message {
	var b strings.Builder
	name := event.CustomerName
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\nThank you for your order. Your order number is %s.\n\n", name, event.Number)
	for _, l := range event.Lines {
		fmt.Fprintf(&b, "%d x %s  $%s\n", l.Quantity, l.Name, l.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: $%s\n", event.Total.StringFixed(2))

	return email.Message{
		To:      event.CustomerEmail,
		Subject: "Order Confirmation: " + event.Number,
		Body:    b.String(),
	}
}
