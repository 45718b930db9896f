package payments

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tokyosushibar/backend/models"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "payments").Logger()

// Reconciler folds a canonical provider payment state into the owning order.
type Reconciler interface {
	ReconcilePaymentStatus(ctx context.Context, payment *Payment) error
}

// WebhookHandler receives Mollie's asynchronous status callbacks. Mollie
// posts only a payment id; the posted status is advisory, so the canonical
// state is always re-fetched from the provider before reconciling.
type WebhookHandler struct {
	client Client
	orders Reconciler
}

func NewWebhookHandler(client Client, orders Reconciler) *WebhookHandler {
	return &WebhookHandler{client: client, orders: orders}
}

// HandleUpdateStatus returns a non-2xx on any internal failure so the
// provider retries the callback instead of the failure being swallowed.
func (h *WebhookHandler) HandleUpdateStatus(c *gin.Context) {
	var req struct {
		ID     string `form:"id" binding:"required"`
		Status string `form:"status"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook payload"})
		return
	}

	payment, err := h.client.GetPayment(c.Request.Context(), req.ID)
	if err != nil {
		logger.Error().Err(err).Str("payment_id", req.ID).Msg("failed to fetch payment from provider")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch payment"})
		return
	}

	if err := h.orders.ReconcilePaymentStatus(c.Request.Context(), payment); err != nil {
		var notFound *models.NotFoundError
		if errors.As(err, &notFound) {
			logger.Warn().Str("payment_id", req.ID).Msg("webhook for unknown payment")
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown payment"})
			return
		}
		logger.Error().Err(err).Str("payment_id", req.ID).Msg("failed to reconcile payment status")
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to update order status"})
		return
	}

	logger.Info().
		Str("payment_id", req.ID).
		Str("status", payment.Status).
		Msg("payment status reconciled")
	c.JSON(http.StatusOK, gin.H{"message": "payment status updated"})
}
