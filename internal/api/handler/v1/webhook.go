package v1

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lestade/fanzone-api/internal/api/handler/v1/request"
	"github.com/lestade/fanzone-api/internal/api/handler/v1/response"
	"github.com/lestade/fanzone-api/internal/domain"
	"github.com/lestade/fanzone-api/internal/metrics"
	"github.com/lestade/fanzone-api/internal/service"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Pos-Signature"

type WebhookLoyaltyService interface {
	ApplyPurchase(ctx context.Context, customerRef, orderRef string, amount float64, description string) (domain.PurchaseResult, error)
	ReversePurchase(ctx context.Context, customerRef, orderRef string) (domain.PurchaseResult, error)
}

type WebhookHandler struct {
	secret []byte
	svc    WebhookLoyaltyService
}

func NewWebhookHandler(secret string, svc WebhookLoyaltyService) *WebhookHandler {
	return &WebhookHandler{
		secret: []byte(secret),
		svc:    svc,
	}
}

// HandlePOSEvent godoc
// @Summary      Receive a POS purchase event
// @Tags         webhooks
// @Produce      json
// @Param        request   body      request.POSEventRequest true "request body"
// @Success      200      {object}   response.POSEventResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /webhooks/pos [post]
func (h *WebhookHandler) HandlePOSEvent(ctx *gin.Context) {
	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		metrics.WebhookEventsRejected.Inc()
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if !h.verifySignature(body, ctx.GetHeader(SignatureHeader)) {
		metrics.WebhookEventsRejected.Inc()
		response.RenderErr(ctx, response.ErrUnauthorized("invalid signature"))

		return
	}

	var req request.POSEventRequest
	if err = json.Unmarshal(body, &req); err != nil {
		metrics.WebhookEventsRejected.Inc()
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		metrics.WebhookEventsRejected.Inc()
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	metrics.WebhookEventsReceived.WithLabelValues(req.Type).Inc()

	var result domain.PurchaseResult

	switch req.Type {
	case request.POSEventOrderCreated:
		if req.CustomerRef == "" {
			// No anonymous loyalty credit.
			ctx.JSON(http.StatusOK, response.POSEventResponse{Status: "ignored"})

			return
		}

		result, err = h.svc.ApplyPurchase(ctx.Request.Context(), req.CustomerRef, req.OrderRef, req.Amount, req.Description)

	case request.POSEventOrderDeleted:
		result, err = h.svc.ReversePurchase(ctx.Request.Context(), req.CustomerRef, req.OrderRef)
		if errors.Is(err, service.ErrPurchaseAlreadyReversed) {
			// Redelivered reversal, nothing left to undo.
			ctx.JSON(http.StatusOK, response.POSEventResponse{Status: "already_reversed"})

			return
		}
	}

	if err != nil {
		err = fmt.Errorf("v1.HandlePOSEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	status := "ignored"
	if result.Applied {
		status = "applied"
		metrics.WebhookEventsApplied.WithLabelValues(req.Type).Inc()
	} else if result.AccountID != 0 {
		status = "already_applied"
	}

	zap.L().Info("pos webhook event processed",
		zap.String("type", req.Type),
		zap.String("order_ref", req.OrderRef),
		zap.String("status", status))

	ctx.JSON(http.StatusOK, response.POSEventResponse{
		Status:      status,
		Applied:     result.Applied,
		PointsDelta: result.PointsDelta,
	})
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
