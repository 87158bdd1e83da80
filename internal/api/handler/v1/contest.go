package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lestade/fanzone-api/internal/api/handler/v1/request"
	"github.com/lestade/fanzone-api/internal/api/handler/v1/response"
	"github.com/lestade/fanzone-api/internal/domain"
	"github.com/lestade/fanzone-api/internal/service"
)

type ContestQRCodeService interface {
	Scan(ctx context.Context, userID uint, code string) (domain.ScanResult, error)
	Register(ctx context.Context, userID uint, code string) (domain.RegistrationResult, error)
}

type ContestTicketService interface {
	ListUserTickets(ctx context.Context, userID uint) ([]domain.ScorerTicket, error)
}

type ContestRewardService interface {
	ListUserRewards(ctx context.Context, userID uint) ([]domain.RewardCode, error)
}

type ContestLoyaltyService interface {
	GetAccount(ctx context.Context, userID uint) (domain.LoyaltyAccount, error)
	ListTransactions(ctx context.Context, userID uint) ([]domain.LoyaltyTransaction, error)
}

type ContestHandler struct {
	qrcodes ContestQRCodeService
	tickets ContestTicketService
	rewards ContestRewardService
	loyalty ContestLoyaltyService
}

func NewContestHandler(qrcodes ContestQRCodeService, tickets ContestTicketService, rewards ContestRewardService, loyalty ContestLoyaltyService) *ContestHandler {
	return &ContestHandler{
		qrcodes: qrcodes,
		tickets: tickets,
		rewards: rewards,
		loyalty: loyalty,
	}
}

// HandleScan godoc
// @Summary      Scan the daily QR code
// @Tags         contest
// @Produce      json
// @Param        request   body      request.ScanRequest true "request body"
// @Success      200      {object}   domain.ScanResult
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      422      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /scans [post]
func (h *ContestHandler) HandleScan(ctx *gin.Context) {
	userID, err := getUserID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrUnauthorized(err.Error()))

		return
	}

	var req request.ScanRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	result, err := h.qrcodes.Scan(ctx.Request.Context(), userID, req.Code)
	if err != nil {
		if errors.Is(err, service.ErrCodeNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrCodeNotFound))

			return
		}
		if errors.Is(err, service.ErrCodeInactive) || errors.Is(err, service.ErrCodeNotValidToday) {
			response.RenderErr(ctx, response.ErrInvalidState(err))

			return
		}

		err = fmt.Errorf("v1.HandleScan -> h.qrcodes.Scan -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleRegister godoc
// @Summary      Register for the prediction contest with a campaign code
// @Tags         contest
// @Produce      json
// @Param        request   body      request.RegisterRequest true "request body"
// @Success      200      {object}   domain.RegistrationResult
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      422      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /register [post]
func (h *ContestHandler) HandleRegister(ctx *gin.Context) {
	userID, err := getUserID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrUnauthorized(err.Error()))

		return
	}

	var req request.RegisterRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	result, err := h.qrcodes.Register(ctx.Request.Context(), userID, req.Code)
	if err != nil {
		if errors.Is(err, service.ErrRegistrationCodeNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrRegistrationCodeNotFound))

			return
		}
		if errors.Is(err, service.ErrCodeInactive) {
			response.RenderErr(ctx, response.ErrInvalidState(service.ErrCodeInactive))

			return
		}

		err = fmt.Errorf("v1.HandleRegister -> h.qrcodes.Register -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleListTickets godoc
// @Summary      List the caller's scorer tickets
// @Tags         contest
// @Produce      json
// @Success      200 {object} []domain.ScorerTicket
// @Failure      500 {object} response.Err
// @Router       /tickets [get]
func (h *ContestHandler) HandleListTickets(ctx *gin.Context) {
	userID, err := getUserID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrUnauthorized(err.Error()))

		return
	}

	tickets, err := h.tickets.ListUserTickets(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListTickets -> h.tickets.ListUserTickets -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, tickets)
}

// HandleListRewards godoc
// @Summary      List the caller's reward codes
// @Tags         contest
// @Produce      json
// @Success      200 {object} []domain.RewardCode
// @Failure      500 {object} response.Err
// @Router       /rewards [get]
func (h *ContestHandler) HandleListRewards(ctx *gin.Context) {
	userID, err := getUserID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrUnauthorized(err.Error()))

		return
	}

	rewards, err := h.rewards.ListUserRewards(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListRewards -> h.rewards.ListUserRewards -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, rewards)
}

// HandleGetLoyalty godoc
// @Summary      Get the caller's loyalty account and ledger
// @Tags         contest
// @Produce      json
// @Success      200 {object} response.LoyaltyResponse
// @Failure      500 {object} response.Err
// @Router       /loyalty [get]
func (h *ContestHandler) HandleGetLoyalty(ctx *gin.Context) {
	userID, err := getUserID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrUnauthorized(err.Error()))

		return
	}

	account, err := h.loyalty.GetAccount(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetLoyalty -> h.loyalty.GetAccount -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	transactions, err := h.loyalty.ListTransactions(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetLoyalty -> h.loyalty.ListTransactions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.LoyaltyResponse{
		Account:      account,
		Transactions: transactions,
	})
}
