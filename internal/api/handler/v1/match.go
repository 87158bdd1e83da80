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

type MatchService interface {
	ListMatches(ctx context.Context) ([]domain.Match, error)
	GetMatch(ctx context.Context, id uint) (domain.Match, error)
	SubmitPrediction(ctx context.Context, userID, matchID uint, homeScore, awayScore int) (domain.Prediction, error)
	ListPredictions(ctx context.Context, userID uint) ([]domain.Prediction, error)
}

type MatchHandler struct {
	svc MatchService
}

func NewMatchHandler(svc MatchService) *MatchHandler {
	return &MatchHandler{
		svc: svc,
	}
}

// HandleListMatches godoc
// @Summary      List all matches
// @Tags         matches
// @Produce      json
// @Success      200 {object} []domain.Match
// @Failure      500 {object} response.Err
// @Router       /matches [get]
func (h *MatchHandler) HandleListMatches(ctx *gin.Context) {
	matches, err := h.svc.ListMatches(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListMatches -> h.svc.ListMatches -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, matches)
}

// HandleGetMatch godoc
// @Summary      Get one match with candidates and scorers
// @Tags         matches
// @Produce      json
// @Param        matchID   path       int  true  "match ID"
// @Success      200      {object}   domain.Match
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /matches/{matchID} [get]
func (h *MatchHandler) HandleGetMatch(ctx *gin.Context) {
	matchID, err := parseUintParam(ctx, "matchID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	match, err := h.svc.GetMatch(ctx.Request.Context(), matchID)
	if err != nil {
		if errors.Is(err, service.ErrMatchNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrMatchNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleGetMatch -> h.svc.GetMatch -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, match)
}

// HandleSubmitPrediction godoc
// @Summary      Create or update the caller's prediction for a match
// @Tags         matches
// @Produce      json
// @Param        matchID   path       int  true  "match ID"
// @Param        request   body       request.PredictionRequest true "request body"
// @Success      200      {object}   domain.Prediction
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      422      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /matches/{matchID}/prediction [put]
func (h *MatchHandler) HandleSubmitPrediction(ctx *gin.Context) {
	matchID, err := parseUintParam(ctx, "matchID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	userID, err := getUserID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrUnauthorized(err.Error()))

		return
	}

	var req request.PredictionRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	prediction, err := h.svc.SubmitPrediction(ctx.Request.Context(), userID, matchID, *req.HomeScore, *req.AwayScore)
	if err != nil {
		if errors.Is(err, service.ErrMatchNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrMatchNotFound))

			return
		}
		if errors.Is(err, service.ErrPredictionsClosed) {
			response.RenderErr(ctx, response.ErrInvalidState(service.ErrPredictionsClosed))

			return
		}

		err = fmt.Errorf("v1.HandleSubmitPrediction -> h.svc.SubmitPrediction -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, prediction)
}

// HandleListPredictions godoc
// @Summary      List the caller's predictions
// @Tags         matches
// @Produce      json
// @Success      200 {object} []domain.Prediction
// @Failure      500 {object} response.Err
// @Router       /predictions [get]
func (h *MatchHandler) HandleListPredictions(ctx *gin.Context) {
	userID, err := getUserID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrUnauthorized(err.Error()))

		return
	}

	predictions, err := h.svc.ListPredictions(ctx.Request.Context(), userID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListPredictions -> h.svc.ListPredictions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, predictions)
}
