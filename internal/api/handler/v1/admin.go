package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lestade/fanzone-api/internal/api/handler/v1/request"
	"github.com/lestade/fanzone-api/internal/api/handler/v1/response"
	"github.com/lestade/fanzone-api/internal/config"
	"github.com/lestade/fanzone-api/internal/domain"
	"github.com/lestade/fanzone-api/internal/service"
)

type AdminMatchService interface {
	CreateMatch(ctx context.Context, match domain.Match) (domain.Match, error)
	LockMatch(ctx context.Context, id uint) error
	CreatePlayer(ctx context.Context, player domain.Player) (domain.Player, error)
	SetCandidates(ctx context.Context, matchID uint, playerIDs []uint) error
	RecordScorers(ctx context.Context, matchID uint, playerIDs []uint) error
}

type AdminScoringService interface {
	ScoreMatch(ctx context.Context, matchID uint, homeScore, awayScore int) (domain.ScoringSummary, error)
}

type AdminTicketService interface {
	ResolveMatch(ctx context.Context, matchID uint) (domain.TicketResolution, error)
	Redeem(ctx context.Context, code string) (domain.ScorerTicket, error)
}

type AdminQRCodeService interface {
	RotateDailyCode(ctx context.Context, date time.Time) (domain.DailyQRCode, error)
}

type AdminDrawService interface {
	CurrentPeriod(now time.Time) (year, week int)
	PerformDraw(ctx context.Context, year, week, winnerCount int, prizes []string) (domain.WeeklyDraw, error)
	ClaimPrize(ctx context.Context, winnerID uint) (domain.DrawWinner, error)
}

type AdminRewardService interface {
	Redeem(ctx context.Context, code string, staffID uint) (domain.RewardCode, error)
}

type AdminLoyaltyService interface {
	ReversePurchase(ctx context.Context, customerRef, orderRef string) (domain.PurchaseResult, error)
}

type AdminHandler struct {
	conf    *config.ContestConfig
	matches AdminMatchService
	scoring AdminScoringService
	tickets AdminTicketService
	qrcodes AdminQRCodeService
	draws   AdminDrawService
	rewards AdminRewardService
	loyalty AdminLoyaltyService
}

func NewAdminHandler(
	conf *config.ContestConfig,
	matches AdminMatchService,
	scoring AdminScoringService,
	tickets AdminTicketService,
	qrcodes AdminQRCodeService,
	draws AdminDrawService,
	rewards AdminRewardService,
	loyalty AdminLoyaltyService,
) *AdminHandler {
	return &AdminHandler{
		conf:    conf,
		matches: matches,
		scoring: scoring,
		tickets: tickets,
		qrcodes: qrcodes,
		draws:   draws,
		rewards: rewards,
		loyalty: loyalty,
	}
}

// HandleCreateMatch godoc
// @Summary      Create a match
// @Tags         admin
// @Produce      json
// @Param        request   body      request.CreateMatchRequest true "request body"
// @Success      201      {object}   domain.Match
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/matches [post]
func (h *AdminHandler) HandleCreateMatch(ctx *gin.Context) {
	var req request.CreateMatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	match, err := h.matches.CreateMatch(ctx.Request.Context(), domain.Match{
		HomeTeam: req.HomeTeam,
		AwayTeam: req.AwayTeam,
		Kickoff:  req.Kickoff,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateMatch -> h.matches.CreateMatch -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, match)
}

// HandleLockMatch godoc
// @Summary      Freeze predictions for a match
// @Tags         admin
// @Produce      json
// @Param        matchID   path       int  true  "match ID"
// @Success      204
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/matches/{matchID}/lock [post]
func (h *AdminHandler) HandleLockMatch(ctx *gin.Context) {
	matchID, err := parseUintParam(ctx, "matchID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = h.matches.LockMatch(ctx.Request.Context(), matchID); err != nil {
		if errors.Is(err, service.ErrMatchNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrMatchNotFound))

			return
		}

		err = fmt.Errorf("v1.HandleLockMatch -> h.matches.LockMatch -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleFinalizeResult godoc
// @Summary      Record the final score, grade predictions and resolve tickets
// @Tags         admin
// @Produce      json
// @Param        matchID   path       int  true  "match ID"
// @Param        request   body       request.MatchResultRequest true "request body"
// @Success      200      {object}   response.MatchResultResponse
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/matches/{matchID}/result [put]
func (h *AdminHandler) HandleFinalizeResult(ctx *gin.Context) {
	matchID, err := parseUintParam(ctx, "matchID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	var req request.MatchResultRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	scoring, err := h.scoring.ScoreMatch(ctx.Request.Context(), matchID, *req.HomeScore, *req.AwayScore)
	if err != nil {
		if errors.Is(err, service.ErrMatchNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrMatchNotFound))

			return
		}
		if errors.Is(err, service.ErrMatchAlreadyFinished) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrMatchAlreadyFinished))

			return
		}

		err = fmt.Errorf("v1.HandleFinalizeResult -> h.scoring.ScoreMatch -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	tickets, err := h.tickets.ResolveMatch(ctx.Request.Context(), matchID)
	if err != nil {
		err = fmt.Errorf("v1.HandleFinalizeResult -> h.tickets.ResolveMatch -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.MatchResultResponse{
		Scoring: scoring,
		Tickets: tickets,
	})
}

// HandleRecordScorers godoc
// @Summary      Record the actual scorers of a match
// @Tags         admin
// @Produce      json
// @Param        matchID   path       int  true  "match ID"
// @Param        request   body       request.ScorersRequest true "request body"
// @Success      204
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/matches/{matchID}/scorers [post]
func (h *AdminHandler) HandleRecordScorers(ctx *gin.Context) {
	matchID, err := parseUintParam(ctx, "matchID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	var req request.ScorersRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = h.matches.RecordScorers(ctx.Request.Context(), matchID, req.PlayerIDs); err != nil {
		if errors.Is(err, service.ErrMatchNotFound) || errors.Is(err, service.ErrPlayerNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(err))

			return
		}

		err = fmt.Errorf("v1.HandleRecordScorers -> h.matches.RecordScorers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleSetCandidates godoc
// @Summary      Replace the candidate scorer set of a match
// @Tags         admin
// @Produce      json
// @Param        matchID   path       int  true  "match ID"
// @Param        request   body       request.CandidatesRequest true "request body"
// @Success      204
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/matches/{matchID}/candidates [post]
func (h *AdminHandler) HandleSetCandidates(ctx *gin.Context) {
	matchID, err := parseUintParam(ctx, "matchID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	var req request.CandidatesRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err = h.matches.SetCandidates(ctx.Request.Context(), matchID, req.PlayerIDs); err != nil {
		if errors.Is(err, service.ErrMatchNotFound) || errors.Is(err, service.ErrPlayerNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(err))

			return
		}

		err = fmt.Errorf("v1.HandleSetCandidates -> h.matches.SetCandidates -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleCreatePlayer godoc
// @Summary      Create a player
// @Tags         admin
// @Produce      json
// @Param        request   body      request.CreatePlayerRequest true "request body"
// @Success      201      {object}   domain.Player
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/players [post]
func (h *AdminHandler) HandleCreatePlayer(ctx *gin.Context) {
	var req request.CreatePlayerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	player, err := h.matches.CreatePlayer(ctx.Request.Context(), domain.Player{
		Name:   req.Name,
		Number: req.Number,
		Team:   req.Team,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleCreatePlayer -> h.matches.CreatePlayer -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, player)
}

// HandleRotateDailyCode godoc
// @Summary      Rotate today's sweepstake QR code
// @Tags         admin
// @Produce      json
// @Success      200 {object} domain.DailyQRCode
// @Failure      500 {object} response.Err
// @Router       /admin/daily-code/rotate [post]
func (h *AdminHandler) HandleRotateDailyCode(ctx *gin.Context) {
	code, err := h.qrcodes.RotateDailyCode(ctx.Request.Context(), time.Now())
	if err != nil {
		err = fmt.Errorf("v1.HandleRotateDailyCode -> h.qrcodes.RotateDailyCode -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, code)
}

// HandlePerformDraw godoc
// @Summary      Perform the weekly draw for a period
// @Tags         admin
// @Produce      json
// @Param        request   body      request.PerformDrawRequest true "request body"
// @Success      200      {object}   domain.WeeklyDraw
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/draws/perform [post]
func (h *AdminHandler) HandlePerformDraw(ctx *gin.Context) {
	var req request.PerformDrawRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	year, week := req.Year, req.Week
	if year == 0 || week == 0 {
		// Default to the week that ended this morning.
		year, week = h.draws.CurrentPeriod(time.Now().AddDate(0, 0, -1))
	}

	winnerCount := req.WinnerCount
	if winnerCount == 0 {
		winnerCount = h.conf.WeeklyWinnerCount
	}

	draw, err := h.draws.PerformDraw(ctx.Request.Context(), year, week, winnerCount, req.Prizes)
	if err != nil {
		if errors.Is(err, service.ErrDrawAlreadyCompleted) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrDrawAlreadyCompleted))

			return
		}

		err = fmt.Errorf("v1.HandlePerformDraw -> h.draws.PerformDraw -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, draw)
}

// HandleClaimPrize godoc
// @Summary      Mark a draw winner's prize as claimed
// @Tags         admin
// @Produce      json
// @Param        winnerID  path       int  true  "winner ID"
// @Success      200      {object}   domain.DrawWinner
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/winners/{winnerID}/claim [post]
func (h *AdminHandler) HandleClaimPrize(ctx *gin.Context) {
	winnerID, err := parseUintParam(ctx, "winnerID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	winner, err := h.draws.ClaimPrize(ctx.Request.Context(), winnerID)
	if err != nil {
		if errors.Is(err, service.ErrWinnerNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrWinnerNotFound))

			return
		}
		if errors.Is(err, service.ErrPrizeAlreadyClaimed) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrPrizeAlreadyClaimed))

			return
		}

		err = fmt.Errorf("v1.HandleClaimPrize -> h.draws.ClaimPrize -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, winner)
}

// HandleRedeemTicket godoc
// @Summary      Redeem a winning scorer ticket by code
// @Tags         admin
// @Produce      json
// @Param        code      path       string  true  "ticket code"
// @Success      200      {object}   domain.ScorerTicket
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      422      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/tickets/{code}/redeem [post]
func (h *AdminHandler) HandleRedeemTicket(ctx *gin.Context) {
	ticket, err := h.tickets.Redeem(ctx.Request.Context(), ctx.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrTicketNotFound))

			return
		}
		if errors.Is(err, service.ErrTicketNotWinning) {
			response.RenderErr(ctx, response.ErrInvalidState(service.ErrTicketNotWinning))

			return
		}
		if errors.Is(err, service.ErrTicketAlreadyRedeemed) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrTicketAlreadyRedeemed))

			return
		}

		err = fmt.Errorf("v1.HandleRedeemTicket -> h.tickets.Redeem -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, ticket)
}

// HandleRedeemReward godoc
// @Summary      Redeem a reward code
// @Tags         admin
// @Produce      json
// @Param        code      path       string  true  "reward code"
// @Success      200      {object}   domain.RewardCode
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      422      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/rewards/{code}/redeem [post]
func (h *AdminHandler) HandleRedeemReward(ctx *gin.Context) {
	staffID, err := getUserID(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrUnauthorized(err.Error()))

		return
	}

	reward, err := h.rewards.Redeem(ctx.Request.Context(), ctx.Param("code"), staffID)
	if err != nil {
		if errors.Is(err, service.ErrRewardNotFound) {
			response.RenderErr(ctx, response.ErrNotFound(service.ErrRewardNotFound))

			return
		}
		if errors.Is(err, service.ErrRewardExpired) {
			response.RenderErr(ctx, response.ErrInvalidState(service.ErrRewardExpired))

			return
		}
		if errors.Is(err, service.ErrRewardAlreadyRedeemed) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrRewardAlreadyRedeemed))

			return
		}

		err = fmt.Errorf("v1.HandleRedeemReward -> h.rewards.Redeem -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, reward)
}

// HandleReversePurchase godoc
// @Summary      Manually reverse an applied POS purchase
// @Tags         admin
// @Produce      json
// @Param        request   body      request.ReversePurchaseRequest true "request body"
// @Success      200      {object}   response.POSEventResponse
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/purchases/reverse [post]
func (h *AdminHandler) HandleReversePurchase(ctx *gin.Context) {
	var req request.ReversePurchaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	result, err := h.loyalty.ReversePurchase(ctx.Request.Context(), req.CustomerRef, req.OrderRef)
	if err != nil {
		if errors.Is(err, service.ErrPurchaseAlreadyReversed) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrPurchaseAlreadyReversed))

			return
		}

		err = fmt.Errorf("v1.HandleReversePurchase -> h.loyalty.ReversePurchase -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	status := "ignored"
	if result.Applied {
		status = "reversed"
	}

	ctx.JSON(http.StatusOK, response.POSEventResponse{
		Status:      status,
		Applied:     result.Applied,
		PointsDelta: result.PointsDelta,
	})
}
