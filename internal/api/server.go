package api

import (
	"math/rand"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lestade/fanzone-api/docs"
	v1 "github.com/lestade/fanzone-api/internal/api/handler/v1"
	"github.com/lestade/fanzone-api/internal/api/middleware"
	"github.com/lestade/fanzone-api/internal/config"
	"github.com/lestade/fanzone-api/internal/repository"
	"github.com/lestade/fanzone-api/internal/repository/dao"
	"github.com/lestade/fanzone-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	loc, err := time.LoadLocation(conf.Contest.Timezone)
	if err != nil {
		zap.L().Warn("invalid contest timezone, falling back to UTC",
			zap.String("timezone", conf.Contest.Timezone))
		loc = time.UTC
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	matchRepo := repository.NewMatchRepository(dao.NewMatchDAO(db))

	authSvc := service.NewAuthService(userRepo)
	userSvc := service.NewUserService(userRepo)
	matchSvc := service.NewMatchService(matchRepo)
	scoringSvc := service.NewScoringService(matchRepo)
	ticketSvc := service.NewTicketService(repository.NewTicketRepository(dao.NewTicketDAO(db)), matchRepo, rng)
	rewardSvc := service.NewRewardService(repository.NewRewardRepository(dao.NewRewardDAO(db)))
	qrcodeSvc := service.NewQRCodeService(repository.NewQRCodeRepository(dao.NewQRCodeDAO(db)), loc)
	drawSvc := service.NewDrawService(repository.NewDrawRepository(dao.NewDrawDAO(db)), loc, rng)

	loyaltySvc := service.NewLoyaltyService(repository.NewLoyaltyRepository(dao.NewLoyaltyDAO(db)))
	loyaltySvc.SetPurchaseHook(ticketSvc)

	authHandler := v1.NewAuthHandler(conf.API, authSvc)
	webhookHandler := v1.NewWebhookHandler(conf.POS.WebhookSecret, loyaltySvc)
	matchHandler := v1.NewMatchHandler(matchSvc)
	contestHandler := v1.NewContestHandler(qrcodeSvc, ticketSvc, rewardSvc, loyaltySvc)
	adminHandler := v1.NewAdminHandler(conf.Contest, matchSvc, scoringSvc, ticketSvc, qrcodeSvc, drawSvc, rewardSvc, loyaltySvc)

	s.MountHandlers(authHandler, webhookHandler, matchHandler, contestHandler, adminHandler, userSvc)

	return s
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	webhookHandler *v1.WebhookHandler,
	matchHandler *v1.MatchHandler,
	contestHandler *v1.ContestHandler,
	adminHandler *v1.AdminHandler,
	userSvc middleware.AdminUserFinder,
) {
	const basePath = "/api/v1"

	verifyJWT := middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT()

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/signup", authHandler.HandleSignup)
		public.POST("/auth/login", authHandler.HandleLogin)
		public.POST("/webhooks/pos", webhookHandler.HandlePOSEvent)
	}

	users := s.Router.Group(basePath, verifyJWT)
	{
		users.GET("/matches", matchHandler.HandleListMatches)
		users.GET("/matches/:matchID", matchHandler.HandleGetMatch)
		users.PUT("/matches/:matchID/prediction", matchHandler.HandleSubmitPrediction)
		users.GET("/predictions", matchHandler.HandleListPredictions)
		users.POST("/scans", contestHandler.HandleScan)
		users.POST("/register", contestHandler.HandleRegister)
		users.GET("/tickets", contestHandler.HandleListTickets)
		users.GET("/rewards", contestHandler.HandleListRewards)
		users.GET("/loyalty", contestHandler.HandleGetLoyalty)
	}

	admins := s.Router.Group(basePath+"/admin", verifyJWT, middleware.RequireAdmin(s.Config.API, userSvc))
	{
		admins.POST("/matches", adminHandler.HandleCreateMatch)
		admins.POST("/matches/:matchID/lock", adminHandler.HandleLockMatch)
		admins.PUT("/matches/:matchID/result", adminHandler.HandleFinalizeResult)
		admins.POST("/matches/:matchID/scorers", adminHandler.HandleRecordScorers)
		admins.POST("/matches/:matchID/candidates", adminHandler.HandleSetCandidates)
		admins.POST("/players", adminHandler.HandleCreatePlayer)
		admins.POST("/daily-code/rotate", adminHandler.HandleRotateDailyCode)
		admins.POST("/draws/perform", adminHandler.HandlePerformDraw)
		admins.POST("/winners/:winnerID/claim", adminHandler.HandleClaimPrize)
		admins.POST("/tickets/:code/redeem", adminHandler.HandleRedeemTicket)
		admins.POST("/rewards/:code/redeem", adminHandler.HandleRedeemReward)
		admins.POST("/purchases/reverse", adminHandler.HandleReversePurchase)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Le Stade fanzone API"
	docs.SwaggerInfo.Description = "Loyalty, predictions, tickets and draws for the restaurant Le Stade."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
