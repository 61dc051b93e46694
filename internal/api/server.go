package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/attenda/attenda-api/docs"
	v1 "github.com/attenda/attenda-api/internal/api/handler/v1"
	"github.com/attenda/attenda-api/internal/api/middleware"
	"github.com/attenda/attenda-api/internal/config"
	"github.com/attenda/attenda-api/internal/repository"
	"github.com/attenda/attenda-api/internal/repository/dao"
	"github.com/attenda/attenda-api/internal/service"
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

	authHandler := s.initAuthHandler(db)
	userHandler := s.initUserHandler(db)
	seasonHandler, attendantHandler, evaluationHandler, grantHandler, achievementHandler := s.initGamificationHandlers(db)
	s.MountHandlers(authHandler, userHandler, seasonHandler, attendantHandler, evaluationHandler, grantHandler, achievementHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(&s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewUserService(repo)
	handler := v1.NewUserHandler(svc)

	return handler
}

// initGamificationHandlers builds the engine's service graph once so the
// season registry, ledger and unlock coordinator handlers all share the
// same instances.
func (s *Server) initGamificationHandlers(db *gorm.DB) (*v1.SeasonHandler, *v1.AttendantHandler, *v1.EvaluationHandler, *v1.GrantHandler, *v1.AchievementHandler) {
	seasonRepo := repository.NewSeasonRepository(dao.NewSeasonDAO(db))
	attendantRepo := repository.NewAttendantRepository(dao.NewAttendantDAO(db))
	evalRepo := repository.NewEvaluationRepository(dao.NewEvaluationDAO(db))
	xpRepo := repository.NewXpRepository(dao.NewXpEventDAO(db), dao.NewXpTypeDAO(db))
	achievementRepo := repository.NewAchievementRepository(dao.NewAchievementDAO(db))

	seasonSvc := service.NewSeasonService(seasonRepo)
	xpSvc := service.NewXpService(xpRepo, evalRepo, attendantRepo, seasonSvc, s.Config)
	achievementSvc := service.NewAchievementService(achievementRepo, xpRepo, evalRepo, seasonSvc, s.Config)
	processorSvc := service.NewProcessorService(achievementSvc, attendantRepo)
	rankingSvc := service.NewRankingService(xpRepo, seasonRepo)
	attendantSvc := service.NewAttendantService(attendantRepo)

	seasonHandler := v1.NewSeasonHandler(seasonSvc, rankingSvc, processorSvc)
	attendantHandler := v1.NewAttendantHandler(attendantSvc, xpSvc, achievementSvc, processorSvc)
	evaluationHandler := v1.NewEvaluationHandler(xpSvc, processorSvc)
	grantHandler := v1.NewGrantHandler(xpSvc)
	achievementHandler := v1.NewAchievementHandler(achievementSvc)

	return seasonHandler, attendantHandler, evaluationHandler, grantHandler, achievementHandler
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
	userHandler *v1.UserHandler,
	seasonHandler *v1.SeasonHandler,
	attendantHandler *v1.AttendantHandler,
	evaluationHandler *v1.EvaluationHandler,
	grantHandler *v1.GrantHandler,
	achievementHandler *v1.AchievementHandler,
) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	authenticator := middleware.NewAuthenticator(s.Config.API.JWTSigningKey)
	verifyJWT := authenticator.VerifyJWT()
	requireAdmin := authenticator.RequireAdmin()

	users := s.Router.Group(basePath, verifyJWT)
	{
		users.GET("/users/:userID", userHandler.HandleGetUser)
	}

	seasons := s.Router.Group(basePath, verifyJWT)
	{
		seasons.GET("/seasons", seasonHandler.HandleListSeasons)
		seasons.GET("/seasons/current", seasonHandler.HandleGetCurrentSeason)
		seasons.GET("/seasons/:id", seasonHandler.HandleGetSeason)
		seasons.GET("/seasons/:id/leaderboard", seasonHandler.HandleLeaderboard)
	}

	seasonsAdmin := s.Router.Group(basePath, verifyJWT, requireAdmin)
	{
		seasonsAdmin.POST("/seasons", seasonHandler.HandleCreateSeason)
		seasonsAdmin.PUT("/seasons/:id", seasonHandler.HandleUpdateSeason)
		seasonsAdmin.DELETE("/seasons/:id", seasonHandler.HandleDeleteSeason)
		seasonsAdmin.POST("/seasons/:id/process", seasonHandler.HandleProcessSeason)
	}

	attendants := s.Router.Group(basePath, verifyJWT)
	{
		attendants.GET("/attendants", attendantHandler.HandleListAttendants)
		attendants.GET("/attendants/:id", attendantHandler.HandleGetAttendant)
		attendants.GET("/attendants/:id/xp", attendantHandler.HandleGetTotalXp)
		attendants.GET("/attendants/:id/achievements", attendantHandler.HandleGetAchievements)
	}

	attendantsAdmin := s.Router.Group(basePath, verifyJWT, requireAdmin)
	{
		attendantsAdmin.POST("/attendants", attendantHandler.HandleCreateAttendant)
		attendantsAdmin.POST("/attendants/:id/process", attendantHandler.HandleProcessAttendant)
	}

	evaluations := s.Router.Group(basePath, verifyJWT)
	{
		evaluations.POST("/evaluations", evaluationHandler.HandleCreateEvaluation)
	}

	grants := s.Router.Group(basePath, verifyJWT)
	{
		grants.POST("/grants", grantHandler.HandleCreateGrant)
		grants.GET("/xp-types", grantHandler.HandleListXpTypes)
	}

	grantsAdmin := s.Router.Group(basePath, verifyJWT, requireAdmin)
	{
		grantsAdmin.POST("/xp-types", grantHandler.HandleCreateXpType)
	}

	achievements := s.Router.Group(basePath, verifyJWT)
	{
		achievements.GET("/achievements", achievementHandler.HandleListAchievements)
	}

	achievementsAdmin := s.Router.Group(basePath, verifyJWT, requireAdmin)
	{
		achievementsAdmin.POST("/achievements", achievementHandler.HandleCreateAchievement)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Attenda API"
	docs.SwaggerInfo.Description = "Gamification engine for customer-service attendants."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
