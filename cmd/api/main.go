package main

import (
	"context"
	"os"

	_ "backoffice/api/swagger" // swagger docs
	"backoffice/internal/cache"
	"backoffice/internal/database"
	"backoffice/internal/handler"
	"backoffice/internal/logger"
	"backoffice/internal/middleware"
	"backoffice/internal/repository"
	"backoffice/internal/service"
	"backoffice/internal/vies"
	"backoffice/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// @title           Back Office API
// @version         1.0
// @description     Small-business back office: entities, proposals, calendar, roles and activity trail.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		// env vars may come from the environment directly
	}

	log := logger.New(envOr("LOG_LEVEL", "info"), os.Getenv("GIN_MODE"))
	defer func() { _ = log.Sync() }()

	dsn := "postgres://" + envOr("DB_USER", "postgres") + ":" + envOr("DB_PASSWORD", "postgres") +
		"@" + envOr("DB_HOST", "localhost") + ":" + envOr("DB_PORT", "5432") +
		"/" + envOr("DB_NAME", "backoffice") + "?sslmode=" + envOr("DB_SSLMODE", "disable")

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	log.Info("connected to postgres")

	middleware.InitPermissionMiddleware(db)

	// Falls back to an in-process cache when no redis address is configured
	store := cache.NewStore(os.Getenv("REDIS_ADDR"), os.Getenv("REDIS_PASSWORD"))

	wsHub := websocket.NewHub(log)
	go wsHub.Run()

	// Repository -> Service -> Handler
	txManager := repository.NewTransactionManager(db)
	allocator := repository.NewNumberAllocator(db)
	entityRepo := repository.NewEntityRepository(db)
	proposalRepo := repository.NewProposalRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	activityService := service.NewActivityService(activityRepo, log)
	viesService := service.NewViesService(vies.NewClient(), store, log)
	entityService := service.NewEntityService(entityRepo, allocator, txManager, viesService, activityService, log)
	proposalService := service.NewProposalService(proposalRepo, entityRepo, allocator, txManager, activityService)
	articleService := service.NewArticleService(articleRepo, activityService)
	calendarService := service.NewCalendarService(calendarRepo, activityService, wsHub)
	companyService := service.NewCompanyService(companyRepo, activityService)
	roleService := service.NewRoleService(roleRepo, activityService)
	userService := service.NewUserService(userRepo, roleRepo, activityService)

	if err := roleService.Seed(context.Background()); err != nil {
		log.Fatal("role seeding failed", zap.Error(err))
	}

	uploadDir := envOr("UPLOAD_DIR", "uploads")

	entityHandler := handler.NewEntityHandler(entityService, viesService)
	proposalHandler := handler.NewProposalHandler(proposalService)
	articleHandler := handler.NewArticleHandler(articleService, uploadDir)
	calendarHandler := handler.NewCalendarHandler(calendarService)
	companyHandler := handler.NewCompanyHandler(companyService, uploadDir)
	roleHandler := handler.NewRoleHandler(roleService)
	userHandler := handler.NewUserHandler(userService)
	activityHandler := handler.NewActivityHandler(activityService)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware(log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{envOr("FRONTEND_URL", "http://localhost:5173")}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	router.Static("/uploads", uploadDir)

	root := router.Group("")
	entityHandler.RegisterRoutes(root)
	proposalHandler.RegisterRoutes(root)
	articleHandler.RegisterRoutes(root)
	calendarHandler.RegisterRoutes(root)
	companyHandler.RegisterRoutes(root)
	roleHandler.RegisterRoutes(root)
	userHandler.RegisterRoutes(root)
	activityHandler.RegisterRoutes(root)

	port := envOr("PORT", "8080")
	log.Info("server listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}
