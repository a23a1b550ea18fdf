package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Tech-Nerdz/college-ERP-sub003/api/swagger"
	"github.com/Tech-Nerdz/college-ERP-sub003/internal/handler"
	"github.com/Tech-Nerdz/college-ERP-sub003/internal/middleware"
	"github.com/Tech-Nerdz/college-ERP-sub003/internal/models"
	"github.com/Tech-Nerdz/college-ERP-sub003/internal/repository"
	"github.com/Tech-Nerdz/college-ERP-sub003/internal/service"
	"github.com/Tech-Nerdz/college-ERP-sub003/pkg/cache"
	"github.com/Tech-Nerdz/college-ERP-sub003/pkg/config"
	"github.com/Tech-Nerdz/college-ERP-sub003/pkg/database"
	"github.com/Tech-Nerdz/college-ERP-sub003/pkg/logger"
	corsmiddleware "github.com/Tech-Nerdz/college-ERP-sub003/pkg/middleware/cors"
	reqidmiddleware "github.com/Tech-Nerdz/college-ERP-sub003/pkg/middleware/requestid"
)

// @title College ERP Timetable API
// @version 1.0.0
// @description Slot assignment and confirmation workflow for department timetables
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, summary cache disabled", "error", err)
	}

	timetableRepo := repository.NewTimetableRepository(db)
	slotRepo := repository.NewSlotAssignmentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	alterationRepo := repository.NewAlterationRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)

	guard := service.NewDBIdentityGuard(facultyRepo, logr)
	checker := service.NewConflictChecker(slotRepo)

	var summaryCache service.SummaryCache
	if redisClient != nil {
		summaryCache = service.NewRedisSummaryCache(redisClient, cfg.Notifications.SummaryCacheTTL, logr)
	}

	timetableSvc := service.NewTimetableService(timetableRepo, slotRepo, alterationRepo, guard, nil, logr)
	slotSvc := service.NewSlotAssignmentService(slotRepo, timetableRepo, facultyRepo, checker, guard, nil, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, slotRepo, timetableRepo, alterationRepo, guard, summaryCache, nil, logr)
	facultySvc := service.NewFacultyService(facultyRepo, guard, logr)

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	timetableHandler := handler.NewTimetableHandler(timetableSvc, slotSvc)
	slotHandler := handler.NewSlotAssignmentHandler(slotSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	facultyHandler := handler.NewFacultyHandler(facultySvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metricsSvc != nil {
		r.Use(middleware.Metrics(metricsSvc))
		r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT.Secret))

	inchargeOnly := middleware.RequireRoles(models.RoleIncharge, models.RoleAdmin)

	timetables := api.Group("/timetables")
	{
		timetables.GET("", timetableHandler.List)
		timetables.GET("/:id", timetableHandler.Get)
		timetables.GET("/:id/slots", timetableHandler.ListSlots)
		timetables.GET("/:id/alterations", timetableHandler.ListAlterations)
		timetables.POST("", inchargeOnly, timetableHandler.Create)
		timetables.PUT("/:id", inchargeOnly, timetableHandler.Update)
		timetables.POST("/:id/publish", inchargeOnly, timetableHandler.Publish)
	}

	slots := api.Group("/slots")
	{
		slots.GET("/mine", slotHandler.ListMine)
		slots.POST("", inchargeOnly, slotHandler.Propose)
		slots.DELETE("/:id", inchargeOnly, slotHandler.Remove)
		slots.POST("/:id/reassign", inchargeOnly, slotHandler.Reassign)
	}

	api.GET("/faculty", facultyHandler.ListDepartment)

	notifications := api.Group("/notifications")
	{
		notifications.GET("", notificationHandler.List)
		notifications.GET("/summary", notificationHandler.Summary)
		notifications.POST("/:id/accept", notificationHandler.Accept)
		notifications.POST("/:id/reject", notificationHandler.Reject)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
		notifications.POST("/read-all", notificationHandler.MarkAllRead)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
