package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"form-service/internal/cache"
	"form-service/internal/config"
	"form-service/internal/db"
	"form-service/internal/event"
	"form-service/internal/handlers"
	"form-service/internal/repository"
	"form-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.Load()
	if cfg.MongoURI == "" {
		log.Fatal("MONGO_URI is required")
	}
	db.InitMongo(cfg.MongoURI)

	// RabbitMQ event publisher
	var publisher *event.EventPublisher
	if cfg.RabbitURI != "" && cfg.RabbitExchange != "" {
		var err error
		publisher, err = event.NewEventPublisher(cfg.RabbitURI, cfg.RabbitExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, domain events will not be published")
	}

	// Redis submission cache
	var submissionCache cache.SubmissionCache
	if cfg.RedisAddr != "" {
		submissionCache = cache.NewSubmissionCache(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	} else {
		log.Println("Redis not configured, submission lookups go straight to Mongo")
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "https://app.kosmos.marketing"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	database := db.Client.Database(cfg.Database)

	// Forms
	formRepo := repository.NewFormRepository(database)
	formService := service.NewFormService(formRepo)
	formHandler := handlers.NewFormHandler(formService)

	// Submissions
	submissionRepo := repository.NewSubmissionRepository(database)
	answerRepo := repository.NewAnswerRepository(database)
	submissionService := service.NewSubmissionService(submissionRepo, answerRepo, submissionCache)

	// Respondent sessions
	sessionService := service.NewSessionService(formRepo, submissionService)
	sessionHandler := handlers.NewSessionHandler(sessionService)

	// Analytics
	analyticsService := service.NewAnalyticsService(formRepo, submissionRepo)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// Public routes - form definitions for the renderer
	publicForm := r.Group("/public/forms")
	{
		publicForm.GET("/:id", func(c *gin.Context) {
			formHandler.GetForm(c)
			if publisher != nil {
				publisher.Publish("form.viewed", gin.H{"form_id": c.Param("id")})
			}
		})
	}

	// Protected routes - authoring
	protectedForm := r.Group("/protected/forms")
	protectedForm.Use(requireUser())
	{
		protectedForm.GET("/", formHandler.ListForms)
		protectedForm.POST("/", formHandler.CreateForm)
		protectedForm.PUT("/:id", formHandler.UpdateForm)
		protectedForm.DELETE("/:id", formHandler.DeleteForm)
		protectedForm.POST("/:id/publish", func(c *gin.Context) {
			formHandler.PublishForm(c)
			if publisher != nil {
				publisher.Publish("form.published", gin.H{
					"form_id":   c.Param("id"),
					"user_id":   c.GetHeader("X-User-ID"),
					"timestamp": time.Now(),
				})
			}
		})
		protectedForm.POST("/:id/validate", formHandler.ValidateConditions)
		protectedForm.GET("/:id/analytics", analyticsHandler.GetSummary)
	}

	setupSessionRoutes(r, sessionHandler, publisher)

	r.Run(":" + cfg.Port)
}

func setupSessionRoutes(r *gin.Engine, sessionHandler *handlers.SessionHandler, publisher *event.EventPublisher) {
	// Respondent-facing routes. Sessions are addressed by an opaque token,
	// so no authentication applies here.
	publicSession := r.Group("/public/forms/:id/session")
	{
		publicSession.POST("/", func(c *gin.Context) {
			sessionHandler.StartSession(c)
			if publisher != nil {
				publisher.Publish("form.session.started", gin.H{
					"form_id":   c.Param("id"),
					"timestamp": time.Now(),
				})
			}
		})
	}

	session := r.Group("/public/session/:token")
	session.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[SESSION] %v | %3d | %13v | %15s | %-7s %#v\n%s",
			param.TimeStamp.Format("2006/01/02 - 15:04:05"),
			param.StatusCode,
			param.Latency,
			param.ClientIP,
			param.Method,
			param.Path,
			param.ErrorMessage,
		)
	}))
	{
		// Welcome → questions transition
		session.POST("/begin", func(c *gin.Context) {
			sessionHandler.Begin(c)
			if publisher != nil {
				publisher.Publish("form.session.begun", gin.H{
					"session_token": c.Param("token"),
					"timestamp":     time.Now(),
				})
			}
		})

		// Answer capture for the current field
		session.POST("/answer", sessionHandler.SubmitAnswer)

		// Advance; completes the session on the last visible field
		session.POST("/next", func(c *gin.Context) {
			sessionHandler.Next(c)
			if publisher != nil {
				publisher.Publish("form.session.advanced", gin.H{
					"session_token": c.Param("token"),
					"timestamp":     time.Now(),
				})
			}
		})

		// Backward navigation, gated by form settings
		session.POST("/previous", sessionHandler.Previous)

		// Render snapshot: current field, index, visible count, error
		session.GET("/", sessionHandler.GetState)
	}
}

// requireUser rejects authoring requests without the gateway-set user header.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_USER_ID",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
