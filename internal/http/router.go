package httpapi

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/aselo_helpline/backend/internal/config"
	"github.com/aselo_helpline/backend/internal/db"
	"github.com/aselo_helpline/backend/internal/http/handlers"
	"github.com/aselo_helpline/backend/internal/http/middleware"
	"github.com/aselo_helpline/backend/internal/metrics"
	"github.com/aselo_helpline/backend/internal/service"

	_ "github.com/aselo_helpline/backend/docs"
)

func Router(cfg config.Config, store db.Store, chat *service.ChatService, forms *service.FormService, m *metrics.Metrics, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id", "X-Extraction-Outcome", "X-Extraction-Reason", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = splitOrigins(cfg.CORSAllowed)
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:          store,
		Chat:           chat,
		Forms:          forms,
		Validator:      forms.Validator,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
	}

	r.GET("/", h.Root)
	r.GET("/healthz", h.Healthz)
	r.GET("/health", h.Healthz)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	api := r.Group("/api")
	{
		api.POST("/chat", h.SendMessage)
		api.POST("/autofill", h.Autofill)
		api.POST("/summarize", h.Summarize)
		api.POST("/metadata", h.Metadata)
		api.GET("/conversation/:session_id", h.Conversation)
		api.DELETE("/conversation/:session_id", h.DeleteConversation)
		api.GET("/conversations", h.Conversations)

		api.POST("/submitForm", h.SubmitForm)
		api.GET("/submission/:session_id", h.Submission)
		api.PUT("/submission/:session_id/status", h.UpdateSubmissionStatus)
		api.GET("/submissions", h.Submissions)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
