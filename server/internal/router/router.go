// server/internal/router/router.go
package router

import (
	"net/http"
	"slices"
	"time"

	"darkops-lab/pkg/models"
	"darkops-lab/server/internal/config"
	"darkops-lab/server/internal/handlers"
	"darkops-lab/server/internal/repository"
	"darkops-lab/server/internal/utils"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{"detail": "Too many requests. Try again in " + time.Until(info.ResetTime).Round(time.Second).String()})
}

func corsConfig(origins []string) cors.Config {
	conf := cors.DefaultConfig()
	conf.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	conf.AllowHeaders = []string{"Origin", "Content-Type", "Accept", requestIDHeader}
	conf.ExposeHeaders = []string{requestIDHeader}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		conf.AllowAllOrigins = true
		return conf
	}
	conf.AllowOrigins = origins
	conf.AllowCredentials = true
	return conf
}

func sessionStore(log *zap.Logger) cookie.Store {
	secret := []byte(config.Conf.Server.SessionSecret)
	if len(secret) == 0 {
		generated, err := utils.NewSessionSecret()
		if err != nil {
			panic("failed to generate session secret")
		}
		secret = generated
		log.Warn("No session secret configured; using an ephemeral one. Cookie sessions will not survive restarts.")
	}

	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 365,
	})
	return store
}

// Setup builds the API engine. config.Conf and database.DB must be
// initialised first.
func Setup(log *zap.Logger, catalog *models.Catalog) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogger(log))
	router.Use(cors.New(corsConfig(config.Conf.Server.CORSOrigins)))
	router.Use(sessions.Sessions("darkops", sessionStore(log)))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			c.Abort()
			return
		}
	})

	sessionHandler := handlers.NewSessionHandler(log)
	attackHandler := handlers.NewAttackHandler(catalog)
	progressHandler := handlers.NewProgressHandler(log, catalog)
	quizHandler := handlers.NewQuizHandler(log, catalog)
	dashboardHandler := handlers.NewDashboardHandler(log, catalog)

	createSession := []gin.HandlerFunc{sessionHandler.Create}
	if limit := config.Conf.Server.RateLimit.PerMinute; limit > 0 {
		rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
			Rate:  time.Minute,
			Limit: limit,
		})
		limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
			ErrorHandler: errorHandler,
			KeyFunc:      keyFunc,
		})
		createSession = append([]gin.HandlerFunc{limiter}, createSession...)
	}

	api := router.Group("/api")
	{
		api.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "DarkOps Lab API"})
		})
		api.GET("/health", func(c *gin.Context) {
			sessionCount, err := repository.CountSessions(c.Request.Context())
			if err != nil {
				log.Error("Health check failed to reach database", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "attacks": catalog.Len()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "ok", "attacks": catalog.Len(), "sessions": sessionCount})
		})

		api.GET("/attacks", attackHandler.List)
		api.GET("/attacks/:id", attackHandler.Get)

		api.POST("/sessions", createSession...)
		api.GET("/sessions/current", sessionHandler.Current)
		api.GET("/sessions/:id", sessionHandler.Get)
		api.PATCH("/sessions/:id", sessionHandler.UpdateNickname)

		api.POST("/progress", progressHandler.Update)
		api.POST("/quiz", quizHandler.Submit)
		api.POST("/quiz/submit", quizHandler.Submit)

		scoped := api.Group("/")
		scoped.Use(SessionRequired(log))
		{
			scoped.GET("/progress/:sessionId", progressHandler.List)
			scoped.GET("/quiz/scores/:sessionId", quizHandler.Scores)
			scoped.GET("/dashboard/:sessionId", dashboardHandler.Show)
			scoped.GET("/dashboard/:sessionId/chart", dashboardHandler.Chart)
		}
	}

	return router
}
