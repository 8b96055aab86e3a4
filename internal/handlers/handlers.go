package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"resumehub/api/internal/config"
	"resumehub/api/internal/middleware"
	"resumehub/api/internal/models"
	"resumehub/api/internal/repository"
	"resumehub/api/internal/service"
	"resumehub/api/internal/storage"
)

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	auth     *service.AuthService
	sessions *service.SessionManager
	resumes  *service.ResumeService
	workflow *service.WorkflowService
	users    *repository.UserRepository
	db       *pgxpool.Pool
	cache    *redis.Client
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	credRepo := repository.NewCredentialRepository(db)
	resumeRepo := repository.NewResumeRepository(db)
	logRepo := repository.NewStatusLogRepository(db)

	sessions := service.NewSessionManager(credRepo, cfg.Security, log)
	auth := service.NewAuthService(userRepo, sessions, cfg.Security, log)
	resumes := service.NewResumeService(resumeRepo, store, cfg.Workflow, log)
	workflow := service.NewWorkflowService(resumeRepo, logRepo, log)

	return HandlerSet{
		log:      log,
		cfg:      cfg,
		auth:     auth,
		sessions: sessions,
		resumes:  resumes,
		workflow: workflow,
		users:    userRepo,
		db:       db,
		cache:    cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/sign-up", h.SignUp)
		auth.POST("/sign-in", h.SignIn)

		refresh := v1.Group("/auth")
		refresh.Use(middleware.RefreshAuth(h.sessions))
		refresh.POST("/token", h.RefreshToken)
		refresh.POST("/logout", h.Logout)

		me := v1.Group("/auth")
		me.Use(middleware.Auth(h.sessions, h.users))
		me.GET("/me", h.Me)
	}

	resumes := v1.Group("/resumes")
	resumes.Use(middleware.Auth(h.sessions, h.users))
	{
		resumes.POST("", h.CreateResume)
		resumes.GET("", h.ListResumes)
		resumes.GET("/:resumeId", h.GetResume)
		resumes.PATCH("/:resumeId", h.UpdateResume)
		resumes.DELETE("/:resumeId", h.DeleteResume)
		resumes.POST("/:resumeId/attachment", h.UploadAttachment)
		resumes.GET("/:resumeId/attachment", h.DownloadAttachment)

		review := resumes.Group("")
		review.Use(middleware.RequireRoles(models.UserRoleRecruiter))
		review.PATCH("/:resumeId/status", h.ChangeStatus)
		review.GET("/:resumeId/logs", h.ListStatusLogs)
	}
}

func currentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get(middleware.ContextUser)
	if !exists {
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	return user, ok
}

// respondError maps the service error taxonomy to stable caller-visible
// kinds. Unrecognized errors become an opaque 500; nothing leaks internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status"})
	case errors.Is(err, service.ErrMissingReason):
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_reason"})
	case errors.Is(err, service.ErrInvalidSort):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_sort"})
	case errors.Is(err, service.ErrIntroductionTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"error": "introduction_too_short"})
	case errors.Is(err, service.ErrEmptyUpdate):
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty_update"})
	case errors.Is(err, service.ErrUnsupportedFileType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_file_type"})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email_taken"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
	case errors.Is(err, service.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token_expired"})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
	case errors.Is(err, repository.ErrResumeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resume_not_found"})
	case errors.Is(err, service.ErrNoAttachment):
		c.JSON(http.StatusNotFound, gin.H{"error": "no_attachment"})
	case errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user_not_found"})
	case errors.Is(err, service.ErrPersistenceUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "persistence_unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
	}
}
