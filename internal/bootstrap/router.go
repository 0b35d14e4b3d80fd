package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/itnnovator/annota-backend/config"
	apihttp "github.com/itnnovator/annota-backend/internal/api/http"
	"github.com/itnnovator/annota-backend/internal/api/http/middleware"
	approvalcron "github.com/itnnovator/annota-backend/internal/approval/cron"
	approvalhttp "github.com/itnnovator/annota-backend/internal/approval/http"
	approvalrepo "github.com/itnnovator/annota-backend/internal/approval/repository"
	approvalsvc "github.com/itnnovator/annota-backend/internal/approval/service"
	"github.com/itnnovator/annota-backend/internal/auth"
	commentshttp "github.com/itnnovator/annota-backend/internal/comments/http"
	commentsrepo "github.com/itnnovator/annota-backend/internal/comments/repository"
	commentssvc "github.com/itnnovator/annota-backend/internal/comments/service"
	feedbackhttp "github.com/itnnovator/annota-backend/internal/feedback/http"
	feedbackrepo "github.com/itnnovator/annota-backend/internal/feedback/repository"
	feedbacksvc "github.com/itnnovator/annota-backend/internal/feedback/service"
	"github.com/itnnovator/annota-backend/internal/notify"
	projectshttp "github.com/itnnovator/annota-backend/internal/projects/http"
	projectsrepo "github.com/itnnovator/annota-backend/internal/projects/repository"
	projectssvc "github.com/itnnovator/annota-backend/internal/projects/service"
	reviewhttp "github.com/itnnovator/annota-backend/internal/review/http"
	reviewrepo "github.com/itnnovator/annota-backend/internal/review/repository"
	reviewsvc "github.com/itnnovator/annota-backend/internal/review/service"
	"github.com/itnnovator/annota-backend/internal/users"
)

// App holds everything the api binary needs after wiring.
type App struct {
	Router  *gin.Engine
	Sweeper *approvalcron.Sweeper
}

// BuildApp wires repositories, services and routes onto one gin engine.
func BuildApp(cfg *config.Config, pool *pgxpool.Pool, rdb *redis.Client) *App {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	userRepo := users.NewRepo(pool)
	projectRepo := projectsrepo.NewRepo(pool)
	commentRepo := commentsrepo.NewRepo(pool)
	linkRepo := feedbackrepo.NewRepo(pool)
	requestRepo := approvalrepo.NewRepo(pool)
	sessionRepo := reviewrepo.NewSessionRepository(rdb)

	mailer := notify.NewMailer(cfg.SMTP)

	projectSvc := projectssvc.NewProjectService(projectRepo, linkRepo)
	commentSvc := commentssvc.NewCommentService(commentRepo, projectRepo)
	feedbackSvc := feedbacksvc.NewFeedbackService(linkRepo, projectRepo, commentRepo)
	approvalSvc := approvalsvc.NewApprovalService(projectRepo, requestRepo, linkRepo, mailer, cfg.App.WebBaseURL)
	reviewSvc := reviewsvc.NewReviewService(linkRepo, projectRepo, commentRepo, sessionRepo)

	r := gin.Default()
	r.Use(middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", auth.OwnerHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
	}))

	apihttp.NewHealthHandler(pool, rdb, cfg.App.Version).Register(r)

	api := r.Group("/api")

	// Owner surface, gated by the email header.
	owner := api.Group("")
	owner.Use(auth.WithOwner(userRepo))
	projectshttp.NewHandler(projectSvc).Register(owner)
	commentshttp.NewHandler(commentSvc).Register(owner)

	approvalHandler := approvalhttp.NewHandler(approvalSvc)
	approvalHandler.RegisterOwner(owner)

	// Public surface, throttled per token.
	public := api.Group("")
	public.Use(middleware.PublicRateLimit(rate.Limit(10), 30))
	feedbackhttp.NewHandler(feedbackSvc).Register(public)
	reviewhttp.NewHandler(reviewSvc).Register(public)
	approvalHandler.RegisterPublic(public)

	return &App{
		Router:  r,
		Sweeper: approvalcron.NewSweeper(requestRepo),
	}
}
