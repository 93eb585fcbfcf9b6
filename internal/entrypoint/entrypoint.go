package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/audit"
	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database"
	auditRepo "github.com/mrlokans/bookstore/internal/database/audit"
	"github.com/mrlokans/bookstore/internal/database/carts"
	"github.com/mrlokans/bookstore/internal/database/catalog"
	"github.com/mrlokans/bookstore/internal/database/users"
	http_controllers "github.com/mrlokans/bookstore/internal/http"
	"github.com/mrlokans/bookstore/internal/isbn"
	"github.com/mrlokans/bookstore/internal/mail"
	"github.com/mrlokans/bookstore/internal/notifications"
	"github.com/mrlokans/bookstore/internal/purchase"
	"github.com/mrlokans/bookstore/internal/scheduler"
	"github.com/mrlokans/bookstore/internal/tasks"
)

// asyncMailTimeout bounds a single delivery when the task queue is disabled.
const asyncMailTimeout = 30 * time.Second

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill -2 is syscall.SIGINT, plain kill sends syscall.SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop accepting requests before the workers go away
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookstore v%s", version)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	catalogRepo := catalog.NewRepository(db.DB)
	cartsRepo := carts.NewRepository(db.DB)
	usersRepo := users.NewRepository(db.DB)

	var auditService *audit.Service
	if cfg.Audit.Enabled {
		auditService = audit.NewService(auditRepo.NewRepository(db.DB))
	}

	mailer, err := mail.New(cfg.Mail)
	if err != nil {
		log.Fatalf("Failed to initialize mailer: %v", err)
	}
	log.Printf("Mail backend: %s", cfg.Mail.Backend)

	// Purchase notifications go through the task queue when it is enabled,
	// otherwise they are sent from a goroutine per purchase.
	var notifier purchase.Notifier
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var maintenance *scheduler.MaintenanceScheduler
	var asyncDispatcher *notifications.AsyncDispatcher

	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromAppConfig(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewPurchaseNotificationQueue(mailer),
			tasks.NewCleanupExpiredTokensQueue(usersRepo),
		)
		if auditService != nil {
			taskClient.Register(tasks.NewCleanupAuditEventsQueue(auditService))
		}

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		notifier = notifications.NewQueueDispatcher(taskClient)

		var jobs []scheduler.Job
		if job, ok := scheduler.TokenCleanupJob(cfg.Auth.TokenExpiry); ok {
			jobs = append(jobs, job)
		}
		if job, ok := scheduler.AuditCleanupJob(cfg.Audit.Retention); ok && auditService != nil {
			jobs = append(jobs, job)
		}
		maintenance = scheduler.NewMaintenanceScheduler(taskClient, cfg.Tasks.MaintenanceSchedule, jobs...)
		if err := maintenance.Start(taskCtx); err != nil {
			log.Printf("WARNING: maintenance scheduler not started: %v", err)
		}
	} else {
		log.Printf("Task queue disabled, purchase notifications are sent in the background")
		asyncDispatcher = notifications.NewAsyncDispatcher(mailer, asyncMailTimeout)
		notifier = asyncDispatcher
	}

	authService := auth.NewService(usersRepo, cfg.Auth)
	authMiddleware := auth.NewMiddleware(authService)
	loginLimiter := auth.NewRateLimiter(auth.RateLimitConfigFrom(cfg.Auth))
	defer loginLimiter.Stop()

	if cfg.Auth.TokenExpiry > 0 {
		log.Printf("Tokens expire after %v", cfg.Auth.TokenExpiry)
	}

	routerCfg := http_controllers.RouterConfig{
		Catalog:        catalogRepo,
		Carts:          cartsRepo,
		Users:          usersRepo,
		Database:       db,
		ISBN:           isbn.NewGenerator(catalogRepo),
		Accounts:       authService,
		AuthMiddleware: authMiddleware,
		LoginLimiter:   loginLimiter,
		Purchases:      purchase.NewWorkflow(cartsRepo, notifier),
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		Version:        version,
	}
	if taskClient != nil {
		routerCfg.TaskStatus = taskClient
		routerCfg.Queue = taskClient
	}
	if auditService != nil {
		routerCfg.Audit = auditService
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		if asyncDispatcher != nil {
			asyncDispatcher.Wait()
		}
		if auditService != nil {
			auditService.Wait()
		}
	}

	Serve(router, cfg, onShutdown)
}
