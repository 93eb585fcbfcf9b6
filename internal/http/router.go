package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Every resource route requires a token; only health, registration and
// login are public.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	if cfg.MaxBodyBytes > 0 {
		router.Use(BodyLimitMiddleware(cfg.MaxBodyBytes))
	}

	healthController := NewHealthController(cfg.Database, cfg.Version)
	if cfg.Queue != nil {
		healthController.WithQueue(cfg.Queue)
	}
	router.GET("/health", healthController.Status)
	router.GET("/ping", Ping)

	var accountsController *AccountsController
	if cfg.Accounts != nil {
		accountsController = NewAccountsController(cfg.Accounts, cfg.LoginLimiter, cfg.Audit)
		credentials := router.Group("/", auth.NoStoreMiddleware())
		credentials.POST("/register/", accountsController.Register)
		credentials.POST("/login/", accountsController.Login)
	}

	protected := router.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.Handler())
	}

	if cfg.Catalog != nil {
		authorsController := NewAuthorsController(cfg.Catalog)
		registerResource(protected, "/authors/", resourceHandlers{
			list:   authorsController.List,
			create: authorsController.Create,
			get:    authorsController.Get,
			update: authorsController.Update,
			delete: auditDeletes(cfg.Audit, "author", authorsController.Delete),
		})

		categoriesController := NewCategoriesController(cfg.Catalog)
		registerResource(protected, "/categories/", resourceHandlers{
			list:   categoriesController.List,
			create: categoriesController.Create,
			get:    categoriesController.Get,
			update: categoriesController.Update,
			delete: auditDeletes(cfg.Audit, "category", categoriesController.Delete),
		})

		booksController := NewBooksController(cfg.Catalog, cfg.ISBN)
		registerResource(protected, "/books/", resourceHandlers{
			list:   booksController.List,
			create: booksController.Create,
			get:    booksController.Get,
			update: booksController.Update,
			delete: auditDeletes(cfg.Audit, "book", booksController.Delete),
		})

		if cfg.Carts != nil && cfg.Users != nil {
			cartsController := NewCartsController(cfg.Carts, cfg.Catalog, cfg.Users)
			registerResource(protected, "/shopping_cart/", resourceHandlers{
				list:   cartsController.List,
				create: cartsController.Create,
				get:    cartsController.Get,
				update: cartsController.Update,
				delete: auditDeletes(cfg.Audit, "shopping_cart", cartsController.Delete),
			})
		}
	}

	if cfg.Purchases != nil {
		purchaseController := NewPurchaseController(cfg.Purchases, cfg.Audit)
		protected.GET("/purchase/", purchaseController.Purchase)
	}

	if accountsController != nil {
		protected.POST("/logout/", accountsController.Logout)
	}

	if cfg.Audit != nil {
		activityController := NewActivityController(cfg.Audit)
		protected.GET("/activity/", activityController.List)
	}

	if cfg.TaskStatus != nil {
		tasksController := NewTasksController(cfg.TaskStatus)
		protected.GET("/tasks/:id/", tasksController.GetTaskStatus)
	}

	return router
}

type resourceHandlers struct {
	list, create, get, update, delete gin.HandlerFunc
}

// registerResource mounts the collection and item routes of a resource.
// PUT replaces an item, PATCH merges into it.
func registerResource(group *gin.RouterGroup, path string, h resourceHandlers) {
	group.GET(path, h.list)
	group.POST(path, h.create)
	group.GET(path+":id/", h.get)
	group.PUT(path+":id/", h.update)
	group.PATCH(path+":id/", h.update)
	group.DELETE(path+":id/", h.delete)
}
