package http

import "github.com/mrlokans/bookstore/internal/auth"

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Persistence
	Catalog  CatalogStore
	Carts    CartStore
	Users    UserChecker
	Database Pinger

	// Book creation
	ISBN ISBNGenerator

	// Authentication
	Accounts       AccountService
	AuthMiddleware *auth.Middleware
	LoginLimiter   LoginLimiter // optional

	// Purchase workflow
	Purchases Purchaser

	// Account activity log (optional)
	Audit Auditor

	// Task queue status (optional, nil when the queue is disabled)
	TaskStatus TaskStatusReader
	Queue      Pinger

	// Request body cap in bytes, zero disables it
	MaxBodyBytes int64

	// Application info
	Version string
}
