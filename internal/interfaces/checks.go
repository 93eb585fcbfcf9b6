package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookstore/internal/audit"
	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/database"
	auditRepo "github.com/mrlokans/bookstore/internal/database/audit"
	"github.com/mrlokans/bookstore/internal/database/carts"
	"github.com/mrlokans/bookstore/internal/database/catalog"
	"github.com/mrlokans/bookstore/internal/database/users"
	"github.com/mrlokans/bookstore/internal/http"
	"github.com/mrlokans/bookstore/internal/isbn"
	"github.com/mrlokans/bookstore/internal/mail"
	"github.com/mrlokans/bookstore/internal/notifications"
	"github.com/mrlokans/bookstore/internal/purchase"
	"github.com/mrlokans/bookstore/internal/scheduler"
	"github.com/mrlokans/bookstore/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Catalog
var _ http.CatalogStore = (*catalog.Repository)(nil)
var _ http.BookGetter = (*catalog.Repository)(nil)
var _ isbn.Checker = (*catalog.Repository)(nil)

// Carts
var _ http.CartStore = (*carts.Repository)(nil)
var _ purchase.CartStore = (*carts.Repository)(nil)

// Users and tokens
var _ auth.UserStore = (*users.Repository)(nil)
var _ http.UserChecker = (*users.Repository)(nil)
var _ tasks.TokenCleaner = (*users.Repository)(nil)

// Audit events
var _ audit.Store = (*auditRepo.Repository)(nil)

// Health
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Services
// =============================================================================

var _ http.AccountService = (*auth.Service)(nil)
var _ auth.TokenValidator = (*auth.Service)(nil)
var _ http.LoginLimiter = (*auth.RateLimiter)(nil)
var _ http.ISBNGenerator = (*isbn.Generator)(nil)
var _ http.Purchaser = (*purchase.Workflow)(nil)
var _ http.Auditor = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// =============================================================================
// Notifications and Background Work
// =============================================================================

// Mailer implementations
var _ mail.Mailer = (*mail.SMTPMailer)(nil)
var _ mail.Mailer = (*mail.LogMailer)(nil)

// Notifier implementations
var _ purchase.Notifier = (*notifications.QueueDispatcher)(nil)
var _ purchase.Notifier = (*notifications.AsyncDispatcher)(nil)

// Task queue
var _ notifications.Enqueuer = (*tasks.Client)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ http.TaskStatusReader = (*tasks.Client)(nil)
var _ http.Pinger = (*tasks.Client)(nil)
