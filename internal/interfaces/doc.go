// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - CatalogStore: authors, categories and books (internal/http/stores.go)
//   - CartStore: shopping carts and their book sets (internal/http/stores.go)
//   - purchase.CartStore: the cart reads and deletes a purchase needs (internal/purchase)
//   - UserStore: accounts and API tokens (internal/auth/service.go)
//   - isbn.Checker: ISBN collision lookup (internal/isbn)
//
// ## Service Interfaces
//
//   - AccountService, LoginLimiter: registration and login (internal/http/stores.go)
//   - TokenValidator: resolves "Token <key>" headers (internal/auth/middleware.go)
//   - Purchaser: the purchase workflow (internal/http/stores.go)
//
// ## Delivery Interfaces
//
//   - mail.Mailer: sends a message through SMTP or the log (internal/mail)
//   - purchase.Notifier: hands a confirmation off for delivery (internal/purchase)
//   - Enqueuer: adds a task to the background queue (internal/notifications, internal/scheduler)
//
// # Adding a New Mail Backend
//
//  1. Implement Mailer in internal/mail/
//
//     type SESMailer struct {
//         client *ses.Client
//     }
//
//     func (m *SESMailer) Send(ctx context.Context, msg Message) error
//
//     var _ Mailer = (*SESMailer)(nil)
//
//  2. Select it in mail.New by the MAIL_BACKEND value
//
// # Adding a New Background Task
//
//  1. Define the task and its processor in internal/tasks/
//
//     type RestockTask struct {
//         BookID uint `json:"book_id"`
//     }
//
//     func (t RestockTask) Config() backlite.QueueConfig {
//         return queueConfig(RestockQueue)
//     }
//
//  2. Register the queue in entrypoint.go
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/reviews/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Add the entity to the AutoMigrate list in database.Open
//
//  4. Add compile-time check:
//
//     var _ http.ReviewStore = (*reviews.Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
