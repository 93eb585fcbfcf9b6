package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/purchase"
)

// This file consolidates the store and service interfaces used by HTTP
// controllers. Each controller depends only on what it calls.

// --- Catalog ---

type AuthorStore interface {
	ListAuthors() ([]entities.Author, error)
	GetAuthor(id uint) (*entities.Author, error)
	CreateAuthor(author *entities.Author) error
	UpdateAuthor(author *entities.Author) error
	DeleteAuthor(id uint) error
}

type CategoryStore interface {
	ListCategories() ([]entities.Category, error)
	GetCategory(id uint) (*entities.Category, error)
	CreateCategory(category *entities.Category) error
	UpdateCategory(category *entities.Category) error
	DeleteCategory(id uint) error
}

// BookStore also resolves the author and category a book refers to.
type BookStore interface {
	ListBooks() ([]entities.Book, error)
	GetBook(id uint) (*entities.Book, error)
	CreateBook(book *entities.Book) error
	UpdateBook(book *entities.Book) error
	DeleteBook(id uint) error
	GetAuthor(id uint) (*entities.Author, error)
	GetCategory(id uint) (*entities.Category, error)
}

// CatalogStore is everything the catalog repository offers to controllers.
type CatalogStore interface {
	AuthorStore
	CategoryStore
	BookStore
}

// ISBNGenerator assigns identifiers to new books.
type ISBNGenerator interface {
	Generate() (string, error)
}

// --- Carts ---

type CartStore interface {
	ListCarts() ([]entities.ShoppingCart, error)
	GetCart(id uint) (*entities.ShoppingCart, error)
	CreateCart(userID uint, bookIDs []uint) (*entities.ShoppingCart, error)
	UpdateCart(id, userID uint, bookIDs []uint) (*entities.ShoppingCart, error)
	DeleteCart(id uint) error
}

// BookGetter resolves book references in cart requests.
type BookGetter interface {
	GetBook(id uint) (*entities.Book, error)
}

// UserChecker resolves user references in cart requests.
type UserChecker interface {
	UserExists(id uint) (bool, error)
}

// --- Accounts ---

type AccountService interface {
	Register(username, email, password string) (*entities.User, error)
	Login(username, password string) (*entities.AuthToken, error)
	Logout(userID uint) error
}

// LoginLimiter throttles failed logins per client and username.
type LoginLimiter interface {
	Allow(ip, username string) (bool, time.Duration)
	RecordFailure(ip, username string) (bool, time.Duration)
	RecordSuccess(ip, username string)
}

// --- Workflows and operations ---

type Purchaser interface {
	Purchase(ctx context.Context, caller auth.Identity) (*purchase.Result, error)
}

type TaskStatusReader interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Auditor records account activity and serves it back to its owner.
type Auditor interface {
	LogAuth(userID uint, username, action, ipAddr, userAgent string, success bool)
	LogPurchase(userID uint, cartsPurchased int, notificationIDs []string)
	LogDelete(userID uint, entityType string, entityID uint, ipAddr string)
	GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error)
}
