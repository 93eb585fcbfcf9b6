// Package carts provides database operations for shopping carts.
//
// A cart belongs to one user and holds a set of books. Book membership is
// stored in the shopping_cart_books join table.
//
// # Usage
//
//	repo := carts.NewRepository(db)
//	cart, err := repo.CreateCart(userID, []uint{1, 2})
package carts

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookstore/internal/entities"
)

var ErrCartNotFound = errors.New("shopping cart not found")

// ErrUnknownBook is returned when a cart references a book that does not exist.
var ErrUnknownBook = errors.New("book does not exist")

// Repository handles all shopping cart database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new carts repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) preloaded() *gorm.DB {
	return r.db.Preload("Books", func(db *gorm.DB) *gorm.DB {
		return db.Order("books.id ASC")
	})
}

func (r *Repository) ListCarts() ([]entities.ShoppingCart, error) {
	var carts []entities.ShoppingCart
	err := r.preloaded().Order("id ASC").Find(&carts).Error
	return carts, err
}

// ListCartsForUser returns every cart owned by userID.
func (r *Repository) ListCartsForUser(userID uint) ([]entities.ShoppingCart, error) {
	var carts []entities.ShoppingCart
	err := r.preloaded().Where("user_id = ?", userID).Order("id ASC").Find(&carts).Error
	return carts, err
}

func (r *Repository) GetCart(id uint) (*entities.ShoppingCart, error) {
	var cart entities.ShoppingCart
	if err := r.preloaded().First(&cart, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return &cart, nil
}

// CreateCart creates a cart for userID holding the given books.
func (r *Repository) CreateCart(userID uint, bookIDs []uint) (*entities.ShoppingCart, error) {
	var id uint
	err := r.db.Transaction(func(tx *gorm.DB) error {
		books, err := loadBooks(tx, bookIDs)
		if err != nil {
			return err
		}
		cart := &entities.ShoppingCart{UserID: userID}
		if err := tx.Omit("Books").Create(cart).Error; err != nil {
			return err
		}
		id = cart.ID
		if len(books) == 0 {
			return nil
		}
		return tx.Model(cart).Omit("Books.*").Association("Books").Append(books)
	})
	if err != nil {
		return nil, err
	}
	return r.GetCart(id)
}

// UpdateCart sets the owner and replaces the whole book set of a cart.
func (r *Repository) UpdateCart(id, userID uint, bookIDs []uint) (*entities.ShoppingCart, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var cart entities.ShoppingCart
		if err := tx.First(&cart, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartNotFound
			}
			return err
		}
		books, err := loadBooks(tx, bookIDs)
		if err != nil {
			return err
		}
		if err := tx.Model(&cart).Update("user_id", userID).Error; err != nil {
			return err
		}
		return tx.Model(&cart).Omit("Books.*").Association("Books").Replace(books)
	})
	if err != nil {
		return nil, err
	}
	return r.GetCart(id)
}

// DeleteCart removes the cart and its book associations. Books are untouched.
func (r *Repository) DeleteCart(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM shopping_cart_books WHERE shopping_cart_id = ?", id).Error; err != nil {
			return fmt.Errorf("unlink books from cart %d: %w", id, err)
		}
		result := tx.Delete(&entities.ShoppingCart{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCartNotFound
		}
		return nil
	})
}

// loadBooks resolves ids to books, ignoring duplicates.
func loadBooks(tx *gorm.DB, ids []uint) ([]entities.Book, error) {
	unique := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return []entities.Book{}, nil
	}

	var books []entities.Book
	if err := tx.Where("id IN ?", unique).Find(&books).Error; err != nil {
		return nil, err
	}
	if len(books) != len(unique) {
		found := make(map[uint]struct{}, len(books))
		for _, b := range books {
			found[b.ID] = struct{}{}
		}
		for _, id := range unique {
			if _, ok := found[id]; !ok {
				return nil, fmt.Errorf("%w: %d", ErrUnknownBook, id)
			}
		}
	}
	return books, nil
}
