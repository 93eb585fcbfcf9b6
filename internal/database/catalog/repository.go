// Package catalog provides database operations for authors, categories and books.
//
// Deletes cascade explicitly: removing an author or a category removes its
// books, and removing a book removes it from every shopping cart.
//
// # Usage
//
//	repo := catalog.NewRepository(db)
//	book, err := repo.GetBook(123)
package catalog

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookstore/internal/entities"
)

var (
	ErrAuthorNotFound   = errors.New("author not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrBookNotFound     = errors.New("book not found")
)

// cartLinksForBooks deletes cart associations of the books matched by the subquery.
const cartLinksForBooks = "DELETE FROM shopping_cart_books WHERE book_id IN (SELECT id FROM books WHERE %s = ?)"

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// --- Authors ---

func (r *Repository) ListAuthors() ([]entities.Author, error) {
	var authors []entities.Author
	err := r.db.Order("id ASC").Find(&authors).Error
	return authors, err
}

func (r *Repository) GetAuthor(id uint) (*entities.Author, error) {
	var author entities.Author
	if err := r.db.First(&author, id).Error; err != nil {
		return nil, notFound(err, ErrAuthorNotFound)
	}
	return &author, nil
}

func (r *Repository) CreateAuthor(author *entities.Author) error {
	return r.db.Create(author).Error
}

// UpdateAuthor overwrites the stored name of an existing author.
func (r *Repository) UpdateAuthor(author *entities.Author) error {
	if _, err := r.GetAuthor(author.ID); err != nil {
		return err
	}
	return r.db.Model(&entities.Author{ID: author.ID}).Update("name", author.Name).Error
}

// DeleteAuthor removes the author together with all of its books.
func (r *Repository) DeleteAuthor(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(fmt.Sprintf(cartLinksForBooks, "author_id"), id).Error; err != nil {
			return fmt.Errorf("unlink books from carts: %w", err)
		}
		if err := tx.Where("author_id = ?", id).Delete(&entities.Book{}).Error; err != nil {
			return fmt.Errorf("delete books of author %d: %w", id, err)
		}
		result := tx.Delete(&entities.Author{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAuthorNotFound
		}
		return nil
	})
}

// --- Categories ---

func (r *Repository) ListCategories() ([]entities.Category, error) {
	var categories []entities.Category
	err := r.db.Order("id ASC").Find(&categories).Error
	return categories, err
}

func (r *Repository) GetCategory(id uint) (*entities.Category, error) {
	var category entities.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}
	return &category, nil
}

func (r *Repository) CreateCategory(category *entities.Category) error {
	return r.db.Create(category).Error
}

func (r *Repository) UpdateCategory(category *entities.Category) error {
	if _, err := r.GetCategory(category.ID); err != nil {
		return err
	}
	return r.db.Model(&entities.Category{ID: category.ID}).Update("name", category.Name).Error
}

// DeleteCategory removes the category together with all of its books.
func (r *Repository) DeleteCategory(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(fmt.Sprintf(cartLinksForBooks, "category_id"), id).Error; err != nil {
			return fmt.Errorf("unlink books from carts: %w", err)
		}
		if err := tx.Where("category_id = ?", id).Delete(&entities.Book{}).Error; err != nil {
			return fmt.Errorf("delete books of category %d: %w", id, err)
		}
		result := tx.Delete(&entities.Category{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
}

// --- Books ---

func (r *Repository) ListBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("id ASC").Find(&books).Error
	return books, err
}

func (r *Repository) GetBook(id uint) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.First(&book, id).Error; err != nil {
		return nil, notFound(err, ErrBookNotFound)
	}
	return &book, nil
}

// CreateBook inserts a book. The caller assigns the ISBN beforehand.
func (r *Repository) CreateBook(book *entities.Book) error {
	if book.ISBN == "" {
		return fmt.Errorf("book isbn must be assigned before insert")
	}
	return r.db.Omit("Author", "Category").Create(book).Error
}

// UpdateBook overwrites every mutable column. The ISBN is never touched.
func (r *Repository) UpdateBook(book *entities.Book) error {
	if _, err := r.GetBook(book.ID); err != nil {
		return err
	}
	return r.db.Model(&entities.Book{ID: book.ID}).
		Select("title", "author_id", "published_date", "category_id").
		Updates(book).Error
}

// DeleteBook removes the book from every cart and then deletes it.
func (r *Repository) DeleteBook(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM shopping_cart_books WHERE book_id = ?", id).Error; err != nil {
			return fmt.Errorf("unlink book from carts: %w", err)
		}
		result := tx.Delete(&entities.Book{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBookNotFound
		}
		return nil
	})
}

// ISBNExists reports whether any book currently carries isbn.
func (r *Repository) ISBNExists(isbn string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Where("isbn = ?", isbn).Count(&count).Error
	return count > 0, err
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
