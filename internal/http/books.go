package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/database/catalog"
	"github.com/mrlokans/bookstore/internal/entities"
)

// bookRequest is the writable part of a book. Any isbn in the body is ignored.
type bookRequest struct {
	Title         *string `json:"title"`
	Author        *uint   `json:"author"`
	PublishedDate *string `json:"published_date"`
	Category      *uint   `json:"category"`
}

var bookFields = []string{"title", "author", "published_date", "category"}

type BooksController struct {
	store BookStore
	isbn  ISBNGenerator
}

func NewBooksController(store BookStore, isbn ISBNGenerator) *BooksController {
	return &BooksController{store: store, isbn: isbn}
}

// List handles GET /books/
func (bc *BooksController) List(c *gin.Context) {
	books, err := bc.store.ListBooks()
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, books)
}

// Create handles POST /books/ and assigns a fresh ISBN.
func (bc *BooksController) Create(c *gin.Context) {
	var req bookRequest
	if !bindJSON(c, &req) {
		return
	}

	book := &entities.Book{}
	errs, err := bc.apply(book, req, nullErrors(c, bookFields...), false)
	if err != nil {
		respondInternalError(c, err, "validate book")
		return
	}
	if !errs.empty() {
		respondValidation(c, errs)
		return
	}

	book.ISBN, err = bc.isbn.Generate()
	if err != nil {
		respondInternalError(c, err, "generate isbn")
		return
	}
	if err := bc.store.CreateBook(book); err != nil {
		respondInternalError(c, err, "create book")
		return
	}
	respondCreated(c, book)
}

// Get handles GET /books/:id/
func (bc *BooksController) Get(c *gin.Context) {
	book, ok := bc.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, book)
}

// Update handles PUT (all fields) and PATCH (any subset) on /books/:id/
func (bc *BooksController) Update(c *gin.Context) {
	book, ok := bc.load(c)
	if !ok {
		return
	}

	var req bookRequest
	if !bindJSON(c, &req) {
		return
	}
	errs, err := bc.apply(book, req, nullErrors(c, bookFields...), c.Request.Method == http.MethodPatch)
	if err != nil {
		respondInternalError(c, err, "validate book")
		return
	}
	if !errs.empty() {
		respondValidation(c, errs)
		return
	}

	if err := bc.store.UpdateBook(book); err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// Delete handles DELETE /books/:id/
func (bc *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := bc.store.DeleteBook(id); err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "delete book")
		return
	}
	respondNoContent(c)
}

// apply validates req on top of errs and copies the supplied fields onto book.
func (bc *BooksController) apply(book *entities.Book, req bookRequest, errs fieldErrors, partial bool) (fieldErrors, error) {
	checkText(errs, "title", req.Title, !partial, maxNameLength)
	checkRef(errs, "author", req.Author, !partial)
	checkRef(errs, "category", req.Category, !partial)

	var published entities.Date
	switch {
	case errs.has("published_date"):
	case req.PublishedDate == nil:
		if !partial {
			errs.add("published_date", msgRequired)
		}
	default:
		d, err := entities.ParseDate(*req.PublishedDate)
		if err != nil {
			errs.add("published_date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
		}
		published = d
	}

	if req.Author != nil {
		if _, err := bc.store.GetAuthor(*req.Author); err != nil {
			if !errors.Is(err, catalog.ErrAuthorNotFound) {
				return nil, err
			}
			errs.add("author", msgInvalidPK(*req.Author))
		}
	}
	if req.Category != nil {
		if _, err := bc.store.GetCategory(*req.Category); err != nil {
			if !errors.Is(err, catalog.ErrCategoryNotFound) {
				return nil, err
			}
			errs.add("category", msgInvalidPK(*req.Category))
		}
	}
	if !errs.empty() {
		return errs, nil
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.AuthorID = *req.Author
	}
	if req.Category != nil {
		book.CategoryID = *req.Category
	}
	if req.PublishedDate != nil {
		book.PublishedDate = published
	}
	return errs, nil
}

func (bc *BooksController) load(c *gin.Context) (*entities.Book, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}
	book, err := bc.store.GetBook(id)
	if err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			respondNotFound(c, "book")
			return nil, false
		}
		respondInternalError(c, err, "get book")
		return nil, false
	}
	return book, true
}
