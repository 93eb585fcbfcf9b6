package http

import (
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/isbn"
)

func itemPath(prefix string, id uint) string {
	return prefix + strconv.FormatUint(uint64(id), 10) + "/"
}

func TestAuthors_CRUD(t *testing.T) {
	s := setupTestServer(t)
	_, token := s.signup(t, "reader", "")

	author := s.createAuthor(t, token, "Ursula K. Le Guin")
	assert.NotZero(t, author.ID)

	w := s.do(t, http.MethodGet, "/authors/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []entities.Author{author}, decode[[]entities.Author](t, w))

	w = s.do(t, http.MethodGet, itemPath("/authors/", author.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, author, decode[entities.Author](t, w))

	w = s.do(t, http.MethodPut, itemPath("/authors/", author.ID), token, gin.H{"name": "Le Guin"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Le Guin", decode[entities.Author](t, w).Name)

	w = s.do(t, http.MethodPatch, itemPath("/authors/", author.ID), token, gin.H{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Le Guin", decode[entities.Author](t, w).Name)

	w = s.do(t, http.MethodDelete, itemPath("/authors/", author.ID), token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = s.do(t, http.MethodGet, itemPath("/authors/", author.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodDelete, itemPath("/authors/", author.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthors_Validation(t *testing.T) {
	s := setupTestServer(t)
	_, token := s.signup(t, "reader", "")
	author := s.createAuthor(t, token, "Someone")

	tests := []struct {
		name   string
		method string
		path   string
		body   gin.H
		msg    string
	}{
		{"missing name", http.MethodPost, "/authors/", gin.H{}, msgRequired},
		{"blank name", http.MethodPost, "/authors/", gin.H{"name": ""}, msgBlank},
		{"long name", http.MethodPost, "/authors/", gin.H{"name": strings.Repeat("a", 101)}, msgMaxLength(100)},
		{"put without name", http.MethodPut, itemPath("/authors/", author.ID), gin.H{}, msgRequired},
		{"patch blank name", http.MethodPatch, itemPath("/authors/", author.ID), gin.H{"name": ""}, msgBlank},
		{"whitespace name", http.MethodPost, "/authors/", gin.H{"name": "   "}, msgBlank},
		{"null name", http.MethodPost, "/authors/", gin.H{"name": nil}, msgNull},
		{"patch null name", http.MethodPatch, itemPath("/authors/", author.ID), gin.H{"name": nil}, msgNull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, token, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, []string{tt.msg}, decode[validationBody](t, w).Details["name"])
		})
	}

	w := s.do(t, http.MethodGet, "/authors/abc/", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/authors/99999999999999999999/", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/authors/99999999999/", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthors_NameIsTrimmed(t *testing.T) {
	s := setupTestServer(t)
	_, token := s.signup(t, "reader", "")

	author := s.createAuthor(t, token, "  Le Guin  ")
	assert.Equal(t, "Le Guin", author.Name)

	w := s.do(t, http.MethodPatch, itemPath("/authors/", author.ID), token, gin.H{"name": "\tUrsula "})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ursula", decode[entities.Author](t, w).Name)

	w = s.do(t, http.MethodGet, itemPath("/authors/", author.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ursula", decode[entities.Author](t, w).Name)
}

func TestCategories_CRUD(t *testing.T) {
	s := setupTestServer(t)
	_, token := s.signup(t, "reader", "")

	category := s.createCategory(t, token, "Fantasy")

	w := s.do(t, http.MethodPatch, itemPath("/categories/", category.ID), token, gin.H{"name": "Science Fiction"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Science Fiction", decode[entities.Category](t, w).Name)

	w = s.do(t, http.MethodGet, "/categories/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]entities.Category](t, w), 1)

	w = s.do(t, http.MethodDelete, itemPath("/categories/", category.ID), token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, itemPath("/categories/", category.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBooks_CreateAssignsISBN(t *testing.T) {
	s := setupTestServer(t)
	_, token := s.signup(t, "reader", "")
	author := s.createAuthor(t, token, "Author")
	category := s.createCategory(t, token, "Category")

	w := s.do(t, http.MethodPost, "/books/", token, gin.H{
		"title":          "The Dispossessed",
		"author":         author.ID,
		"category":       category.ID,
		"published_date": "1974-05-01",
		"isbn":           "1234567890123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	book := decode[entities.Book](t, w)

	assert.Equal(t, "The Dispossessed", book.Title)
	assert.Equal(t, author.ID, book.AuthorID)
	assert.Equal(t, category.ID, book.CategoryID)
	assert.Equal(t, "1974-05-01", book.PublishedDate.String())
	assert.NotEqual(t, "1234567890123", book.ISBN)

	n, err := strconv.ParseInt(book.ISBN, 10, 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(isbn.Min))
	assert.LessOrEqual(t, n, int64(isbn.Max))
}

func TestBooks_UpdateKeepsISBN(t *testing.T) {
	s := setupTestServer(t)
	_, token := s.signup(t, "reader", "")
	author := s.createAuthor(t, token, "Author")
	other := s.createAuthor(t, token, "Other")
	category := s.createCategory(t, token, "Category")
	book := s.createBook(t, token, "Original", author.ID, category.ID)

	w := s.do(t, http.MethodPut, itemPath("/books/", book.ID), token, gin.H{
		"title":          "Renamed",
		"author":         other.ID,
		"category":       category.ID,
		"published_date": "2001-01-01",
		"isbn":           "42",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[entities.Book](t, w)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, other.ID, updated.AuthorID)
	assert.Equal(t, book.ISBN, updated.ISBN)

	w = s.do(t, http.MethodPatch, itemPath("/books/", book.ID), token, gin.H{"title": "Patched"})
	require.Equal(t, http.StatusOK, w.Code)
	patched := decode[entities.Book](t, w)
	assert.Equal(t, "Patched", patched.Title)
	assert.Equal(t, "2001-01-01", patched.PublishedDate.String())

	w = s.do(t, http.MethodGet, itemPath("/books/", book.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, book.ISBN, decode[entities.Book](t, w).ISBN)
}

func TestBooks_Validation(t *testing.T) {
	s := setupTestServer(t)
	_, token := s.signup(t, "reader", "")
	author := s.createAuthor(t, token, "Author")
	category := s.createCategory(t, token, "Category")

	w := s.do(t, http.MethodPost, "/books/", token, gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	details := decode[validationBody](t, w).Details
	for _, field := range []string{"title", "author", "category", "published_date"} {
		assert.Equal(t, []string{msgRequired}, details[field], field)
	}

	w = s.do(t, http.MethodPost, "/books/", token, gin.H{
		"title":          "Book",
		"author":         999,
		"category":       category.ID,
		"published_date": "17/05/2020",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	details = decode[validationBody](t, w).Details
	assert.Equal(t, []string{`Invalid pk "999" - object does not exist.`}, details["author"])
	assert.Equal(t, []string{"Date has wrong format. Use one of these formats instead: YYYY-MM-DD."}, details["published_date"])
	assert.NotContains(t, details, "category")

	w = s.do(t, http.MethodPost, "/books/", token, gin.H{
		"title":          "   ",
		"author":         nil,
		"category":       category.ID,
		"published_date": nil,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	details = decode[validationBody](t, w).Details
	assert.Equal(t, []string{msgBlank}, details["title"])
	assert.Equal(t, []string{msgNull}, details["author"])
	assert.Equal(t, []string{msgNull}, details["published_date"])
	assert.NotContains(t, details, "category")

	w = s.do(t, http.MethodGet, "/books/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]entities.Book](t, w))

	book := s.createBook(t, token, "  Book  ", author.ID, category.ID)
	assert.Equal(t, "Book", book.Title)
	w = s.do(t, http.MethodPatch, itemPath("/books/", book.ID), token, gin.H{"category": 999})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{msgInvalidPK(999)}, decode[validationBody](t, w).Details["category"])

	w = s.do(t, http.MethodGet, "/books/12345/", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalog_DeleteCascades(t *testing.T) {
	s := setupTestServer(t)
	userID, token := s.signup(t, "reader", "")
	author := s.createAuthor(t, token, "Author")
	keptAuthor := s.createAuthor(t, token, "Kept")
	category := s.createCategory(t, token, "Category")
	doomed := s.createBook(t, token, "Doomed", author.ID, category.ID)
	kept := s.createBook(t, token, "Kept", keptAuthor.ID, category.ID)
	cart := s.createCart(t, token, userID, doomed.ID, kept.ID)

	w := s.do(t, http.MethodDelete, itemPath("/authors/", author.ID), token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, itemPath("/books/", doomed.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, itemPath("/shopping_cart/", cart.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uint{kept.ID}, decode[CartResponse](t, w).Books)

	w = s.do(t, http.MethodDelete, itemPath("/categories/", category.ID), token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/books/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]entities.Book](t, w))

	w = s.do(t, http.MethodGet, itemPath("/shopping_cart/", cart.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[CartResponse](t, w).Books)
}
