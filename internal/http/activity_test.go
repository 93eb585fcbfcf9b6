package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore/internal/entities"
)

func TestActivity_RecordsAccountEvents(t *testing.T) {
	s := setupTestServer(t)
	userID, token := s.signup(t, "reader", "reader@example.com")
	_, otherToken := s.signup(t, "other", "")

	w := s.do(t, http.MethodPost, "/login/", "", gin.H{"username": "reader", "password": "wrong-password"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	author := s.createAuthor(t, token, "Author")
	category := s.createCategory(t, token, "Category")
	book := s.createBook(t, token, "Book", author.ID, category.ID)
	s.createCart(t, token, userID, book.ID)

	w = s.do(t, http.MethodGet, "/purchase/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, itemPath("/books/", book.ID), token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodDelete, itemPath("/books/", book.ID), token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	s.audit.Wait()

	w = s.do(t, http.MethodGet, "/activity/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[ActivityResponse](t, w)

	actions := make([]string, 0, len(page.Events))
	for _, e := range page.Events {
		assert.Equal(t, userID, e.UserID)
		actions = append(actions, e.Action)
	}
	// the failed login is not attributed to a user
	assert.ElementsMatch(t, []string{"register", "login", "purchase", "book_delete"}, actions)
	assert.Equal(t, int64(4), page.Total)

	for _, e := range page.Events {
		if e.Action == "book_delete" {
			require.NotNil(t, e.EntityID)
			assert.Equal(t, book.ID, *e.EntityID)
			assert.Equal(t, entities.AuditEventDelete, e.EventType)
		}
	}

	w = s.do(t, http.MethodGet, "/activity/?limit=1&offset=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[ActivityResponse](t, w)
	assert.Len(t, page.Events, 1)
	assert.Equal(t, int64(4), page.Total)

	w = s.do(t, http.MethodGet, "/activity/?limit=-1", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/activity/", otherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[ActivityResponse](t, w)
	assert.Equal(t, int64(2), page.Total)
}
