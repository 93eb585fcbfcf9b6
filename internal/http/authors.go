package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/database/catalog"
	"github.com/mrlokans/bookstore/internal/entities"
)

// nameRequest is the body of author and category writes.
type nameRequest struct {
	Name *string `json:"name"`
}

func (r nameRequest) validate(errs fieldErrors, partial bool) fieldErrors {
	checkText(errs, "name", r.Name, !partial, maxNameLength)
	return errs
}

type AuthorsController struct {
	store AuthorStore
}

func NewAuthorsController(store AuthorStore) *AuthorsController {
	return &AuthorsController{store: store}
}

// List handles GET /authors/
func (ac *AuthorsController) List(c *gin.Context) {
	authors, err := ac.store.ListAuthors()
	if err != nil {
		respondInternalError(c, err, "list authors")
		return
	}
	c.JSON(http.StatusOK, authors)
}

// Create handles POST /authors/
func (ac *AuthorsController) Create(c *gin.Context) {
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	if errs := req.validate(nullErrors(c, "name"), false); !errs.empty() {
		respondValidation(c, errs)
		return
	}

	author := &entities.Author{Name: *req.Name}
	if err := ac.store.CreateAuthor(author); err != nil {
		respondInternalError(c, err, "create author")
		return
	}
	respondCreated(c, author)
}

// Get handles GET /authors/:id/
func (ac *AuthorsController) Get(c *gin.Context) {
	author, ok := ac.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, author)
}

// Update handles PUT (all fields) and PATCH (any subset) on /authors/:id/
func (ac *AuthorsController) Update(c *gin.Context) {
	author, ok := ac.load(c)
	if !ok {
		return
	}

	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	if errs := req.validate(nullErrors(c, "name"), c.Request.Method == http.MethodPatch); !errs.empty() {
		respondValidation(c, errs)
		return
	}
	if req.Name != nil {
		author.Name = *req.Name
	}

	if err := ac.store.UpdateAuthor(author); err != nil {
		if errors.Is(err, catalog.ErrAuthorNotFound) {
			respondNotFound(c, "author")
			return
		}
		respondInternalError(c, err, "update author")
		return
	}
	c.JSON(http.StatusOK, author)
}

// Delete handles DELETE /authors/:id/. The author's books go with it.
func (ac *AuthorsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ac.store.DeleteAuthor(id); err != nil {
		if errors.Is(err, catalog.ErrAuthorNotFound) {
			respondNotFound(c, "author")
			return
		}
		respondInternalError(c, err, "delete author")
		return
	}
	respondNoContent(c)
}

func (ac *AuthorsController) load(c *gin.Context) (*entities.Author, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}
	author, err := ac.store.GetAuthor(id)
	if err != nil {
		if errors.Is(err, catalog.ErrAuthorNotFound) {
			respondNotFound(c, "author")
			return nil, false
		}
		respondInternalError(c, err, "get author")
		return nil, false
	}
	return author, true
}
