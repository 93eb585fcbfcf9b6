package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/database/catalog"
	"github.com/mrlokans/bookstore/internal/entities"
)

type CategoriesController struct {
	store CategoryStore
}

func NewCategoriesController(store CategoryStore) *CategoriesController {
	return &CategoriesController{store: store}
}

// List handles GET /categories/
func (cc *CategoriesController) List(c *gin.Context) {
	categories, err := cc.store.ListCategories()
	if err != nil {
		respondInternalError(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// Create handles POST /categories/
func (cc *CategoriesController) Create(c *gin.Context) {
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	if errs := req.validate(nullErrors(c, "name"), false); !errs.empty() {
		respondValidation(c, errs)
		return
	}

	category := &entities.Category{Name: *req.Name}
	if err := cc.store.CreateCategory(category); err != nil {
		respondInternalError(c, err, "create category")
		return
	}
	respondCreated(c, category)
}

// Get handles GET /categories/:id/
func (cc *CategoriesController) Get(c *gin.Context) {
	category, ok := cc.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, category)
}

// Update handles PUT (all fields) and PATCH (any subset) on /categories/:id/
func (cc *CategoriesController) Update(c *gin.Context) {
	category, ok := cc.load(c)
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
		category.Name = *req.Name
	}

	if err := cc.store.UpdateCategory(category); err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			respondNotFound(c, "category")
			return
		}
		respondInternalError(c, err, "update category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// Delete handles DELETE /categories/:id/. The category's books go with it.
func (cc *CategoriesController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := cc.store.DeleteCategory(id); err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			respondNotFound(c, "category")
			return
		}
		respondInternalError(c, err, "delete category")
		return
	}
	respondNoContent(c)
}

func (cc *CategoriesController) load(c *gin.Context) (*entities.Category, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}
	category, err := cc.store.GetCategory(id)
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			respondNotFound(c, "category")
			return nil, false
		}
		respondInternalError(c, err, "get category")
		return nil, false
	}
	return category, true
}
