package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/database/carts"
	"github.com/mrlokans/bookstore/internal/database/catalog"
	"github.com/mrlokans/bookstore/internal/entities"
)

// CartResponse is the wire form of a cart: books are referenced by id.
type CartResponse struct {
	ID    uint   `json:"id"`
	User  uint   `json:"user"`
	Books []uint `json:"books"`
}

func newCartResponse(cart *entities.ShoppingCart) CartResponse {
	return CartResponse{ID: cart.ID, User: cart.UserID, Books: cart.BookIDs()}
}

type cartRequest struct {
	User  *uint   `json:"user"`
	Books *[]uint `json:"books"`
}

type CartsController struct {
	store CartStore
	books BookGetter
	users UserChecker
}

func NewCartsController(store CartStore, books BookGetter, users UserChecker) *CartsController {
	return &CartsController{store: store, books: books, users: users}
}

// List handles GET /shopping_cart/
func (cc *CartsController) List(c *gin.Context) {
	list, err := cc.store.ListCarts()
	if err != nil {
		respondInternalError(c, err, "list carts")
		return
	}
	out := make([]CartResponse, 0, len(list))
	for i := range list {
		out = append(out, newCartResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Create handles POST /shopping_cart/
func (cc *CartsController) Create(c *gin.Context) {
	var req cartRequest
	if !bindJSON(c, &req) {
		return
	}
	errs, err := cc.validate(req, nullErrors(c, "user", "books"), false)
	if err != nil {
		respondInternalError(c, err, "validate cart")
		return
	}
	if !errs.empty() {
		respondValidation(c, errs)
		return
	}

	cart, err := cc.store.CreateCart(*req.User, *req.Books)
	if err != nil {
		respondInternalError(c, err, "create cart")
		return
	}
	respondCreated(c, newCartResponse(cart))
}

// Get handles GET /shopping_cart/:id/
func (cc *CartsController) Get(c *gin.Context) {
	cart, ok := cc.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newCartResponse(cart))
}

// Update handles PUT (all fields) and PATCH (any subset) on /shopping_cart/:id/.
// A supplied book list replaces the whole set.
func (cc *CartsController) Update(c *gin.Context) {
	cart, ok := cc.load(c)
	if !ok {
		return
	}

	var req cartRequest
	if !bindJSON(c, &req) {
		return
	}
	errs, err := cc.validate(req, nullErrors(c, "user", "books"), c.Request.Method == http.MethodPatch)
	if err != nil {
		respondInternalError(c, err, "validate cart")
		return
	}
	if !errs.empty() {
		respondValidation(c, errs)
		return
	}

	userID := cart.UserID
	if req.User != nil {
		userID = *req.User
	}
	bookIDs := cart.BookIDs()
	if req.Books != nil {
		bookIDs = *req.Books
	}

	updated, err := cc.store.UpdateCart(cart.ID, userID, bookIDs)
	if err != nil {
		if errors.Is(err, carts.ErrCartNotFound) {
			respondNotFound(c, "shopping cart")
			return
		}
		respondInternalError(c, err, "update cart")
		return
	}
	c.JSON(http.StatusOK, newCartResponse(updated))
}

// Delete handles DELETE /shopping_cart/:id/. Books are not affected.
func (cc *CartsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := cc.store.DeleteCart(id); err != nil {
		if errors.Is(err, carts.ErrCartNotFound) {
			respondNotFound(c, "shopping cart")
			return
		}
		respondInternalError(c, err, "delete cart")
		return
	}
	respondNoContent(c)
}

func (cc *CartsController) validate(req cartRequest, errs fieldErrors, partial bool) (fieldErrors, error) {
	checkRef(errs, "user", req.User, !partial)
	if req.Books == nil && !partial && !errs.has("books") {
		errs.add("books", msgRequired)
	}

	if req.User != nil {
		exists, err := cc.users.UserExists(*req.User)
		if err != nil {
			return nil, err
		}
		if !exists {
			errs.add("user", msgInvalidPK(*req.User))
		}
	}
	if req.Books != nil {
		for _, id := range *req.Books {
			if _, err := cc.books.GetBook(id); err != nil {
				if !errors.Is(err, catalog.ErrBookNotFound) {
					return nil, err
				}
				errs.add("books", msgInvalidPK(id))
			}
		}
	}
	return errs, nil
}

func (cc *CartsController) load(c *gin.Context) (*entities.ShoppingCart, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}
	cart, err := cc.store.GetCart(id)
	if err != nil {
		if errors.Is(err, carts.ErrCartNotFound) {
			respondNotFound(c, "shopping cart")
			return nil, false
		}
		respondInternalError(c, err, "get cart")
		return nil, false
	}
	return cart, true
}
