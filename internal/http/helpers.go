package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/mrlokans/bookstore/internal/auth"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // per-field validation messages
}

// MessageResponse is the body of endpoints that only report an outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s) [request %s]: %v", context, requestID(c), err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondError sends an error response with the given status code.
// Use the specific helpers (respondBadRequest, respondNotFound, etc.) when possible.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// respondValidation sends a 400 with the collected field errors.
func respondValidation(c *gin.Context, errs fieldErrors) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation failed",
		Code:    "invalid",
		Details: errs,
	})
}

// --- Success Response Helpers ---

// respondMessage sends a 200 OK response with a message.
func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondNoContent sends a 204 after a delete.
func respondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// A malformed ID gets a 400. A well-formed one too large to be stored can
// name no row, so it gets a 404.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 64)
	switch {
	case errors.Is(err, strconv.ErrRange), err == nil && (id > math.MaxInt64 || uint64(uint(id)) != id):
		respondError(c, http.StatusNotFound, "not found")
		return 0, false
	case err != nil:
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

const contextKeyNullFields = "nullFields"

// bindJSON decodes the request body into dst, responding on failure.
// Keys sent as an explicit null are remembered for nullErrors.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindBodyWith(dst, binding.JSON); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		respondBadRequest(c, "invalid JSON body: "+err.Error())
		return false
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindBodyWith(&raw, binding.JSON); err == nil {
		nulls := make(map[string]bool)
		for key, value := range raw {
			if string(value) == "null" {
				nulls[key] = true
			}
		}
		c.Set(contextKeyNullFields, nulls)
	}
	return true
}

// nullErrors starts a validation with msgNull for each of fields that the
// bound body set to null. The check helpers leave those fields alone.
func nullErrors(c *gin.Context, fields ...string) fieldErrors {
	errs := fieldErrors{}
	value, _ := c.Get(contextKeyNullFields)
	nulls, _ := value.(map[string]bool)
	for _, field := range fields {
		if nulls[field] {
			errs.add(field, msgNull)
		}
	}
	return errs
}

// identity returns the caller resolved by the auth middleware. A missing
// identity means the route was mounted without the middleware.
func identity(c *gin.Context) (auth.Identity, bool) {
	id, ok := auth.GetIdentity(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
	}
	return id, ok
}

// --- Validation ---

const (
	msgRequired   = "This field is required."
	msgBlank      = "This field may not be blank."
	msgNull       = "This field may not be null."
	maxNameLength = 100
)

// fieldErrors maps a request field to its validation messages.
type fieldErrors map[string][]string

func (e fieldErrors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e fieldErrors) empty() bool {
	return len(e) == 0
}

func (e fieldErrors) has(field string) bool {
	_, ok := e[field]
	return ok
}

func msgMaxLength(n int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", n)
}

func msgInvalidPK(id uint) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}

// checkText validates an optional string field. required rejects a missing
// value. Surrounding whitespace is trimmed in place before the checks.
func checkText(errs fieldErrors, field string, value *string, required bool, maxLen int) {
	if errs.has(field) {
		return
	}
	if value == nil {
		if required {
			errs.add(field, msgRequired)
		}
		return
	}
	*value = strings.TrimSpace(*value)
	if *value == "" {
		errs.add(field, msgBlank)
		return
	}
	if utf8.RuneCountInString(*value) > maxLen {
		errs.add(field, msgMaxLength(maxLen))
	}
}

// checkRef validates the presence of a foreign key field.
func checkRef(errs fieldErrors, field string, value *uint, required bool) {
	if value == nil && required && !errs.has(field) {
		errs.add(field, msgRequired)
	}
}
