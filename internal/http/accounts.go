package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/auth"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// AccountsController handles registration, login and logout.
type AccountsController struct {
	accounts AccountService
	limiter  LoginLimiter
	audit    Auditor
}

// NewAccountsController creates a controller. limiter and audit may be nil.
func NewAccountsController(accounts AccountService, limiter LoginLimiter, audit Auditor) *AccountsController {
	return &AccountsController{accounts: accounts, limiter: limiter, audit: audit}
}

func (ac *AccountsController) record(c *gin.Context, userID uint, username, action string, success bool) {
	if ac.audit != nil {
		ac.audit.LogAuth(userID, username, action, c.ClientIP(), c.Request.UserAgent(), success)
	}
}

// Register handles POST /register/
func (ac *AccountsController) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	if nulls := nullErrors(c, "username", "email", "password"); !nulls.empty() {
		respondValidation(c, nulls)
		return
	}

	user, err := ac.accounts.Register(req.Username, req.Email, req.Password)
	if err != nil {
		if errs, ok := registerErrors(err); ok {
			respondValidation(c, errs)
			return
		}
		respondInternalError(c, err, "register user")
		return
	}

	ac.record(c, user.ID, user.Username, "register", true)
	respondCreated(c, UserResponse{ID: user.ID, Username: user.Username, Email: user.Email})
}

// registerErrors turns a (possibly joined) registration error into field
// messages. It reports false when any part is not a validation failure.
func registerErrors(err error) (fieldErrors, bool) {
	parts := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		parts = joined.Unwrap()
	}
	errs := fieldErrors{}
	for _, part := range parts {
		field, msg, ok := registerError(part)
		if !ok {
			return nil, false
		}
		errs.add(field, msg)
	}
	return errs, true
}

// registerError maps a registration failure to the offending field.
func registerError(err error) (field, msg string, ok bool) {
	switch {
	case errors.Is(err, auth.ErrUsernameRequired), errors.Is(err, auth.ErrPasswordRequired):
		return requiredField(err), msgRequired, true
	case errors.Is(err, auth.ErrUserExists):
		return "username", "A user with that username already exists.", true
	case errors.Is(err, auth.ErrUsernameInvalid):
		return "username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.", true
	case errors.Is(err, auth.ErrEmailInvalid):
		return "email", "Enter a valid email address.", true
	case errors.Is(err, auth.ErrPasswordTooShort):
		return "password", fmt.Sprintf("This password is too short. It must contain at least %d characters.", auth.MinPasswordLength), true
	case errors.Is(err, auth.ErrPasswordTooLong):
		return "password", fmt.Sprintf("Ensure this field has no more than %d bytes.", auth.MaxPasswordBytes), true
	}
	return "", "", false
}

func requiredField(err error) string {
	if errors.Is(err, auth.ErrUsernameRequired) {
		return "username"
	}
	return "password"
}

// Login handles POST /login/ and returns the caller's token.
func (ac *AccountsController) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	errs := nullErrors(c, "username", "password")
	if req.Username == "" && !errs.has("username") {
		errs.add("username", msgRequired)
	}
	if req.Password == "" && !errs.has("password") {
		errs.add("password", msgRequired)
	}
	if !errs.empty() {
		respondValidation(c, errs)
		return
	}

	ip := c.ClientIP()
	if ac.limiter != nil {
		if allowed, retryAfter := ac.limiter.Allow(ip, req.Username); !allowed {
			tooManyAttempts(c, retryAfter.String(), auth.RetryAfterSeconds(retryAfter))
			return
		}
	}

	token, err := ac.accounts.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			if ac.limiter != nil {
				ac.limiter.RecordFailure(ip, req.Username)
			}
			ac.record(c, 0, req.Username, "login", false)
			respondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respondInternalError(c, err, "login")
		return
	}

	if ac.limiter != nil {
		ac.limiter.RecordSuccess(ip, req.Username)
	}
	ac.record(c, token.UserID, req.Username, "login", true)
	c.JSON(http.StatusOK, TokenResponse{Token: token.Key})
}

func tooManyAttempts(c *gin.Context, human, seconds string) {
	c.Header("Retry-After", seconds)
	c.JSON(http.StatusTooManyRequests, ErrorResponse{
		Error:   "too many login attempts",
		Code:    "throttled",
		Details: gin.H{"retry_after": human},
	})
}

// Logout handles POST /logout/ and revokes every token of the caller.
func (ac *AccountsController) Logout(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	if err := ac.accounts.Logout(caller.UserID); err != nil {
		respondInternalError(c, err, "logout")
		return
	}
	ac.record(c, caller.UserID, caller.Username, "logout", true)
	respondMessage(c, "Logout successful")
}
