package auth

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/database/users"
	"github.com/mrlokans/bookstore/internal/entities"
)

// Validation patterns
var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+\-]{1,150}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var (
	ErrUserExists         = errors.New("a user with that username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrUsernameInvalid    = errors.New("username must be 1-150 characters: letters, digits and @/./+/-/_ only")
	ErrEmailInvalid       = errors.New("invalid email format")
)

// UserStore defines the user and token persistence the service needs.
type UserStore interface {
	CreateUser(user *entities.User) error
	GetUserByUsername(username string) (*entities.User, error)
	TouchLastLogin(id uint, at time.Time) error
	GetOrCreateToken(userID uint) (*entities.AuthToken, error)
	GetToken(key string) (*entities.AuthToken, error)
	DeleteTokensForUser(userID uint) (int64, error)
}

// Service handles registration, login and token validation.
type Service struct {
	users  UserStore
	config config.Auth
	now    func() time.Time
}

// NewService creates a new authentication service.
func NewService(store UserStore, cfg config.Auth) *Service {
	return &Service{
		users:  store,
		config: cfg,
		now:    time.Now,
	}
}

// Register validates and stores a new account. Every failing field is
// reported: the returned error joins one sentinel per problem.
func (s *Service) Register(username, email, password string) (*entities.User, error) {
	var problems []error
	switch {
	case username == "":
		problems = append(problems, ErrUsernameRequired)
	case !usernamePattern.MatchString(username):
		problems = append(problems, ErrUsernameInvalid)
	default:
		_, err := s.users.GetUserByUsername(username)
		switch {
		case err == nil:
			problems = append(problems, ErrUserExists)
		case !errors.Is(err, users.ErrUserNotFound):
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
	}
	// Email is optional; RFC 5321 caps it at 254
	if email != "" && (len(email) > 254 || !emailPattern.MatchString(email)) {
		problems = append(problems, ErrEmailInvalid)
	}
	if password == "" {
		problems = append(problems, ErrPasswordRequired)
	} else if err := ValidatePassword(password); err != nil {
		problems = append(problems, err)
	}
	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := s.users.CreateUser(user); err != nil {
		if errors.Is(err, users.ErrUsernameTaken) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate checks credentials. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Authenticate(username, password string) (*entities.User, error) {
	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}

// Login authenticates and returns the user's token, reusing an existing one.
// An expired token is replaced.
func (s *Service) Login(username, password string) (*entities.AuthToken, error) {
	user, err := s.Authenticate(username, password)
	if err != nil {
		return nil, err
	}

	token, err := s.users.GetOrCreateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	if s.expired(token) {
		if _, err := s.users.DeleteTokensForUser(user.ID); err != nil {
			return nil, fmt.Errorf("failed to rotate expired token: %w", err)
		}
		if token, err = s.users.GetOrCreateToken(user.ID); err != nil {
			return nil, fmt.Errorf("failed to issue token: %w", err)
		}
	}

	if err := s.users.TouchLastLogin(user.ID, s.now()); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	return token, nil
}

// Logout deletes every token of the user.
func (s *Service) Logout(userID uint) error {
	if _, err := s.users.DeleteTokensForUser(userID); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	return nil
}

// ValidateToken resolves a token key to the identity of its owner.
func (s *Service) ValidateToken(key string) (Identity, error) {
	if key == "" {
		return Identity{}, ErrInvalidToken
	}
	token, err := s.users.GetToken(key)
	if err != nil {
		if errors.Is(err, users.ErrTokenNotFound) {
			return Identity{}, ErrInvalidToken
		}
		return Identity{}, err
	}
	if s.expired(token) {
		return Identity{}, ErrTokenExpired
	}

	return Identity{
		UserID:   token.User.ID,
		Username: token.User.Username,
		Email:    token.User.Email,
	}, nil
}

func (s *Service) expired(token *entities.AuthToken) bool {
	if s.config.TokenExpiry <= 0 {
		return false
	}
	return s.now().Sub(token.CreatedAt) > s.config.TokenExpiry
}
