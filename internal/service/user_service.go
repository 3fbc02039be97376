package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/npkumar/social-coder/internal/cache"
	"github.com/npkumar/social-coder/internal/middleware"
	"github.com/npkumar/social-coder/internal/models"
	"github.com/npkumar/social-coder/internal/repository"
	"github.com/npkumar/social-coder/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const userServiceName = "UserService"

// UserService registers accounts and issues tokens.
type UserService struct {
	users  repository.UserRepository
	secret string
	cost   int
	now    func() time.Time
}

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// LoginInput is the body of a login request.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewUserService(users repository.UserRepository, jwtSecret string) *UserService {
	return &UserService{
		users:  users,
		secret: jwtSecret,
		cost:   bcrypt.DefaultCost,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithHashCost sets the bcrypt cost used for new passwords.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.cost = cost
	return s
}

// Register creates an account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (_ *models.User, err error) {
	ctx, finish := traced(ctx, userServiceName, "Register")
	defer func() { finish(err) }()

	if fields := validation.ValidateRegister(in.Name, in.Email, in.Password, in.Password2); len(fields) > 0 {
		return nil, models.NewValidationError(fields)
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	switch _, lookupErr := s.users.GetByEmail(ctx, email); {
	case lookupErr == nil:
		return nil, emailTaken()
	case !errors.Is(lookupErr, repository.ErrNotFound):
		return nil, storeError(lookupErr, "User not found")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		ID:       models.NewID(),
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: string(hash),
		Avatar:   Gravatar(email),
		Date:     s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, emailTaken()
		}
		return nil, storeError(err, "User not found")
	}
	return user, nil
}

// Login checks credentials and returns a bearer token.
func (s *UserService) Login(ctx context.Context, in LoginInput) (_ string, err error) {
	ctx, finish := traced(ctx, userServiceName, "Login")
	defer func() { finish(err) }()

	if fields := validation.ValidateLogin(in.Email, in.Password); len(fields) > 0 {
		return "", models.NewValidationError(fields)
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", models.NewFieldError("email", "User not found")
		}
		return "", storeError(err, "User not found")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return "", models.NewFieldError("password", "Password incorrect")
	}

	token, _, err := middleware.IssueToken(s.secret, user, middleware.TokenTTL, s.now())
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return "Bearer " + token, nil
}

// Current returns the requester's account.
func (s *UserService) Current(ctx context.Context, identity models.Identity) (_ *models.User, err error) {
	ctx, finish := traced(ctx, userServiceName, "Current")
	defer func() { finish(err) }()

	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, storeError(err, "User not found")
	}
	return user, nil
}

// Authenticate confirms the token subject still has an account. A deleted
// account is unauthorized rather than not found.
func (s *UserService) Authenticate(ctx context.Context, identity models.Identity) (err error) {
	ctx, finish := traced(ctx, userServiceName, "Authenticate")
	defer func() { finish(err) }()

	if _, err := s.users.GetByID(ctx, identity.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.NewUnauthorizedError("Unauthorized")
		}
		return storeError(err, "User not found")
	}
	return nil
}

// Logout revokes the requester's token until it would have expired.
func (s *UserService) Logout(ctx context.Context, identity models.Identity) (err error) {
	ctx, finish := traced(ctx, userServiceName, "Logout")
	defer func() { finish(err) }()

	if err := cache.RevokeToken(ctx, identity.TokenID, identity.ExpiresAt.Sub(s.now())); err != nil {
		return models.NewStoreUnavailableError(err)
	}
	return nil
}

// Gravatar returns the avatar URL for email.
func Gravatar(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "//www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}

func emailTaken() error {
	return models.NewFieldError("email", "Email already exists")
}
