package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/binay-das/cloudify/logger"
	"github.com/binay-das/cloudify/models"
	"github.com/binay-das/cloudify/repositories"
	"github.com/binay-das/cloudify/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type RegisterOutput struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type LoginOutput struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      AuthUser  `json:"user"`
}

// TokenOptions configures locally issued tokens.
type TokenOptions struct {
	Secret string
	TTL    time.Duration
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (RegisterOutput, error)
	Login(ctx context.Context, in LoginInput) (LoginOutput, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	GetProfile(ctx context.Context, userID string) (AuthUser, error)
	ResolveOIDCUser(ctx context.Context, email string, name string) (string, error)
}

type authService struct {
	txManager TxManager
	users     repositories.UserRepository
	tokens    repositories.TokenBlocklist
	opts      TokenOptions
}

func NewAuthService(txManager TxManager, users repositories.UserRepository, tokens repositories.TokenBlocklist, opts TokenOptions) AuthService {
	return &authService{txManager: txManager, users: users, tokens: tokens, opts: opts}
}

func toAuthUser(u models.User) AuthUser {
	return AuthUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (RegisterOutput, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return RegisterOutput{}, newAppError(http.StatusBadRequest, "Missing fields", nil)
	}

	count, err := s.users.CountByEmail(ctx, email)
	if err != nil {
		return RegisterOutput{}, newAppError(http.StatusInternalServerError, "Registration failed", err)
	}
	if count > 0 {
		return RegisterOutput{}, newAppError(http.StatusConflict, "Email already exists", nil)
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return RegisterOutput{}, newAppError(http.StatusInternalServerError, "Registration failed", err)
	}

	user := models.User{Name: name, Email: email, Password: hashed}
	if err := s.users.Create(ctx, nil, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return RegisterOutput{}, newAppError(http.StatusConflict, "Email already exists", nil)
		}
		return RegisterOutput{}, newAppError(http.StatusInternalServerError, "Registration failed", err)
	}

	logger.Info("user registered", zap.String("user_id", user.ID))
	return RegisterOutput{Message: "User registered", UserID: user.ID}, nil
}

func (s *authService) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return LoginOutput{}, newAppError(http.StatusBadRequest, "Missing fields", nil)
	}

	user, err := s.users.GetByEmail(ctx, nil, email)
	if err != nil {
		if isNotFound(err) {
			return LoginOutput{}, newAppError(http.StatusUnauthorized, "Invalid email or password", nil)
		}
		return LoginOutput{}, newAppError(http.StatusInternalServerError, "Login failed", err)
	}
	if !utils.CheckPassword(in.Password, user.Password) {
		return LoginOutput{}, newAppError(http.StatusUnauthorized, "Invalid email or password", nil)
	}

	token, claims, err := utils.GenerateToken(s.opts.Secret, user.ID, s.opts.TTL)
	if err != nil {
		return LoginOutput{}, newAppError(http.StatusInternalServerError, "Login failed", err)
	}
	return LoginOutput{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: toAuthUser(user)}, nil
}

func (s *authService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return nil
	}
	if err := s.tokens.Revoke(ctx, tokenID, time.Until(expiresAt)); err != nil {
		return newAppError(http.StatusInternalServerError, "Logout failed", err)
	}
	return nil
}

func (s *authService) GetProfile(ctx context.Context, userID string) (AuthUser, error) {
	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		if isNotFound(err) {
			return AuthUser{}, newAppError(http.StatusNotFound, "User not found", nil)
		}
		return AuthUser{}, newAppError(http.StatusInternalServerError, "Failed to load profile", err)
	}
	return toAuthUser(user), nil
}

// ResolveOIDCUser maps a verified email to a local user, creating one on first sight.
func (s *authService) ResolveOIDCUser(ctx context.Context, email string, name string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", newAppError(http.StatusUnauthorized, "Unauthorized", nil)
	}

	var userID string
	err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		user, err := s.users.GetByEmail(ctx, tx, email)
		if err == nil {
			userID = user.ID
			return nil
		}
		if !isNotFound(err) {
			return err
		}

		if strings.TrimSpace(name) == "" {
			name = email
		}
		// random password: the account can only sign in through the identity provider
		hashed, err := utils.HashPassword(uuid.NewString())
		if err != nil {
			return err
		}
		user = models.User{Name: name, Email: email, Password: hashed}
		if err := s.users.Create(ctx, tx, &user); err != nil {
			return err
		}
		logger.Info("user provisioned from oidc", zap.String("user_id", user.ID))
		userID = user.ID
		return nil
	})
	if err != nil {
		return "", newAppError(http.StatusInternalServerError, "Failed to resolve user", err)
	}
	return userID, nil
}
