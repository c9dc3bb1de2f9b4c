package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/pharmexam/examprep/internal/auth/jwt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type userStore interface {
	CreateUser(ctx context.Context, params CreateUserParams) (StoredUser, error)
	GetByEmail(ctx context.Context, email string) (StoredUser, error)
	GetByID(ctx context.Context, id uuid.UUID) (StoredUser, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}

// Service handles authentication and user lookup. The quiz core only ever
// sees the user ID it yields; identity never leaks into session state.
type Service struct {
	store    userStore
	tokenMgr *jwt.Manager
	logger   zerolog.Logger
}

// ServiceOptions configures the auth service.
type ServiceOptions struct {
	TokenConfig jwt.TokenConfig
}

// NewService creates an authentication service.
func NewService(store userStore, opts ServiceOptions, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		tokenMgr: jwt.NewManager(opts.TokenConfig),
		logger:   logger,
	}
}

// Register creates a new account and signs it in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, *TokenPair, error) {
	if req.Email == "" {
		return nil, nil, fmt.Errorf("email required")
	}

	if _, err := s.store.GetByEmail(ctx, req.Email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, nil, fmt.Errorf("lookup email: %w", err)
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	stored, err := s.store.CreateUser(ctx, CreateUserParams{
		Email:        req.Email,
		PasswordHash: pgtype.Text{String: passwordHash, Valid: true},
		DisplayName:  req.DisplayName,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	user := &User{ID: stored.ID, Email: stored.Email, DisplayName: stored.DisplayName}

	tokens, err := s.generateTokenPair(*user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Str("email", req.Email).Msg("user registered")
	return user, tokens, nil
}

// Login authenticates a user with email/password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*User, *TokenPair, error) {
	stored, err := s.store.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !stored.PasswordHash.Valid {
		return nil, nil, ErrInvalidCredentials
	}
	if err := VerifyPassword(stored.PasswordHash.String, req.Password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	user := &User{ID: stored.ID, Email: stored.Email, DisplayName: stored.DisplayName}

	_ = s.store.UpdateLastLogin(ctx, stored.ID)

	tokens, err := s.generateTokenPair(*user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user logged in")
	return user, tokens, nil
}

// RefreshToken generates a new token pair from a refresh token.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokenMgr.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	stored, err := s.store.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}

	user := User{ID: stored.ID, Email: stored.Email, DisplayName: stored.DisplayName}
	return s.generateTokenPair(user)
}

// ValidateToken validates an access token and returns user claims.
func (s *Service) ValidateToken(tokenString string) (*jwt.Claims, error) {
	return s.tokenMgr.ValidateAccessToken(tokenString)
}

// GetUser fetches a user by ID.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	stored, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &User{ID: stored.ID, Email: stored.Email, DisplayName: stored.DisplayName}, nil
}

func (s *Service) generateTokenPair(user User) (*TokenPair, error) {
	jwtUser := jwt.User{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}

	accessToken, err := s.tokenMgr.GenerateAccessToken(jwtUser)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokenMgr.GenerateRefreshToken(jwtUser)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokenMgr.AccessTTL().Seconds()),
	}, nil
}
