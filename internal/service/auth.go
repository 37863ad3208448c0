package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_backend/internal/events"
	"github.com/Skotchmaster/shop_backend/internal/hash"
	"github.com/Skotchmaster/shop_backend/internal/logging"
	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/repo"
	"github.com/Skotchmaster/shop_backend/internal/tokens"
	"github.com/Skotchmaster/shop_backend/internal/transport"
)

type AuthService struct {
	Repo          *repo.GormRepo
	Events        events.Publisher
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type TokenPair struct {
	Access     string
	Refresh    string
	AccessExp  time.Time
	RefreshExp time.Time
}

type LoginResult struct {
	TokenPair
	User *models.User
}

func (s *AuthService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return 15 * time.Minute
}

func (s *AuthService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return 7 * 24 * time.Hour
}

// Register always creates a plain user. Roles are granted through the admin
// user endpoints.
func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email := normalizeEmail(req.Email)
	if !validEmail(email) {
		return nil, fieldError("email", "Enter a valid email address.")
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = email[:strings.LastIndex(email, "@")]
	}
	if tooLong(username, maxUsernameLen) {
		return nil, fieldError("username", "Ensure this field has no more than 150 characters.")
	}
	if tooLong(req.Name, maxNameLen) {
		return nil, fieldError("name", "Ensure this field has no more than 150 characters.")
	}
	if len(req.Password) < minPasswordLen {
		return nil, fieldError("password", "Ensure this field has at least 6 characters.")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, hash.ErrPasswordTooLong) {
			return nil, fieldError("password", "Password is too long.")
		}
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("%w: user with this username or email already exists", ErrConflict)
		}
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicUsers, strconv.FormatUint(uint64(user.ID), 10), map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
	})
	l.Info("register_success", "user_id", user.ID)
	return user, nil
}

// Authenticate checks credentials. Unknown identifiers and wrong passwords
// are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, fmt.Errorf("%w: Please provide username/email and password", ErrValidation)
	}

	user, err := s.Repo.FindUserByLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: Invalid credentials", ErrUnauthorized)
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("%w: Invalid credentials", ErrUnauthorized)
	}
	if user.IsBlocked {
		return nil, fmt.Errorf("%w: account is blocked", ErrForbidden)
	}
	return user, nil
}

// IssueTokens signs a fresh access/refresh pair and stores the refresh hash.
func (s *AuthService) IssueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	now := time.Now()
	accessExp := now.Add(s.accessTTL())
	access, err := tokens.SignAccess(user.ID, string(user.Role), accessExp, s.AccessSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access: %w", err)
	}

	refreshExp := now.Add(s.refreshTTL())
	refresh, jti, err := tokens.SignRefresh(user.ID, refreshExp, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("sign refresh: %w", err)
	}

	if err := s.Repo.AddRefreshToken(ctx, &models.RefreshToken{
		Token:     tokens.Sha256Hex(refresh),
		UserID:    user.ID,
		JTI:       jti,
		ExpiresAt: refreshExp.Unix(),
	}); err != nil {
		return nil, fmt.Errorf("store refresh: %w", err)
	}

	return &TokenPair{Access: access, Refresh: refresh, AccessExp: accessExp, RefreshExp: refreshExp}, nil
}

func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "identifier", identifier)

	user, err := s.Authenticate(ctx, identifier, password)
	if err != nil {
		l.Warn("login_failed", "error", err)
		return nil, err
	}

	pair, err := s.IssueTokens(ctx, user)
	if err != nil {
		l.Error("login_failed", "error", err)
		return nil, err
	}

	l.Info("login_success", "user_id", user.ID)
	return &LoginResult{TokenPair: *pair, User: user}, nil
}

// Refresh trades a live refresh token for a new access token. The role is
// read from the store, never from the token.
func (s *AuthService) Refresh(ctx context.Context, raw string) (string, time.Time, error) {
	if raw == "" {
		return "", time.Time{}, fmt.Errorf("%w: refresh token required", ErrValidation)
	}
	stored, claims, err := s.liveRefresh(ctx, raw)
	if err != nil {
		return "", time.Time{}, err
	}

	user, err := s.Repo.GetUserByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", time.Time{}, ErrInvalidRefreshToken
		}
		return "", time.Time{}, err
	}
	if user.IsBlocked {
		return "", time.Time{}, fmt.Errorf("%w: account is blocked", ErrForbidden)
	}

	exp := time.Now().Add(s.accessTTL())
	access, err := tokens.SignAccess(user.ID, string(user.Role), exp, s.AccessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	logging.FromContext(ctx).Info("refresh_success", "user_id", user.ID, "jti", claims.ID)
	return access, exp, nil
}

func (s *AuthService) liveRefresh(ctx context.Context, raw string) (*models.RefreshToken, *tokens.RefreshClaims, error) {
	claims, err := tokens.RefreshClaimsFromToken(raw, s.RefreshSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}
	stored, err := s.Repo.FindRefreshByHash(ctx, tokens.Sha256Hex(raw))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidRefreshToken
		}
		return nil, nil, err
	}
	if stored.Revoked || stored.JTI != claims.ID || stored.ExpiresAt < time.Now().Unix() {
		return nil, nil, ErrInvalidRefreshToken
	}
	return stored, claims, nil
}

// Logout revokes the caller's refresh token. Anything other than a missing
// token collapses into ErrInvalidRefreshToken.
func (s *AuthService) Logout(ctx context.Context, callerID uint, raw string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout", "user_id", callerID)
	if raw == "" {
		return fmt.Errorf("%w: Refresh token required", ErrValidation)
	}

	stored, _, err := s.liveRefresh(ctx, raw)
	if err != nil {
		l.Warn("logout_failed", "error", err)
		return ErrInvalidRefreshToken
	}
	if stored.UserID != callerID {
		l.Warn("logout_failed", "reason", "token belongs to another user")
		return ErrInvalidRefreshToken
	}
	if err := s.Repo.RevokeRefresh(ctx, stored.Token); err != nil {
		l.Warn("logout_failed", "error", err)
		return ErrInvalidRefreshToken
	}

	l.Info("logout_success")
	return nil
}

// Identify resolves an access token to the caller. Role and blocked state
// come from the store so changes apply on the next request.
func (s *AuthService) Identify(ctx context.Context, access string) (models.Identity, error) {
	claims, err := tokens.AccessClaimsFromToken(access, s.AccessSecret)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	id, err := claims.UserID()
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Identity{}, fmt.Errorf("%w: user not found", ErrUnauthorized)
		}
		return models.Identity{}, err
	}
	if user.IsBlocked {
		return models.Identity{}, fmt.Errorf("%w: account is blocked", ErrForbidden)
	}
	return user.Identity(), nil
}
