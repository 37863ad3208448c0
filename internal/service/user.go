package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_backend/internal/events"
	"github.com/Skotchmaster/shop_backend/internal/hash"
	"github.com/Skotchmaster/shop_backend/internal/logging"
	"github.com/Skotchmaster/shop_backend/internal/models"
	"github.com/Skotchmaster/shop_backend/internal/repo"
	"github.com/Skotchmaster/shop_backend/internal/transport"
)

// UserService backs the admin user endpoints.
type UserService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Repo.GetUserByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return user, err
}

func parseRole(field, raw string) (models.Role, error) {
	if raw == "" {
		return models.RoleUser, nil
	}
	role := models.Role(strings.ToLower(raw))
	if !role.Valid() {
		return "", fieldError(field, fmt.Sprintf("%q is not a valid choice.", raw))
	}
	return role, nil
}

func (s *UserService) Create(ctx context.Context, req transport.CreateUserRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.create")

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
	if len(req.Password) < minPasswordLen {
		return nil, fieldError("password", "Ensure this field has at least 6 characters.")
	}
	role, err := parseRole("role", req.Role)
	if err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, hash.ErrPasswordTooLong) {
			return nil, fieldError("password", "Password is too long.")
		}
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
		IsBlocked:    req.IsBlocked,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("%w: user with this username or email already exists", ErrConflict)
		}
		return nil, err
	}

	l.Info("user_created", "user_id", user.ID, "role", user.Role)
	s.emit(ctx, "user_created", user)
	return user, nil
}

func (s *UserService) Patch(ctx context.Context, id uint, req transport.PatchUserRequest) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if tooLong(*req.Name, maxNameLen) {
			return nil, fieldError("name", "Ensure this field has no more than 150 characters.")
		}
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if !validEmail(email) {
			return nil, fieldError("email", "Enter a valid email address.")
		}
		user.Email = email
	}
	if req.Role != nil {
		role, err := parseRole("role", *req.Role)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}
	if req.IsBlocked != nil {
		user.IsBlocked = *req.IsBlocked
	}
	if req.Password != nil {
		if len(*req.Password) < minPasswordLen {
			return nil, fieldError("password", "Ensure this field has at least 6 characters.")
		}
		pwHash, err := hash.HashPassword(*req.Password)
		if err != nil {
			if errors.Is(err, hash.ErrPasswordTooLong) {
				return nil, fieldError("password", "Password is too long.")
			}
			return nil, err
		}
		user.PasswordHash = pwHash
	}

	if err := s.Repo.SaveUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("%w: user with this email already exists", ErrConflict)
		}
		return nil, err
	}
	s.emit(ctx, "user_updated", user)
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return err
	}
	events.Emit(ctx, s.Events, events.TopicUsers, strconv.FormatUint(uint64(id), 10), map[string]any{
		"type":   "user_deleted",
		"userID": id,
	})
	return nil
}

func (s *UserService) emit(ctx context.Context, typ string, u *models.User) {
	events.Emit(ctx, s.Events, events.TopicUsers, strconv.FormatUint(uint64(u.ID), 10), map[string]any{
		"type":      typ,
		"userID":    u.ID,
		"role":      u.Role,
		"isBlocked": u.IsBlocked,
	})
}
