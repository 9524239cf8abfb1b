package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/ixtiyorSaitov/e-commerce-admin/common/errors"
	"github.com/ixtiyorSaitov/e-commerce-admin/models"
	"github.com/ixtiyorSaitov/e-commerce-admin/repository"
)

type UserService struct {
	users  repository.UserRepo
	logger *zap.Logger
}

func NewUserService(users repository.UserRepo, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.L()
	}
	return &UserService{users: users, logger: logger}
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch users", err)
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "User not found", "", "Failed to load user")
	}
	return user, nil
}

// UpdateUser replaces name, email and status.
func (s *UserService) UpdateUser(ctx context.Context, id string, req UserUpdateRequest) (*models.User, error) {
	req.normalize()
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "User not found", "", "Failed to load user")
	}

	user.Name = req.Name
	user.Email = req.Email
	user.Status = req.Status
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeError(err, "User not found", "User with this email already exists", "Failed to update user")
	}
	s.logger.Info("user updated", zap.String("user_id", user.ID), zap.String("status", string(user.Status)))
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return storeError(err, "User not found", "", "Failed to delete user")
	}
	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}

type AdminService struct {
	admins repository.AdminRepo
}

func NewAdminService(admins repository.AdminRepo) *AdminService {
	return &AdminService{admins: admins}
}

// Authorize returns the admin registered under email. An unknown email is a
// 403: the caller proved an identity, just not an admin one.
func (s *AdminService) Authorize(ctx context.Context, email string) (*models.Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.Unauthorized("Unauthorized")
	}
	admin, err := s.admins.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Forbidden("Forbidden: admin access required")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to load admin", err)
	}
	return admin, nil
}
