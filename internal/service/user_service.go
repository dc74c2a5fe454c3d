package service

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/vkotliar/profile-backend/internal/models"
	"github.com/vkotliar/profile-backend/internal/repository"
	"github.com/vkotliar/profile-backend/internal/storage"
)

// UserService handles user profile and administration operations.
type UserService struct {
	userRepo   repository.UserRepository
	resetRepo  repository.PasswordResetRepository
	photoStore storage.PhotoStore
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	photoStore storage.PhotoStore,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		resetRepo:  resetRepo,
		photoStore: photoStore,
	}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}

// UpdateProfile applies a partial update to a user's profile. Fields absent
// from the update keep their stored values.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, update *models.ProfileUpdate) (*models.User, error) {
	user, err := s.userRepo.UpdateProfile(ctx, id, update)
	if err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}

// UpdatePhoto stores a new profile photo for a user and returns the updated
// user. The previous photo file, if any, is removed after the new one is in
// place.
func (s *UserService) UpdatePhoto(ctx context.Context, id int64, photo io.Reader) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldURL := user.PhotoURL

	photoURL, err := s.photoStore.Save(photo)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SetPhotoURL(ctx, id, photoURL); err != nil {
		// The database update failed, so the new file is orphaned.
		if removeErr := s.photoStore.Remove(photoURL); removeErr != nil {
			log.Error().
				Err(removeErr).
				Str("photo_url", photoURL).
				Msg("Failed to remove orphaned photo file")
		}
		return nil, err
	}

	if oldURL != "" && oldURL != photoURL {
		if err := s.photoStore.Remove(oldURL); err != nil {
			log.Warn().
				Err(err).
				Int64("user_id", id).
				Str("photo_url", oldURL).
				Msg("Failed to remove previous photo file")
		}
	}

	user.PhotoURL = photoURL
	return user.Sanitize(), nil
}

// ListUsers retrieves a page of users along with the total user count.
func (s *UserService) ListUsers(ctx context.Context, page, pageSize int) ([]*models.User, int, error) {
	offset := (page - 1) * pageSize

	users, err := s.userRepo.List(ctx, offset, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	for i, user := range users {
		users[i] = user.Sanitize()
	}

	return users, total, nil
}

// UpdateRole changes a user's role and returns the updated user.
func (s *UserService) UpdateRole(ctx context.Context, id int64, role string) (*models.User, error) {
	if err := s.userRepo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("user_id", id).
		Str("role", role).
		Msg("User role changed")

	return user.Sanitize(), nil
}

// DeleteUser permanently removes a user account and its staged password
// changes.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.resetRepo.DeleteByUserID(ctx, id); err != nil {
		log.Error().
			Err(err).
			Int64("user_id", id).
			Msg("Failed to delete reset tokens during account deletion")
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().
		Int64("user_id", id).
		Msg("User account deleted")

	return nil
}
