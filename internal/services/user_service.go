package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kanzaki/taskproof/internal/models"
	"github.com/kanzaki/taskproof/internal/repository"
)

// UserService serves the read-only profile and leaderboard views.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// GetProfile returns the public profile for a username.
func (s *UserService) GetProfile(username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// Leaderboard returns all users ordered by score descending. An empty
// slice, not an error, when nobody has registered.
func (s *UserService) Leaderboard() ([]models.User, error) {
	users, err := s.userRepo.ListByScore()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
