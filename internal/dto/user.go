package dto

import (
	"github.com/kanzaki/taskproof/internal/models"
)

// UserDTO represents a user's public profile in API responses
type UserDTO struct {
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Score     int    `json:"score"`
}

// LoginResponse carries the bearer token issued on login
type LoginResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		Username:  user.Username,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
		Score:     user.Score,
	}
}

// ToLeaderboard converts users ordered by score into their DTOs
func ToLeaderboard(users []models.User) []UserDTO {
	entries := make([]UserDTO, len(users))
	for i, user := range users {
		entries[i] = ToUserDTO(user)
	}
	return entries
}
