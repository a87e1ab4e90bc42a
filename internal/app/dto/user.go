package dto

import (
	"time"

	"staybook/internal/domain/user"
)

type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

func NewAuthResponse(u *user.User, token string) AuthResponse {
	return AuthResponse{Token: token, User: MapUserProfile(u)}
}

type UserCollection struct {
	Items []UserProfile `json:"items"`
	Total int           `json:"total"`
}

func MapUserProfile(u *user.User) UserProfile {
	return UserProfile{
		ID:        string(u.ID),
		Email:     u.Email,
		Name:      u.Name,
		Roles:     u.Roles.Strings(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func MapUserCollection(items []*user.User, total int) UserCollection {
	out := UserCollection{Items: make([]UserProfile, 0, len(items)), Total: total}
	for _, u := range items {
		out.Items = append(out.Items, MapUserProfile(u))
	}
	return out
}
