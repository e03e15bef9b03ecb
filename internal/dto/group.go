package dto

import "github.com/SscSPs/splitsettle/internal/core/domain"

// SaveGroupRequest creates or replaces the group in the path.
type SaveGroupRequest struct {
	Name    string   `json:"name" binding:"required,max=100"`
	Members []string `json:"members" binding:"required,min=1,dive,required"`
}

// GroupResponse defines the data returned for a group.
type GroupResponse struct {
	GroupID string   `json:"groupID"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

// ToGroupResponse converts a domain.Group to GroupResponse DTO
func ToGroupResponse(g *domain.Group) GroupResponse {
	return GroupResponse{GroupID: g.GroupID, Name: g.Name, Members: g.Members}
}

// UpdateProfileRequest replaces the acting user's directory entry.
type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
}

// ProfileResponse defines the data returned for a user.
type ProfileResponse struct {
	UserID string `json:"userID"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
}

// ToProfileResponse converts a domain.User to ProfileResponse DTO
func ToProfileResponse(u *domain.User) ProfileResponse {
	return ProfileResponse{UserID: u.UserID, Name: u.Name, Email: u.Email}
}
