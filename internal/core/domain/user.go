package domain

// User is a member's entry in the external user directory.
// Only the display name is consumed, for settlement suggestions.
type User struct {
	UserID string `json:"userID"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
}

// UnknownUserName is shown when a member is missing from the directory.
const UnknownUserName = "Unknown User"

// DisplayName returns the user's name, falling back to UnknownUserName.
func (u *User) DisplayName() string {
	if u == nil || u.Name == "" {
		return UnknownUserName
	}
	return u.Name
}
