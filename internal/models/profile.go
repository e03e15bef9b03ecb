package models

// Profile is a row of the profiles table, the user directory.
type Profile struct {
	UserID string  `db:"id"`
	Name   *string `db:"name"`
	Email  *string `db:"email"`
}
