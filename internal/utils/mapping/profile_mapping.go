package mapping

import (
	"github.com/SscSPs/splitsettle/internal/core/domain"
	"github.com/SscSPs/splitsettle/internal/models"
)

func ToDomainUser(m models.Profile) domain.User {
	u := domain.User{UserID: m.UserID}
	if m.Name != nil {
		u.Name = *m.Name
	}
	if m.Email != nil {
		u.Email = *m.Email
	}
	return u
}

func ToModelProfile(d domain.User) models.Profile {
	m := models.Profile{UserID: d.UserID}
	if d.Name != "" {
		name := d.Name
		m.Name = &name
	}
	if d.Email != "" {
		email := d.Email
		m.Email = &email
	}
	return m
}
