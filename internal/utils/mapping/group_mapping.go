package mapping

import (
	"github.com/SscSPs/splitsettle/internal/core/domain"
	"github.com/SscSPs/splitsettle/internal/models"
)

// ToDomainGroup converts a group row, dropping duplicate and empty member IDs.
func ToDomainGroup(m models.Group) domain.Group {
	return domain.NewGroup(m.GroupID, m.Name, m.Members)
}

// ToModelGroup converts a domain group to a row.
func ToModelGroup(d domain.Group) models.Group {
	return models.Group{
		GroupID: d.GroupID,
		Name:    d.Name,
		Members: domain.DedupeMembers(d.Members),
	}
}
