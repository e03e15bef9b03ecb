package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SscSPs/splitsettle/internal/apperrors"
	"github.com/SscSPs/splitsettle/internal/core/domain"
	portsrepo "github.com/SscSPs/splitsettle/internal/core/ports/repositories"
	"github.com/SscSPs/splitsettle/internal/models"
	"github.com/SscSPs/splitsettle/internal/utils/mapping"
)

type SQLiteGroupRepository struct {
	BaseRepository
}

func newSQLiteGroupRepository(db *sql.DB) portsrepo.GroupRepositoryFacade {
	return &SQLiteGroupRepository{BaseRepository: BaseRepository{DB: db}}
}

// Ensure SQLiteGroupRepository implements portsrepo.GroupRepositoryFacade
var _ portsrepo.GroupRepositoryFacade = (*SQLiteGroupRepository)(nil)

func (r *SQLiteGroupRepository) GetGroup(ctx context.Context, groupID string) (*domain.Group, error) {
	var (
		m       models.Group
		members string
	)
	err := r.DB.QueryRowContext(ctx, `SELECT id, name, members FROM "groups" WHERE id = ?`, groupID).
		Scan(&m.GroupID, &m.Name, &members)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: group %s", apperrors.ErrNotFound, groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find group %s: %w", groupID, err)
	}
	if err := json.Unmarshal([]byte(members), &m.Members); err != nil {
		return nil, fmt.Errorf("%w: group %s has malformed members: %v", apperrors.ErrDependency, groupID, err)
	}

	group := mapping.ToDomainGroup(m)
	return &group, nil
}

func (r *SQLiteGroupRepository) SaveGroup(ctx context.Context, group domain.Group) error {
	m := mapping.ToModelGroup(group)
	members, err := json.Marshal(m.Members)
	if err != nil {
		return fmt.Errorf("failed to encode members of group %s: %w", m.GroupID, err)
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO "groups" (id, name, members) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, members = excluded.members`,
		m.GroupID, m.Name, string(members),
	)
	if err != nil {
		return fmt.Errorf("failed to save group %s: %w", m.GroupID, err)
	}
	return nil
}
