package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/splitsettle/internal/apperrors"
	"github.com/SscSPs/splitsettle/internal/core/domain"
	portsrepo "github.com/SscSPs/splitsettle/internal/core/ports/repositories"
	"github.com/SscSPs/splitsettle/internal/models"
	"github.com/SscSPs/splitsettle/internal/utils/mapping"
)

type PgxGroupRepository struct {
	BaseRepository
}

func newPgxGroupRepository(db *pgxpool.Pool) portsrepo.GroupRepositoryFacade {
	return &PgxGroupRepository{BaseRepository: BaseRepository{Pool: db}}
}

// Ensure PgxGroupRepository implements portsrepo.GroupRepositoryFacade
var _ portsrepo.GroupRepositoryFacade = (*PgxGroupRepository)(nil)

func (r *PgxGroupRepository) GetGroup(ctx context.Context, groupID string) (*domain.Group, error) {
	query := `SELECT id, name, members FROM groups WHERE id = $1;`

	var m models.Group
	err := r.Pool.QueryRow(ctx, query, groupID).Scan(&m.GroupID, &m.Name, &m.Members)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: group %s", apperrors.ErrNotFound, groupID)
		}
		return nil, fmt.Errorf("failed to find group %s: %w", groupID, err)
	}

	group := mapping.ToDomainGroup(m)
	return &group, nil
}

func (r *PgxGroupRepository) SaveGroup(ctx context.Context, group domain.Group) error {
	m := mapping.ToModelGroup(group)
	query := `
		INSERT INTO groups (id, name, members)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			members = EXCLUDED.members;
	`
	if _, err := r.Pool.Exec(ctx, query, m.GroupID, m.Name, m.Members); err != nil {
		return fmt.Errorf("failed to save group %s: %w", m.GroupID, err)
	}
	return nil
}
