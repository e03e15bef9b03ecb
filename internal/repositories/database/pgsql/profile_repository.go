package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/splitsettle/internal/core/domain"
	portsrepo "github.com/SscSPs/splitsettle/internal/core/ports/repositories"
	"github.com/SscSPs/splitsettle/internal/models"
	"github.com/SscSPs/splitsettle/internal/utils/mapping"
)

type PgxProfileRepository struct {
	BaseRepository
}

func newPgxProfileRepository(db *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxProfileRepository{BaseRepository: BaseRepository{Pool: db}}
}

// Ensure PgxProfileRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxProfileRepository)(nil)

func (r *PgxProfileRepository) FindUsersByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error) {
	users := make(map[string]domain.User, len(userIDs))
	if len(userIDs) == 0 {
		return users, nil
	}

	rows, err := r.Pool.Query(ctx, `SELECT id, name, email FROM profiles WHERE id = ANY($1);`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Profile
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email); err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		users[m.UserID] = mapping.ToDomainUser(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile rows: %w", err)
	}
	return users, nil
}

func (r *PgxProfileRepository) SaveUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelProfile(user)
	query := `
		INSERT INTO profiles (id, name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email;
	`
	if _, err := r.Pool.Exec(ctx, query, m.UserID, m.Name, m.Email); err != nil {
		return fmt.Errorf("failed to save profile %s: %w", m.UserID, err)
	}
	return nil
}
