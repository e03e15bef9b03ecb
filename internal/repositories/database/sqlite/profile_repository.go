package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/SscSPs/splitsettle/internal/core/domain"
	portsrepo "github.com/SscSPs/splitsettle/internal/core/ports/repositories"
	"github.com/SscSPs/splitsettle/internal/models"
	"github.com/SscSPs/splitsettle/internal/utils/mapping"
)

type SQLiteProfileRepository struct {
	BaseRepository
}

func newSQLiteProfileRepository(db *sql.DB) portsrepo.UserRepositoryFacade {
	return &SQLiteProfileRepository{BaseRepository: BaseRepository{DB: db}}
}

// Ensure SQLiteProfileRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*SQLiteProfileRepository)(nil)

func (r *SQLiteProfileRepository) FindUsersByIDs(ctx context.Context, userIDs []string) (map[string]domain.User, error) {
	users := make(map[string]domain.User, len(userIDs))
	if len(userIDs) == 0 {
		return users, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(userIDs)), ", ")
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT id, name, email FROM profiles WHERE id IN (`+placeholders+`)`, args...)
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

func (r *SQLiteProfileRepository) SaveUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelProfile(user)
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO profiles (id, name, email)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email`,
		m.UserID, m.Name, m.Email,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", m.UserID, err)
	}
	return nil
}
