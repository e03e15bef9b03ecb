package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/splitsettle/internal/apperrors"
	"github.com/SscSPs/splitsettle/internal/core/domain"
	portsrepo "github.com/SscSPs/splitsettle/internal/core/ports/repositories"
	"github.com/SscSPs/splitsettle/internal/models"
	"github.com/SscSPs/splitsettle/internal/utils/mapping"
	"github.com/SscSPs/splitsettle/internal/utils/pagination"
)

type PgxSettlementRepository struct {
	BaseRepository
}

func newPgxSettlementRepository(db *pgxpool.Pool) portsrepo.SettlementRepositoryFacade {
	return &PgxSettlementRepository{BaseRepository: BaseRepository{Pool: db}}
}

// Ensure PgxSettlementRepository implements portsrepo.SettlementRepositoryFacade
var _ portsrepo.SettlementRepositoryFacade = (*PgxSettlementRepository)(nil)

const settlementColumns = `id, from_user, to_user, amount, group_id, status, notes,
	created_at, created_by, last_updated_at, last_updated_by`

func scanSettlement(row pgx.Row) (models.Settlement, error) {
	var m models.Settlement
	err := row.Scan(
		&m.SettlementID, &m.FromUser, &m.ToUser, &m.Amount, &m.GroupID, &m.Status, &m.Notes,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxSettlementRepository) querySettlements(ctx context.Context, query string, args ...any) ([]domain.Settlement, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlements: %w", err)
	}
	defer rows.Close()

	modelSettlements := []models.Settlement{}
	for rows.Next() {
		m, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement row: %w", err)
		}
		modelSettlements = append(modelSettlements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settlement rows: %w", err)
	}
	return mapping.ToDomainSettlementSlice(modelSettlements)
}

func (r *PgxSettlementRepository) ListGroupSettlements(ctx context.Context, groupID string) ([]domain.Settlement, error) {
	query := `SELECT ` + settlementColumns + `
		FROM settlements
		WHERE group_id = $1
		ORDER BY created_at DESC, id DESC;`
	return r.querySettlements(ctx, query, groupID)
}

func (r *PgxSettlementRepository) FindSettlementByID(ctx context.Context, settlementID string) (*domain.Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE id = $1;`

	m, err := scanSettlement(r.Pool.QueryRow(ctx, query, settlementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: settlement %s", apperrors.ErrNotFound, settlementID)
		}
		return nil, fmt.Errorf("failed to find settlement %s: %w", settlementID, err)
	}
	s, err := mapping.ToDomainSettlement(m)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSettlements pages through settlements newest first using a keyset cursor on
// (created_at, id).
func (r *PgxSettlementRepository) ListSettlements(ctx context.Context, filter domain.SettlementFilter, limit int, nextToken *string) ([]domain.Settlement, *string, error) {
	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.GroupID != "" {
		conditions = append(conditions, "group_id = "+arg(filter.GroupID))
	}
	if filter.UserID != "" {
		switch filter.Direction {
		case domain.DirectionPaid:
			conditions = append(conditions, "from_user = "+arg(filter.UserID))
		case domain.DirectionReceived:
			conditions = append(conditions, "to_user = "+arg(filter.UserID))
		default:
			p := arg(filter.UserID)
			conditions = append(conditions, "(from_user = "+p+" OR to_user = "+p+")")
		}
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = "+arg(string(*filter.Status)))
	}
	if nextToken != nil && *nextToken != "" {
		createdAt, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
		}
		conditions = append(conditions, fmt.Sprintf("(created_at, id) < (%s, %s)", arg(createdAt), arg(id)))
	}

	query := `SELECT ` + settlementColumns + ` FROM settlements`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT " + arg(limit)

	settlements, err := r.querySettlements(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	next := pagination.NextToken(settlements, limit, func(s domain.Settlement) (time.Time, string) {
		return s.CreatedAt, s.SettlementID
	})
	return settlements, next, nil
}

func (r *PgxSettlementRepository) SaveSettlement(ctx context.Context, settlement domain.Settlement) (string, error) {
	m := mapping.ToModelSettlement(settlement)
	query := `
		INSERT INTO settlements (` + settlementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id;
	`
	var id string
	err := r.Pool.QueryRow(ctx, query,
		m.SettlementID, m.FromUser, m.ToUser, m.Amount, m.GroupID, m.Status, m.Notes,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("%w: failed to insert settlement: %w", apperrors.ErrPersistence, err)
	}
	return id, nil
}

// UpdateSettlementStatus is a compare-and-set on the stored status.
func (r *PgxSettlementRepository) UpdateSettlementStatus(ctx context.Context, settlement domain.Settlement, previous domain.SettlementStatus) error {
	query := `
		UPDATE settlements
		SET status = $1, last_updated_at = $2, last_updated_by = $3
		WHERE id = $4 AND status = $5;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		string(settlement.Status()),
		settlement.LastUpdatedAt,
		settlement.LastUpdatedBy,
		settlement.SettlementID,
		string(previous),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update settlement status: %w", apperrors.ErrPersistence, err)
	}
	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM settlements WHERE id = $1);`, settlement.SettlementID).Scan(&exists); err != nil {
			return fmt.Errorf("%w: failed to check settlement: %w", apperrors.ErrPersistence, err)
		}
		if !exists {
			return fmt.Errorf("%w: settlement %s", apperrors.ErrNotFound, settlement.SettlementID)
		}
		return fmt.Errorf("%w: settlement %s is no longer %s", apperrors.ErrInvalidTransition, settlement.SettlementID, previous)
	}
	return nil
}
