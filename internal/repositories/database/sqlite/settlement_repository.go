package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/splitsettle/internal/apperrors"
	"github.com/SscSPs/splitsettle/internal/core/domain"
	portsrepo "github.com/SscSPs/splitsettle/internal/core/ports/repositories"
	"github.com/SscSPs/splitsettle/internal/models"
	"github.com/SscSPs/splitsettle/internal/utils/mapping"
	"github.com/SscSPs/splitsettle/internal/utils/pagination"
)

type SQLiteSettlementRepository struct {
	BaseRepository
}

func newSQLiteSettlementRepository(db *sql.DB) portsrepo.SettlementRepositoryFacade {
	return &SQLiteSettlementRepository{BaseRepository: BaseRepository{DB: db}}
}

// Ensure SQLiteSettlementRepository implements portsrepo.SettlementRepositoryFacade
var _ portsrepo.SettlementRepositoryFacade = (*SQLiteSettlementRepository)(nil)

const settlementColumns = `id, from_user, to_user, amount, group_id, status, notes,
	created_at, created_by, last_updated_at, last_updated_by`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSettlement(row rowScanner) (models.Settlement, error) {
	var m models.Settlement
	var createdAt, updatedAt string
	err := row.Scan(
		&m.SettlementID, &m.FromUser, &m.ToUser, &m.Amount, &m.GroupID, &m.Status, &m.Notes,
		&createdAt, &m.CreatedBy, &updatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return m, err
	}
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return m, err
	}
	m.LastUpdatedAt, err = parseTime(updatedAt)
	return m, err
}

func (r *SQLiteSettlementRepository) querySettlements(ctx context.Context, query string, args ...any) ([]domain.Settlement, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
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

func (r *SQLiteSettlementRepository) ListGroupSettlements(ctx context.Context, groupID string) ([]domain.Settlement, error) {
	query := `SELECT ` + settlementColumns + `
		FROM settlements
		WHERE group_id = ?
		ORDER BY created_at DESC, id DESC`
	return r.querySettlements(ctx, query, groupID)
}

func (r *SQLiteSettlementRepository) FindSettlementByID(ctx context.Context, settlementID string) (*domain.Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE id = ?`

	m, err := scanSettlement(r.DB.QueryRowContext(ctx, query, settlementID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
func (r *SQLiteSettlementRepository) ListSettlements(ctx context.Context, filter domain.SettlementFilter, limit int, nextToken *string) ([]domain.Settlement, *string, error) {
	var (
		conditions []string
		args       []any
	)

	if filter.GroupID != "" {
		conditions = append(conditions, "group_id = ?")
		args = append(args, filter.GroupID)
	}
	if filter.UserID != "" {
		switch filter.Direction {
		case domain.DirectionPaid:
			conditions = append(conditions, "from_user = ?")
			args = append(args, filter.UserID)
		case domain.DirectionReceived:
			conditions = append(conditions, "to_user = ?")
			args = append(args, filter.UserID)
		default:
			conditions = append(conditions, "(from_user = ? OR to_user = ?)")
			args = append(args, filter.UserID, filter.UserID)
		}
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if nextToken != nil && *nextToken != "" {
		createdAt, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
		}
		at := formatTime(createdAt)
		conditions = append(conditions, "(created_at < ? OR (created_at = ? AND id < ?))")
		args = append(args, at, at, id)
	}

	query := `SELECT ` + settlementColumns + ` FROM settlements`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	settlements, err := r.querySettlements(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	next := pagination.NextToken(settlements, limit, func(s domain.Settlement) (time.Time, string) {
		return s.CreatedAt, s.SettlementID
	})
	return settlements, next, nil
}

func (r *SQLiteSettlementRepository) SaveSettlement(ctx context.Context, settlement domain.Settlement) (string, error) {
	m := mapping.ToModelSettlement(settlement)
	query := `
		INSERT INTO settlements (` + settlementColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`
	var id string
	err := r.DB.QueryRowContext(ctx, query,
		m.SettlementID, m.FromUser, m.ToUser, m.Amount, m.GroupID, m.Status, m.Notes,
		formatTime(m.CreatedAt), m.CreatedBy, formatTime(m.LastUpdatedAt), m.LastUpdatedBy,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("%w: failed to insert settlement: %w", apperrors.ErrPersistence, err)
	}
	return id, nil
}

// UpdateSettlementStatus is a compare-and-set on the stored status.
func (r *SQLiteSettlementRepository) UpdateSettlementStatus(ctx context.Context, settlement domain.Settlement, previous domain.SettlementStatus) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE settlements
		SET status = ?, last_updated_at = ?, last_updated_by = ?
		WHERE id = ? AND status = ?`,
		string(settlement.Status()),
		formatTime(settlement.LastUpdatedAt),
		settlement.LastUpdatedBy,
		settlement.SettlementID,
		string(previous),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update settlement status: %w", apperrors.ErrPersistence, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to read affected rows: %w", apperrors.ErrPersistence, err)
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM settlements WHERE id = ?)`, settlement.SettlementID).Scan(&exists); err != nil {
		return fmt.Errorf("%w: failed to check settlement: %w", apperrors.ErrPersistence, err)
	}
	if !exists {
		return fmt.Errorf("%w: settlement %s", apperrors.ErrNotFound, settlement.SettlementID)
	}
	return fmt.Errorf("%w: settlement %s is no longer %s", apperrors.ErrInvalidTransition, settlement.SettlementID, previous)
}
