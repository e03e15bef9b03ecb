package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/splitsettle/internal/apperrors"
	"github.com/SscSPs/splitsettle/internal/core/domain"
	portsrepo "github.com/SscSPs/splitsettle/internal/core/ports/repositories"
	"github.com/SscSPs/splitsettle/internal/middleware"
	"github.com/SscSPs/splitsettle/internal/models"
	"github.com/SscSPs/splitsettle/internal/utils/mapping"
)

type PgxExpenseRepository struct {
	BaseRepository
}

func newPgxExpenseRepository(db *pgxpool.Pool) portsrepo.ExpenseRepositoryFacade {
	return &PgxExpenseRepository{BaseRepository: BaseRepository{Pool: db}}
}

// Ensure PgxExpenseRepository implements portsrepo.ExpenseRepositoryFacade
var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

const expenseColumns = `id, title, amount, paid_by, split_type, splits, category, date, group_id, is_personal, notes,
	created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxExpenseRepository) ListGroupExpenses(ctx context.Context, groupID string) ([]domain.Expense, error) {
	query := `SELECT ` + expenseColumns + `
		FROM expenses
		WHERE group_id = $1 AND is_personal = FALSE
		ORDER BY date, id;`

	rows, err := r.Pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses of group %s: %w", groupID, err)
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		expense, err := scanExpense(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense rows: %w", err)
	}
	return expenses, nil
}

// scanExpense reads one row. Undecodable JSON columns are logged, not returned.
func scanExpense(ctx context.Context, row pgx.Row) (domain.Expense, error) {
	var m models.Expense
	err := row.Scan(
		&m.ExpenseID, &m.Title, &m.Amount, &m.PaidBy, &m.SplitType, &m.Splits, &m.Category,
		&m.Date, &m.GroupID, &m.IsPersonal, &m.Notes,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Expense{}, err
	}
	expense, problem := mapping.ToDomainExpense(m)
	if problem != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Stored expense has undecodable JSON",
			slog.String("expense_id", m.ExpenseID),
			slog.String("error", problem.Error()))
	}
	return expense, nil
}

func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	row := r.Pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1;`, expenseID)
	expense, err := scanExpense(ctx, row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: expense %s", apperrors.ErrNotFound, expenseID)
		}
		return nil, fmt.Errorf("failed to find expense %s: %w", expenseID, err)
	}
	return &expense, nil
}

func (r *PgxExpenseRepository) DeleteExpense(ctx context.Context, expenseID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1;`, expenseID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete expense %s: %w", apperrors.ErrPersistence, expenseID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: expense %s", apperrors.ErrNotFound, expenseID)
	}
	return nil
}

// SaveExpenses upserts all expenses in one transaction.
func (r *PgxExpenseRepository) SaveExpenses(ctx context.Context, expenses []domain.Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			amount = EXCLUDED.amount,
			paid_by = EXCLUDED.paid_by,
			split_type = EXCLUDED.split_type,
			splits = EXCLUDED.splits,
			category = EXCLUDED.category,
			date = EXCLUDED.date,
			group_id = EXCLUDED.group_id,
			is_personal = EXCLUDED.is_personal,
			notes = EXCLUDED.notes,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`

	batch := &pgx.Batch{}
	for _, e := range expenses {
		m, err := mapping.ToModelExpense(e)
		if err != nil {
			return err
		}
		batch.Queue(query,
			m.ExpenseID, m.Title, m.Amount, m.PaidBy, m.SplitType, m.Splits, m.Category,
			m.Date, m.GroupID, m.IsPersonal, m.Notes,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save expenses: %w", err)
	}
	return r.Commit(ctx, tx)
}
