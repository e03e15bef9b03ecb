package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/splitsettle/internal/apperrors"
	"github.com/SscSPs/splitsettle/internal/core/domain"
	portsrepo "github.com/SscSPs/splitsettle/internal/core/ports/repositories"
	"github.com/SscSPs/splitsettle/internal/middleware"
	"github.com/SscSPs/splitsettle/internal/models"
	"github.com/SscSPs/splitsettle/internal/utils/mapping"
)

type SQLiteExpenseRepository struct {
	BaseRepository
}

func newSQLiteExpenseRepository(db *sql.DB) portsrepo.ExpenseRepositoryFacade {
	return &SQLiteExpenseRepository{BaseRepository: BaseRepository{DB: db}}
}

// Ensure SQLiteExpenseRepository implements portsrepo.ExpenseRepositoryFacade
var _ portsrepo.ExpenseRepositoryFacade = (*SQLiteExpenseRepository)(nil)

const expenseColumns = `id, title, amount, paid_by, split_type, splits, category, date, group_id, is_personal, notes,
	created_at, created_by, last_updated_at, last_updated_by`

func (r *SQLiteExpenseRepository) ListGroupExpenses(ctx context.Context, groupID string) ([]domain.Expense, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE group_id = ? AND is_personal = 0 ORDER BY date, id`,
		groupID,
	)
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
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// scanExpense reads one row. Undecodable JSON columns are logged, not returned.
func scanExpense(ctx context.Context, row rowScanner) (domain.Expense, error) {
	var m models.Expense
	var date, createdAt, updatedAt string
	var splits, category []byte
	if err := row.Scan(
		&m.ExpenseID, &m.Title, &m.Amount, &m.PaidBy, &m.SplitType, &splits, &category,
		&date, &m.GroupID, &m.IsPersonal, &m.Notes,
		&createdAt, &m.CreatedBy, &updatedAt, &m.LastUpdatedBy,
	); err != nil {
		return domain.Expense{}, err
	}
	// the driver reuses its buffers between rows
	m.Splits = append([]byte(nil), splits...)
	m.Category = append([]byte(nil), category...)

	var err error
	if m.Date, err = parseTime(date); err != nil {
		return domain.Expense{}, err
	}
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Expense{}, err
	}
	if m.LastUpdatedAt, err = parseTime(updatedAt); err != nil {
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

func (r *SQLiteExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, expenseID)
	expense, err := scanExpense(ctx, row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: expense %s", apperrors.ErrNotFound, expenseID)
		}
		return nil, fmt.Errorf("failed to find expense %s: %w", expenseID, err)
	}
	return &expense, nil
}

func (r *SQLiteExpenseRepository) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, expenseID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete expense %s: %w", apperrors.ErrPersistence, expenseID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrPersistence, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: expense %s", apperrors.ErrNotFound, expenseID)
	}
	return nil
}

// SaveExpenses upserts all expenses in one transaction.
func (r *SQLiteExpenseRepository) SaveExpenses(ctx context.Context, expenses []domain.Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(tx) }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			amount = excluded.amount,
			paid_by = excluded.paid_by,
			split_type = excluded.split_type,
			splits = excluded.splits,
			category = excluded.category,
			date = excluded.date,
			group_id = excluded.group_id,
			is_personal = excluded.is_personal,
			notes = excluded.notes,
			last_updated_at = excluded.last_updated_at,
			last_updated_by = excluded.last_updated_by`)
	if err != nil {
		return fmt.Errorf("failed to prepare expense insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range expenses {
		m, err := mapping.ToModelExpense(e)
		if err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx,
			m.ExpenseID, m.Title, m.Amount, m.PaidBy, m.SplitType, nullableText(m.Splits), nullableText(m.Category),
			formatTime(m.Date), m.GroupID, m.IsPersonal, m.Notes,
			formatTime(m.CreatedAt), m.CreatedBy, formatTime(m.LastUpdatedAt), m.LastUpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to save expense %s: %w", m.ExpenseID, err)
		}
	}
	return r.Commit(tx)
}

func nullableText(raw []byte) any {
	if raw == nil {
		return nil
	}
	return string(raw)
}
