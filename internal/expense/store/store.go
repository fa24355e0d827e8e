package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/spendly/internal/database"
	"github.com/MrJamesThe3rd/spendly/internal/expense"
)

type Store struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

func New(db *sql.DB) *Store {
	return &Store{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

var expenseColumns = []string{
	"id", "user_id", "amount", "description", "occurred_on", "category", "amend_count", "created_at", "updated_at",
}

// scanExpense expects the columns in expenseColumns order.
func scanExpense(s scanner) (*expense.Expense, error) {
	var e expense.Expense

	var category sql.NullString

	if err := s.Scan(
		&e.ID, &e.UserID, &e.Amount, &e.Description, &e.OccurredOn, &category,
		&e.AmendCount, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	e.Category = category.String

	return &e, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) CreateExpense(ctx context.Context, e *expense.Expense) error {
	query := `
		INSERT INTO expenses (user_id, amount, description, occurred_on, category, amend_count, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, NOW())
		RETURNING id, amend_count, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		e.UserID,
		e.Amount,
		e.Description,
		e.OccurredOn,
		nullable(e.Category),
	).Scan(&e.ID, &e.AmendCount, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating expense: %w", database.Unavailable(err))
	}

	return nil
}

func (s *Store) GetExpense(ctx context.Context, userID string, id uuid.UUID) (*expense.Expense, error) {
	query, args, err := s.sb.
		Select(expenseColumns...).
		From("expenses").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	e, err := scanExpense(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, expense.ErrNotFound
		}

		return nil, fmt.Errorf("getting expense: %w", database.Unavailable(err))
	}

	return e, nil
}

func (s *Store) ListExpenses(ctx context.Context, userID string, filter expense.ListFilter) ([]*expense.Expense, error) {
	q := s.sb.
		Select(expenseColumns...).
		From("expenses").
		Where(sq.Eq{"user_id": userID})

	if filter.Category != nil {
		if *filter.Category == "" || *filter.Category == expense.Uncategorized {
			q = q.Where(sq.Eq{"category": nil})
		} else {
			q = q.Where(sq.Eq{"category": *filter.Category})
		}
	}

	if filter.StartDate != nil {
		q = q.Where(sq.GtOrEq{"occurred_on": *filter.StartDate})
	}

	if filter.EndDate != nil {
		q = q.Where(sq.LtOrEq{"occurred_on": *filter.EndDate})
	}

	dir := "DESC"
	if filter.Ascending {
		dir = "ASC"
	}

	switch filter.SortBy {
	case expense.SortByAmount:
		q = q.OrderBy("amount "+dir, "occurred_on DESC")
	default:
		q = q.OrderBy("occurred_on "+dir, "created_at "+dir)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", database.Unavailable(err))
	}
	defer rows.Close()

	var expenses []*expense.Expense

	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}

		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating expense rows: %w", database.Unavailable(err))
	}

	return expenses, nil
}

// AmendExpense is a compare-and-set on amend_count.
func (s *Store) AmendExpense(ctx context.Context, e *expense.Expense, prevAmendCount int) (bool, error) {
	query := `
		UPDATE expenses
		SET amount = $1, description = $2, occurred_on = $3, category = $4,
			amend_count = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8 AND amend_count = $9
	`

	res, err := s.db.ExecContext(ctx, query,
		e.Amount,
		e.Description,
		e.OccurredOn,
		nullable(e.Category),
		e.AmendCount,
		e.UpdatedAt,
		e.ID,
		e.UserID,
		prevAmendCount,
	)
	if err != nil {
		return false, fmt.Errorf("amending expense: %w", database.Unavailable(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}

	return n == 1, nil
}

func (s *Store) DeleteExpense(ctx context.Context, userID string, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting expense: %w", database.Unavailable(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return expense.ErrNotFound
	}

	return nil
}

// DeleteExpensesBefore runs as a single statement, so a sweep is all or nothing.
func (s *Store) DeleteExpensesBefore(ctx context.Context, userID string, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE user_id = $1 AND occurred_on < $2`, userID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting expired expenses: %w", database.Unavailable(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}

	return int(n), nil
}
