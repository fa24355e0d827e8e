package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/spendly/internal/category"
	"github.com/MrJamesThe3rd/spendly/internal/database"
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

var categoryColumns = []string{"id", "user_id", "label", "color", "icon", "kind", "state", "created_at"}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(s scanner) (*category.Category, error) {
	var c category.Category
	if err := s.Scan(&c.ID, &c.UserID, &c.Label, &c.Color, &c.Icon, &c.Kind, &c.State, &c.CreatedAt); err != nil {
		return nil, err
	}

	return &c, nil
}

// SeedDefaults holds a per-user advisory lock for the transaction, so two first sign-ins
// racing each other seed exactly once.
func (s *Store) SeedDefaults(ctx context.Context, userID string, defaults []*category.Category) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", database.Unavailable(err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return 0, fmt.Errorf("locking user categories: %w", database.Unavailable(err))
	}

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE user_id = $1)`, userID).Scan(&exists); err != nil {
		return 0, fmt.Errorf("checking categories: %w", database.Unavailable(err))
	}

	if exists || len(defaults) == 0 {
		return 0, nil
	}

	q := s.sb.
		Insert("categories").
		Columns("user_id", "label", "color", "icon", "kind", "state").
		Suffix("RETURNING id, created_at")

	for _, c := range defaults {
		q = q.Values(userID, c.Label, c.Color, c.Icon, c.Kind, c.State)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("building query: %w", err)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("seeding categories: %w", database.Unavailable(err))
	}

	n := 0
	for rows.Next() {
		if err := rows.Scan(&defaults[n].ID, &defaults[n].CreatedAt); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning seeded category: %w", err)
		}

		defaults[n].UserID = userID
		n++
	}

	rows.Close()

	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterating seeded rows: %w", database.Unavailable(err))
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing seed: %w", database.Unavailable(err))
	}

	return n, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *category.Category) error {
	query := `
		INSERT INTO categories (user_id, label, color, icon, kind, state)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, c.UserID, c.Label, c.Color, c.Icon, c.Kind, c.State).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating category: %w", database.Unavailable(err))
	}

	return nil
}

func (s *Store) GetCategory(ctx context.Context, userID string, id uuid.UUID) (*category.Category, error) {
	query, args, err := s.sb.
		Select(categoryColumns...).
		From("categories").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	c, err := scanCategory(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, category.ErrNotFound
		}

		return nil, fmt.Errorf("getting category: %w", database.Unavailable(err))
	}

	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *category.Category) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET label = $1, color = $2, icon = $3 WHERE id = $4 AND user_id = $5`,
		c.Label, c.Color, c.Icon, c.ID, c.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating category: %w", database.Unavailable(err))
	}

	return expectOne(res)
}

func (s *Store) ListCategories(ctx context.Context, userID string, includeArchived bool) ([]*category.Category, error) {
	q := s.sb.
		Select(categoryColumns...).
		From("categories").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("kind ASC", "created_at ASC", "label ASC")

	if !includeArchived {
		q = q.Where(sq.Eq{"state": category.StateActive})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", database.Unavailable(err))
	}
	defer rows.Close()

	var categories []*category.Category

	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rows: %w", database.Unavailable(err))
	}

	return categories, nil
}

func (s *Store) SetState(ctx context.Context, userID string, id uuid.UUID, state category.State) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET state = $1 WHERE id = $2 AND user_id = $3`, state, id, userID)
	if err != nil {
		return fmt.Errorf("setting category state: %w", database.Unavailable(err))
	}

	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return category.ErrNotFound
	}

	return nil
}
