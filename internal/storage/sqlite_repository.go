package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sandeepkv93/thetask/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

const taskColumns = `id, position, title, description, priority, status, tags, created_at, due_at`

type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ Backend = (*SQLiteRepository)(nil)
	_ Lister  = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens the database file and brings the schema up to date.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) LoadTasks(ctx context.Context) ([]model.Task, error) {
	return r.ListTasks(ctx, TaskListFilter{})
}

// SaveTasks replaces the stored collection; slice order becomes position order.
func (r *SQLiteRepository) SaveTasks(ctx context.Context, tasks []model.Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tasks {
		rec, err := recordFromTask(t, int64(i))
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, insertArgs(rec)...); err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) LoadTheme(ctx context.Context) (model.Theme, error) {
	s, err := r.GetSetting(ctx, settingTheme)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.ThemeDark, nil
		}
		return "", err
	}
	theme, err := model.ParseTheme(s.Value)
	if err != nil {
		return model.ThemeDark, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return theme, nil
}

func (r *SQLiteRepository) SaveTheme(ctx context.Context, theme model.Theme) error {
	if !theme.IsValid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidTheme, theme)
	}
	return r.SetSetting(ctx, settingTheme, string(theme))
}

// ListTasks reads tasks in collection order, narrowed by status and priority and paged by
// limit and offset.
func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	args := make([]any, 0, 4)
	where := make([]string, 0, 2)
	if filter.Status != "" {
		where = append(where, `status = ?`)
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		where = append(where, `priority = ?`)
		args = append(args, filter.Priority)
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY position ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		rec, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		task, convErr := rec.toTask()
		if convErr != nil {
			return nil, convErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (Setting, error) {
	var out Setting
	var updated string
	err := r.db.QueryRowContext(ctx, `SELECT key, value, updated_at FROM settings WHERE key = ?`, key).
		Scan(&out.Key, &out.Value, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Setting{}, ErrNotFound
		}
		return Setting{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return Setting{}, err
	}
	out.UpdatedAt = updatedAt
	return out, nil
}

func (r *SQLiteRepository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, mustTime(time.Now()),
	)
	return err
}

func insertArgs(rec TaskRecord) []any {
	return []any{
		rec.ID, rec.Position, rec.Title, rec.Description, rec.Priority, rec.Status,
		rec.Tags, rec.CreatedAt, nullInt(rec.DueAt),
	}
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	} else if offset > 0 {
		sql += " LIMIT -1"
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (TaskRecord, error) {
	var out TaskRecord
	var due sql.NullInt64
	if err := s.Scan(&out.ID, &out.Position, &out.Title, &out.Description, &out.Priority, &out.Status, &out.Tags, &out.CreatedAt, &due); err != nil {
		return TaskRecord{}, err
	}
	if due.Valid {
		v := due.Int64
		out.DueAt = &v
	}
	return out, nil
}
