package storage

import (
	"context"
	"errors"

	"github.com/sandeepkv93/thetask/internal/model"
)

var (
	ErrNotFound = errors.New("storage: not found")
	// ErrCorrupt means stored data exists but cannot be decoded.
	ErrCorrupt = errors.New("storage: corrupt data")
)

const settingTheme = "theme"

// Backend persists the whole task collection and the theme preference.
type Backend interface {
	LoadTasks(ctx context.Context) ([]model.Task, error)
	SaveTasks(ctx context.Context, tasks []model.Task) error
	LoadTheme(ctx context.Context) (model.Theme, error)
	SaveTheme(ctx context.Context, theme model.Theme) error
	Close() error
}

// Lister serves filtered, paged reads straight from storage.
type Lister interface {
	ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error)
}
