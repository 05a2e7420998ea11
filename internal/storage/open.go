package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	KindSQLite = "sqlite"
	KindJSON   = "json"
)

// Open returns the backend named by kind, creating parent directories as needed.
func Open(kind, path string) (Backend, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create data dir: %w", err)
		}
	}
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindSQLite:
		return OpenSQLite(path)
	case KindJSON:
		return NewJSONFile(path)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", kind)
	}
}
