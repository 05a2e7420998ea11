package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sandeepkv93/thetask/internal/model"
)

type document struct {
	Tasks []model.Task `json:"tasks"`
	Theme model.Theme  `json:"theme,omitempty"`
}

// JSONFile keeps the collection and the theme in one JSON document, replaced atomically on
// every write.
type JSONFile struct {
	mu   sync.Mutex
	path string
}

var (
	_ Backend = (*JSONFile)(nil)
	_ Lister  = (*JSONFile)(nil)
)

func NewJSONFile(path string) (*JSONFile, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("storage: json path is required")
	}
	return &JSONFile{path: trimmed}, nil
}

func (f *JSONFile) Path() string { return f.path }

func (f *JSONFile) Close() error { return nil }

func (f *JSONFile) LoadTasks(context.Context) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	return doc.Tasks, nil
}

// ListTasks applies the same filter and paging rules as the SQLite backend to the document.
func (f *JSONFile) ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error) {
	tasks, err := f.LoadTasks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.Status != "" && string(t.Status) != filter.Status {
			continue
		}
		if filter.Priority != "" && string(t.Priority) != filter.Priority {
			continue
		}
		out = append(out, t)
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []model.Task{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *JSONFile) SaveTasks(_ context.Context, tasks []model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	doc.Tasks = tasks
	return f.write(doc)
}

func (f *JSONFile) LoadTheme(context.Context) (model.Theme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil {
		return model.ThemeDark, err
	}
	if doc.Theme == "" {
		return model.ThemeDark, nil
	}
	if !doc.Theme.IsValid() {
		return model.ThemeDark, fmt.Errorf("%w: theme %q", ErrCorrupt, doc.Theme)
	}
	return doc.Theme, nil
}

func (f *JSONFile) SaveTheme(_ context.Context, theme model.Theme) error {
	if !theme.IsValid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidTheme, theme)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	doc.Theme = theme
	return f.write(doc)
}

// read returns an empty document when the file is missing or blank.
func (f *JSONFile) read() (document, error) {
	doc := document{Tasks: make([]model.Task, 0)}
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return doc, err
	}
	if strings.TrimSpace(string(raw)) == "" {
		return doc, nil
	}
	var parsed document
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return doc, fmt.Errorf("%w: %s: %v", ErrCorrupt, f.path, err)
	}
	if parsed.Tasks == nil {
		parsed.Tasks = make([]model.Task, 0)
	}
	for _, t := range parsed.Tasks {
		if err := t.Validate(); err != nil {
			return doc, fmt.Errorf("%w: %s: %v", ErrCorrupt, f.path, err)
		}
	}
	return parsed, nil
}

func (f *JSONFile) write(doc document) error {
	dir := filepath.Dir(f.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if doc.Tasks == nil {
		doc.Tasks = make([]model.Task, 0)
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
