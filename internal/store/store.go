// Package store owns the task collection. Readers get deep-copied snapshots; every change goes
// through a named operation and is written to the backend before the call returns.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sandeepkv93/thetask/internal/model"
	"github.com/sandeepkv93/thetask/internal/storage"
	"github.com/sirupsen/logrus"
)

var (
	ErrTaskNotFound = errors.New("store: task not found")
	ErrDuplicateID  = errors.New("store: duplicate task id")
)

type Store struct {
	mu      sync.Mutex
	backend storage.Backend
	log     logrus.FieldLogger
	tasks   []model.Task
	theme   model.Theme
	subs    []chan struct{}
}

// Open loads the collection and theme. Corrupt stored data is logged and replaced by an
// empty collection; any other load error is returned.
func Open(ctx context.Context, backend storage.Backend, log logrus.FieldLogger) (*Store, error) {
	if backend == nil {
		return nil, errors.New("store: nil backend")
	}
	if log == nil {
		log = logrus.New()
	}
	log = log.WithField("component", "store")

	tasks, err := backend.LoadTasks(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrCorrupt) {
			return nil, fmt.Errorf("store: load tasks: %w", err)
		}
		log.WithError(err).Warn("stored tasks unreadable, starting with an empty board")
		tasks = nil
	}
	theme, err := backend.LoadTheme(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrCorrupt) {
			return nil, fmt.Errorf("store: load theme: %w", err)
		}
		log.WithError(err).Warn("stored theme unreadable, using dark")
		theme = model.ThemeDark
	}
	if !theme.IsValid() {
		theme = model.ThemeDark
	}

	s := &Store{backend: backend, log: log, theme: theme, tasks: make([]model.Task, 0, len(tasks))}
	for _, t := range tasks {
		s.tasks = append(s.tasks, t.Clone())
	}
	log.WithField("tasks", len(s.tasks)).Debug("task store loaded")
	return s, nil
}

// Snapshot returns a deep copy of the collection in display order.
func (s *Store) Snapshot() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.tasks)
}

func (s *Store) Get(id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return s.tasks[i].Clone(), nil
}

// Create prepends a new task.
func (s *Store) Create(ctx context.Context, task model.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(task.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, task.ID)
	}
	s.tasks = append([]model.Task{task.Clone()}, s.tasks...)
	return s.commit(ctx, "create", task.ID)
}

// Update replaces the task with the same id in place; an unknown id is prepended. The
// stored createdAt always wins over the incoming one.
func (s *Store) Update(ctx context.Context, task model.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(task.ID)
	if i < 0 {
		s.tasks = append([]model.Task{task.Clone()}, s.tasks...)
		return s.commit(ctx, "create", task.ID)
	}
	next := task.Clone()
	next.CreatedAt = s.tasks[i].CreatedAt
	s.tasks[i] = next
	return s.commit(ctx, "update", task.ID)
}

// AddBatch prepends tasks as a group, keeping their relative order.
func (s *Store) AddBatch(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return err
		}
		if seen[t.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
		}
		seen[t.ID] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tasks {
		if s.indexOf(t.ID) >= 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
		}
	}
	next := make([]model.Task, 0, len(tasks)+len(s.tasks))
	next = append(next, cloneAll(tasks)...)
	next = append(next, s.tasks...)
	s.tasks = next
	return s.commit(ctx, "add_batch", fmt.Sprintf("%d tasks", len(tasks)))
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	return s.commit(ctx, "delete", id)
}

func (s *Store) SetStatus(ctx context.Context, id string, status model.Status) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if s.tasks[i].Status == status {
		return nil
	}
	s.tasks[i].Status = status
	return s.commit(ctx, "set_status", id)
}

// ApplyDrag moves the dragged task to the destination column. It reports whether anything
// changed; cancelled drops and drops on the starting slot leave the store untouched.
func (s *Store) ApplyDrag(ctx context.Context, drag model.DragResult) (bool, error) {
	status, ok := drag.Target()
	if !ok {
		return false, nil
	}
	before, err := s.Get(drag.TaskID)
	if err != nil {
		return false, err
	}
	if before.Status == status {
		return false, nil
	}
	if err := s.SetStatus(ctx, drag.TaskID, status); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Theme() model.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

func (s *Store) SetTheme(ctx context.Context, theme model.Theme) error {
	if !theme.IsValid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidTheme, theme)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = theme
	if err := s.backend.SaveTheme(ctx, theme); err != nil {
		s.log.WithError(err).Error("persist theme failed")
		return fmt.Errorf("store: persist theme: %w", err)
	}
	return nil
}

// Subscribe returns a channel that receives a signal after each mutation. Signals coalesce,
// so a slow reader sees at least one pending signal rather than one per change.
func (s *Store) Subscribe() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 1)
	s.subs = append(s.subs, ch)
	return ch
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
	return s.backend.Close()
}

// commit writes the full collection. The in-memory change stays applied if the write fails.
// Callers hold s.mu.
func (s *Store) commit(ctx context.Context, op, subject string) error {
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	entry := s.log.WithFields(logrus.Fields{"op": op, "subject": subject, "tasks": len(s.tasks)})
	if err := s.backend.SaveTasks(ctx, cloneAll(s.tasks)); err != nil {
		entry.WithError(err).Error("persist tasks failed")
		return fmt.Errorf("store: persist: %w", err)
	}
	entry.Debug("tasks persisted")
	return nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Clone())
	}
	return out
}
