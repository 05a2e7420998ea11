package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandeepkv93/thetask/internal/model"
	"github.com/sandeepkv93/thetask/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBackend struct {
	tasks   []model.Task
	theme   model.Theme
	loadErr error
	saveErr error
	saves   int
}

func (m *memoryBackend) LoadTasks(context.Context) ([]model.Task, error) {
	return m.tasks, m.loadErr
}

func (m *memoryBackend) SaveTasks(_ context.Context, tasks []model.Task) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.tasks = tasks
	return nil
}

func (m *memoryBackend) LoadTheme(context.Context) (model.Theme, error) {
	if m.theme == "" {
		return model.ThemeDark, nil
	}
	return m.theme, nil
}

func (m *memoryBackend) SaveTheme(_ context.Context, theme model.Theme) error {
	m.theme = theme
	return nil
}

func (m *memoryBackend) Close() error { return nil }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTask(id string) model.Task {
	return model.Task{
		ID:        id,
		Title:     "task " + id,
		Priority:  model.PriorityMedium,
		Status:    model.StatusTodo,
		Tags:      []string{},
		CreatedAt: time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC).UnixMilli(),
	}
}

func openMemory(t *testing.T, b *memoryBackend) *Store {
	t.Helper()
	s, err := Open(t.Context(), b, quietLogger())
	require.NoError(t, err)
	return s
}

func ids(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestCreatePrependsAndPersists(t *testing.T) {
	b := &memoryBackend{}
	s := openMemory(t, b)

	require.NoError(t, s.Create(t.Context(), newTask("a")))
	require.NoError(t, s.Create(t.Context(), newTask("b")))

	assert.Equal(t, []string{"b", "a"}, ids(s.Snapshot()))
	assert.Equal(t, []string{"b", "a"}, ids(b.tasks))
	assert.Equal(t, 2, b.saves)

	err := s.Create(t.Context(), newTask("a"))
	assert.ErrorIs(t, err, ErrDuplicateID)

	bad := newTask("c")
	bad.Title = ""
	assert.ErrorIs(t, s.Create(t.Context(), bad), model.ErrTitleRequired)
}

func TestUpdateReplacesInPlaceOrInserts(t *testing.T) {
	s := openMemory(t, &memoryBackend{})
	require.NoError(t, s.Create(t.Context(), newTask("a")))
	require.NoError(t, s.Create(t.Context(), newTask("b")))

	edited := newTask("a")
	edited.Title = "renamed"
	edited.CreatedAt = 42
	require.NoError(t, s.Update(t.Context(), edited))

	snap := s.Snapshot()
	assert.Equal(t, []string{"b", "a"}, ids(snap))
	assert.Equal(t, "renamed", snap[1].Title)
	assert.Equal(t, newTask("a").CreatedAt, snap[1].CreatedAt, "createdAt is immutable")

	require.NoError(t, s.Update(t.Context(), newTask("c")))
	assert.Equal(t, []string{"c", "b", "a"}, ids(s.Snapshot()))
}

func TestDeleteAndSetStatus(t *testing.T) {
	s := openMemory(t, &memoryBackend{})
	require.NoError(t, s.Create(t.Context(), newTask("a")))

	require.NoError(t, s.SetStatus(t.Context(), "a", model.StatusBlocked))
	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, model.StatusBlocked, got.Status)

	assert.ErrorIs(t, s.SetStatus(t.Context(), "a", model.Status("nope")), model.ErrInvalidStatus)
	assert.ErrorIs(t, s.SetStatus(t.Context(), "zzz", model.StatusDone), ErrTaskNotFound)

	require.NoError(t, s.Delete(t.Context(), "a"))
	assert.Empty(t, s.Snapshot())
	assert.ErrorIs(t, s.Delete(t.Context(), "a"), ErrTaskNotFound)
}

func TestAddBatchKeepsBatchOrder(t *testing.T) {
	s := openMemory(t, &memoryBackend{})
	require.NoError(t, s.Create(t.Context(), newTask("old")))
	require.NoError(t, s.AddBatch(t.Context(), []model.Task{newTask("x"), newTask("y")}))
	assert.Equal(t, []string{"x", "y", "old"}, ids(s.Snapshot()))

	err := s.AddBatch(t.Context(), []model.Task{newTask("z"), newTask("old")})
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, []string{"x", "y", "old"}, ids(s.Snapshot()))
}

func TestSnapshotIsIsolated(t *testing.T) {
	s := openMemory(t, &memoryBackend{})
	task := newTask("a")
	task.Tags = []string{"one"}
	require.NoError(t, s.Create(t.Context(), task))

	snap := s.Snapshot()
	snap[0].Title = "mutated"
	snap[0].Tags[0] = "mutated"

	fresh := s.Snapshot()
	assert.Equal(t, "task a", fresh[0].Title)
	assert.Equal(t, "one", fresh[0].Tags[0])
}

func TestApplyDrag(t *testing.T) {
	b := &memoryBackend{}
	s := openMemory(t, b)
	require.NoError(t, s.Create(t.Context(), newTask("a")))
	before := b.saves

	changed, err := s.ApplyDrag(t.Context(), model.DragResult{TaskID: "a", Source: model.BoardLocation{Column: model.StatusTodo}})
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = s.ApplyDrag(t.Context(), model.DragResult{
		TaskID:      "a",
		Source:      model.BoardLocation{Column: model.StatusTodo, Index: 0},
		Destination: &model.BoardLocation{Column: model.StatusTodo, Index: 0},
	})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, before, b.saves, "no-op drags must not write")

	changed, err = s.ApplyDrag(t.Context(), model.DragResult{
		TaskID:      "a",
		Source:      model.BoardLocation{Column: model.StatusTodo, Index: 0},
		Destination: &model.BoardLocation{Column: model.StatusDone, Index: 3},
	})
	require.NoError(t, err)
	assert.True(t, changed)
	got, _ := s.Get("a")
	assert.Equal(t, model.StatusDone, got.Status)
}

func TestOpenCorruptDegradesToEmpty(t *testing.T) {
	b := &memoryBackend{loadErr: fmt.Errorf("%w: bad json", storage.ErrCorrupt)}
	s, err := Open(t.Context(), b, quietLogger())
	require.NoError(t, err)
	assert.Empty(t, s.Snapshot())

	_, err = Open(t.Context(), &memoryBackend{loadErr: errors.New("disk gone")}, quietLogger())
	assert.Error(t, err)
}

func TestOpenCorruptJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0o644))
	backend, err := storage.NewJSONFile(path)
	require.NoError(t, err)

	s, err := Open(t.Context(), backend, quietLogger())
	require.NoError(t, err)
	assert.Empty(t, s.Snapshot())
}

func TestPersistFailureKeepsMemoryChange(t *testing.T) {
	b := &memoryBackend{saveErr: errors.New("read-only")}
	s := openMemory(t, b)
	err := s.Create(t.Context(), newTask("a"))
	assert.Error(t, err)
	assert.Equal(t, []string{"a"}, ids(s.Snapshot()))
}

func TestThemePersists(t *testing.T) {
	b := &memoryBackend{theme: model.ThemeLight}
	s := openMemory(t, b)
	assert.Equal(t, model.ThemeLight, s.Theme())
	require.NoError(t, s.SetTheme(t.Context(), s.Theme().Toggle()))
	assert.Equal(t, model.ThemeDark, b.theme)
	assert.ErrorIs(t, s.SetTheme(t.Context(), "blue"), model.ErrInvalidTheme)
}

func TestSubscribeSignalsOnMutation(t *testing.T) {
	s := openMemory(t, &memoryBackend{})
	ch := s.Subscribe()
	require.NoError(t, s.Create(t.Context(), newTask("a")))
	require.NoError(t, s.Create(t.Context(), newTask("b")))
	select {
	case <-ch:
	default:
		t.Fatal("expected change signal")
	}
	require.NoError(t, s.Close())
	_, open := <-ch
	assert.False(t, open)
}

// The store must behave like a plain slice driven by the same operations.
func TestRandomSequenceMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	b := &memoryBackend{}
	s := openMemory(t, b)
	ref := make([]model.Task, 0)
	next := 0

	refIndex := func(id string) int {
		for i, t := range ref {
			if t.ID == id {
				return i
			}
		}
		return -1
	}

	for step := 0; step < 400; step++ {
		switch op := rng.Intn(4); {
		case op == 0 || len(ref) == 0:
			task := newTask(fmt.Sprintf("t%d", next))
			next++
			require.NoError(t, s.Create(t.Context(), task))
			ref = append([]model.Task{task}, ref...)
		case op == 1:
			target := ref[rng.Intn(len(ref))]
			target.Title = fmt.Sprintf("edit %d", step)
			require.NoError(t, s.Update(t.Context(), target))
			ref[refIndex(target.ID)] = target
		case op == 2:
			target := ref[rng.Intn(len(ref))]
			require.NoError(t, s.Delete(t.Context(), target.ID))
			i := refIndex(target.ID)
			ref = append(ref[:i], ref[i+1:]...)
		default:
			target := ref[rng.Intn(len(ref))]
			status := model.Statuses()[rng.Intn(4)]
			require.NoError(t, s.SetStatus(t.Context(), target.ID, status))
			ref[refIndex(target.ID)].Status = status
		}
	}

	assert.Equal(t, ref, s.Snapshot())
	assert.Equal(t, ref, b.tasks)
}
