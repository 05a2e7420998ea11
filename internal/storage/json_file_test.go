package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sandeepkv93/thetask/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFileMissingIsEmpty(t *testing.T) {
	f, err := NewJSONFile(filepath.Join(t.TempDir(), "board.json"))
	require.NoError(t, err)

	tasks, err := f.LoadTasks(t.Context())
	require.NoError(t, err)
	assert.Empty(t, tasks)

	theme, err := f.LoadTheme(t.Context())
	require.NoError(t, err)
	assert.Equal(t, model.ThemeDark, theme)
}

func TestJSONFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "board.json")
	f, err := NewJSONFile(path)
	require.NoError(t, err)

	want := []model.Task{
		sampleTask("b", "second", model.StatusDone),
		sampleTask("a", "first", model.StatusTodo),
	}
	require.NoError(t, f.SaveTasks(t.Context(), want))
	require.NoError(t, f.SaveTheme(t.Context(), model.ThemeLight))

	got, err := f.LoadTasks(t.Context())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	theme, err := f.LoadTheme(t.Context())
	require.NoError(t, err)
	assert.Equal(t, model.ThemeLight, theme)

	assert.NoFileExists(t, path+".tmp")
	assert.FileExists(t, path)
}

func TestJSONFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tasks": [`), 0o644))
	f, err := NewJSONFile(path)
	require.NoError(t, err)

	_, err = f.LoadTasks(t.Context())
	assert.True(t, errors.Is(err, ErrCorrupt), "expected ErrCorrupt, got %v", err)

	// A write after corruption replaces the document.
	require.NoError(t, f.SaveTasks(t.Context(), []model.Task{sampleTask("a", "fresh", model.StatusTodo)}))
	tasks, err := f.LoadTasks(t.Context())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "fresh", tasks[0].Title)
}

func TestJSONFileInvalidTaskIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tasks":[{"id":"x","title":"t","priority":"Low","status":"archived","createdAt":1}]}`), 0o644))
	f, err := NewJSONFile(path)
	require.NoError(t, err)
	_, err = f.LoadTasks(t.Context())
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestOpenUnknownKind(t *testing.T) {
	_, err := Open("redis", filepath.Join(t.TempDir(), "x"))
	assert.Error(t, err)
}

func TestJSONFileListTasksMatchesSQLiteRules(t *testing.T) {
	f, err := NewJSONFile(filepath.Join(t.TempDir(), "board.json"))
	require.NoError(t, err)
	high := sampleTask("b", "b", model.StatusTodo)
	high.Priority = model.PriorityHigh
	tasks := []model.Task{
		sampleTask("c", "c", model.StatusDone),
		high,
		sampleTask("a", "a", model.StatusTodo),
	}
	require.NoError(t, f.SaveTasks(t.Context(), tasks))

	todo, err := f.ListTasks(t.Context(), TaskListFilter{Status: string(model.StatusTodo)})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, []string{todo[0].ID, todo[1].ID})

	onlyHigh, err := f.ListTasks(t.Context(), TaskListFilter{Priority: string(model.PriorityHigh)})
	require.NoError(t, err)
	require.Len(t, onlyHigh, 1)
	assert.Equal(t, "b", onlyHigh[0].ID)

	page, err := f.ListTasks(t.Context(), TaskListFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].ID)

	past, err := f.ListTasks(t.Context(), TaskListFilter{Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, past)
}
