package model

import (
	"reflect"
	"testing"
	"time"
)

func TestFromDraftDefaults(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := FromDraft(TaskDraft{Priority: "sometime"}, now)
	if task.Title != DefaultDraftName || task.Priority != PriorityMedium || task.Status != StatusTodo {
		t.Fatalf("unexpected defaults: %#v", task)
	}
	if !reflect.DeepEqual(task.Tags, []string{AIGeneratedTag}) {
		t.Fatalf("expected ai tag, got %#v", task.Tags)
	}
	if task.CreatedAt != now.UnixMilli() || task.ID == "" {
		t.Fatalf("unexpected identity: %#v", task)
	}
}

func TestFromDraftsKeepsOrderAndTags(t *testing.T) {
	now := time.Now()
	tasks := FromDrafts([]TaskDraft{
		{Title: "Design schema", Priority: "Alta", Tags: []string{"db", " "}},
		{Title: "Write API", Priority: "Crítica"},
	}, now)
	if len(tasks) != 2 || tasks[0].Title != "Design schema" || tasks[1].Title != "Write API" {
		t.Fatalf("unexpected drafts: %#v", tasks)
	}
	if tasks[0].Priority != PriorityHigh || !reflect.DeepEqual(tasks[0].Tags, []string{"db"}) {
		t.Fatalf("unexpected first task: %#v", tasks[0])
	}
	if tasks[1].Priority != PriorityCritical || tasks[1].Tags[0] != AIGeneratedTag {
		t.Fatalf("unexpected second task: %#v", tasks[1])
	}
	if tasks[0].ID == tasks[1].ID {
		t.Fatal("expected unique ids")
	}
}
