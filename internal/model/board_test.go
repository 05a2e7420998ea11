package model

import "testing"

func TestDragTarget(t *testing.T) {
	src := BoardLocation{Column: StatusTodo, Index: 2}

	if _, ok := (DragResult{TaskID: "t", Source: src}).Target(); ok {
		t.Fatal("drop outside any column must be a no-op")
	}
	if _, ok := (DragResult{TaskID: "t", Source: src, Destination: &BoardLocation{Column: StatusTodo, Index: 2}}).Target(); ok {
		t.Fatal("drop on the starting slot must be a no-op")
	}

	status, ok := (DragResult{TaskID: "t", Source: src, Destination: &BoardLocation{Column: StatusTodo, Index: 0}}).Target()
	if !ok || status != StatusTodo {
		t.Fatalf("reorder in same column should report the column, got %q %v", status, ok)
	}

	status, ok = (DragResult{TaskID: "t", Source: src, Destination: &BoardLocation{Column: StatusDone, Index: 0}}).Target()
	if !ok || status != StatusDone {
		t.Fatalf("expected done, got %q %v", status, ok)
	}
}

func TestColumnsAndLocate(t *testing.T) {
	tasks := []Task{
		{ID: "a", Status: StatusTodo},
		{ID: "b", Status: StatusDone},
		{ID: "c", Status: StatusTodo},
	}
	cols := Columns(tasks)
	if len(cols[StatusTodo]) != 2 || cols[StatusTodo][1].ID != "c" {
		t.Fatalf("unexpected todo column: %#v", cols[StatusTodo])
	}
	if len(cols[StatusBlocked]) != 0 {
		t.Fatalf("expected empty blocked column")
	}

	loc, ok := Locate(tasks, "c")
	if !ok || loc.Column != StatusTodo || loc.Index != 1 {
		t.Fatalf("unexpected location: %#v %v", loc, ok)
	}
	if _, ok := Locate(tasks, "missing"); ok {
		t.Fatal("expected missing task not found")
	}
}
