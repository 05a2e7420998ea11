package commands

import (
	"errors"
	"testing"

	"github.com/sandeepkv93/thetask/internal/model"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add pay rent tomorrow", TypeAdd},
		{"move in progress", TypeMove},
		{"mv done", TypeMove},
		{"filter login bug", TypeFilter},
		{"filter", TypeFilter},
		{"priority high", TypePriority},
		{"plan launch the beta", TypePlan},
		{"hint", TypeHint},
		{"theme", TypeTheme},
		{"theme light", TypeTheme},
		{"/delete", TypeDelete},
		{"cal", TypeCalendar},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseArguments(t *testing.T) {
	cmd, err := Parse("move in progress")
	if err != nil || cmd.Move.Status != model.StatusInProgress {
		t.Fatalf("move parse = %+v, %v", cmd.Move, err)
	}
	cmd, err = Parse("priority Todas")
	if err != nil || cmd.Priority.Filter != model.PriorityFilterAll {
		t.Fatalf("priority parse = %+v, %v", cmd.Priority, err)
	}
	cmd, err = Parse("theme")
	if err != nil || cmd.Theme.Theme != "" {
		t.Fatalf("bare theme should toggle, got %+v, %v", cmd.Theme, err)
	}
	cmd, err = Parse("filter   ")
	if err != nil || cmd.Filter.Query != "" {
		t.Fatalf("empty filter should clear, got %+v, %v", cmd.Filter, err)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		in   string
		code ErrorCode
	}{
		{"", ErrCodeEmptyInput},
		{"/", ErrCodeEmptyInput},
		{"/unknown do x", ErrCodeUnknownCommand},
		{"add", ErrCodeInvalidArgument},
		{"move sideways", ErrCodeInvalidArgument},
		{"priority urgent", ErrCodeInvalidArgument},
		{"plan", ErrCodeInvalidArgument},
		{"theme blue", ErrCodeInvalidArgument},
		{"delete now", ErrCodeInvalidArgument},
	}
	for _, tc := range cases {
		_, err := Parse(tc.in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != tc.code {
			t.Fatalf("parse %q: expected %s, got %v", tc.in, tc.code, err)
		}
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/add write docs")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Add: func(a AddArgs) (Result, error) {
			called = true
			if a.Title != "write docs" {
				t.Fatalf("unexpected title: %q", a.Title)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	for _, in := range []string{"hint", "calendar", "plan x", "theme dark"} {
		cmd, err := Parse(in)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		_, err = Execute(cmd, Handlers{})
		if !IsCode(err, ErrCodeHandlerMissing) {
			t.Fatalf("%q: expected missing handler error, got %v", in, err)
		}
	}
}
