package scheduler

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/thetask/internal/model"
	"github.com/sandeepkv93/thetask/internal/notify"
	"github.com/sirupsen/logrus"
)

type fakeSource struct {
	mu    sync.Mutex
	tasks []model.Task
}

func (f *fakeSource) Snapshot() []model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		out = append(out, t.Clone())
	}
	return out
}

func (f *fakeSource) set(tasks ...model.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = tasks
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func dueTask(id string, due time.Time, status model.Status) model.Task {
	return model.Task{ID: id, Title: "task " + id, Priority: model.PriorityHigh, Status: status, CreatedAt: 1, DueDate: model.DueAt(due)}
}

func TestScanApproachingFiresOnce(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{}
	src.set(dueTask("a", now.Add(10*time.Minute), model.StatusTodo))
	m := NewMonitor(src, Options{Logger: quietLogger()})

	first := m.Scan(now)
	if len(first) != 1 || first[0].Kind != KindApproaching || first[0].TaskID != "a" {
		t.Fatalf("unexpected first scan: %#v", first)
	}
	for i := 1; i <= 10; i++ {
		if again := m.Scan(now.Add(time.Duration(i) * 5 * time.Second)); len(again) != 0 {
			t.Fatalf("rescan %d fired duplicates: %#v", i, again)
		}
	}
}

func TestScanOverdueFiresOnceWithoutApproaching(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{}
	src.set(dueTask("late", now.Add(-time.Second), model.StatusInProgress))
	m := NewMonitor(src, Options{Logger: quietLogger()})

	events := m.Scan(now)
	if len(events) != 1 || events[0].Kind != KindOverdue {
		t.Fatalf("expected exactly one overdue event, got %#v", events)
	}
	if again := m.Scan(now.Add(time.Minute)); len(again) != 0 {
		t.Fatalf("expected no further events, got %#v", again)
	}
}

func TestScanApproachingThenOverdueAreIndependent(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{}
	src.set(dueTask("a", now.Add(5*time.Minute), model.StatusTodo))
	m := NewMonitor(src, Options{Logger: quietLogger()})

	if ev := m.Scan(now); len(ev) != 1 || ev[0].Kind != KindApproaching {
		t.Fatalf("expected approaching, got %#v", ev)
	}
	if ev := m.Scan(now.Add(6 * time.Minute)); len(ev) != 1 || ev[0].Kind != KindOverdue {
		t.Fatalf("expected overdue after deadline, got %#v", ev)
	}
}

func TestScanSkipsDoneFarAndUndated(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{}
	src.set(
		dueTask("done", now.Add(-time.Hour), model.StatusDone),
		dueTask("far", now.Add(2*time.Hour), model.StatusTodo),
		dueTask("edge", now.Add(30*time.Minute), model.StatusTodo),
		model.Task{ID: "nodue", Title: "x", Status: model.StatusTodo, Priority: model.PriorityLow, CreatedAt: 1},
	)
	m := NewMonitor(src, Options{Logger: quietLogger()})
	if ev := m.Scan(now); len(ev) != 0 {
		t.Fatalf("expected no events, got %#v", ev)
	}
}

func TestForgetPrunesDeletedTasks(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{}
	src.set(dueTask("a", now.Add(-time.Minute), model.StatusTodo), dueTask("b", now.Add(time.Minute), model.StatusTodo))
	m := NewMonitor(src, Options{Logger: quietLogger()})
	if ev := m.Scan(now); len(ev) != 2 {
		t.Fatalf("expected two events, got %#v", ev)
	}
	if removed := m.Forget(src.Snapshot()[1:]); removed != 1 {
		t.Fatalf("expected one pruned key, got %d", removed)
	}
	if ev := m.Scan(now); len(ev) != 1 || ev[0].TaskID != "a" {
		t.Fatalf("pruned task should fire again when it reappears, got %#v", ev)
	}
}

func TestNotificationText(t *testing.T) {
	ev := DeadlineEvent{Kind: KindApproaching, Title: "Ship", Left: 9*time.Minute + 40*time.Second}
	n := ev.Notification()
	if n.Title != "Task due soon!" || n.Body != `The task "Ship" is due soon (10 min).` {
		t.Fatalf("unexpected approaching text: %#v", n)
	}
	ev.Kind = KindOverdue
	if n := ev.Notification(); n.Level != notify.LevelError {
		t.Fatalf("unexpected overdue notification: %#v", n)
	}
}

func TestStartScansImmediatelyAndNotifies(t *testing.T) {
	now := time.Now()
	src := &fakeSource{}
	src.set(dueTask("a", now.Add(10*time.Minute), model.StatusTodo))
	rec := &notify.Recorder{}
	gate := notify.NewGate(rec, true, nil)
	gate.RequestPermission()
	m := NewMonitor(src, Options{Interval: time.Hour, Buffer: 4, Notifier: gate, Logger: quietLogger()})
	m.Start()
	defer m.Stop()

	ev := waitEvent(t, m.C(), time.Second)
	if ev.TaskID != "a" || ev.Kind != KindApproaching {
		t.Fatalf("unexpected event: %#v", ev)
	}
	if len(rec.Sent()) != 1 {
		t.Fatalf("expected one desktop notification, got %d", len(rec.Sent()))
	}

	src.set(dueTask("a", now.Add(10*time.Minute), model.StatusTodo), dueTask("b", now.Add(-time.Minute), model.StatusTodo))
	if err := m.Trigger(); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	ev = waitEvent(t, m.C(), time.Second)
	if ev.TaskID != "b" || ev.Kind != KindOverdue {
		t.Fatalf("unexpected triggered event: %#v", ev)
	}
}

func TestIntervalTick(t *testing.T) {
	src := &fakeSource{}
	m := NewMonitor(src, Options{Interval: 20 * time.Millisecond, Buffer: 4, Logger: quietLogger()})
	m.Start()
	defer m.Stop()

	src.set(dueTask("late", time.Now().Add(-time.Second), model.StatusBlocked))
	ev := waitEvent(t, m.C(), time.Second)
	if ev.TaskID != "late" {
		t.Fatalf("unexpected event: %#v", ev)
	}
}

func TestDropsWhenConsumerIsSlow(t *testing.T) {
	now := time.Now()
	src := &fakeSource{}
	tasks := make([]model.Task, 0, 5)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		tasks = append(tasks, dueTask(id, now.Add(-time.Minute), model.StatusTodo))
	}
	src.set(tasks...)
	m := NewMonitor(src, Options{Interval: time.Hour, Buffer: 1, Logger: quietLogger()})
	m.Start()
	deadline := time.Now().Add(time.Second)
	for m.Dropped() < 4 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	m.Stop()
	if m.Dropped() != 4 {
		t.Fatalf("expected 4 dropped events, got %d", m.Dropped())
	}
}

func TestTriggerAfterStop(t *testing.T) {
	m := NewMonitor(&fakeSource{}, Options{Logger: quietLogger()})
	m.Start()
	m.Stop()
	m.Stop()
	if err := m.Trigger(); err != ErrMonitorStopped {
		t.Fatalf("expected ErrMonitorStopped, got %v", err)
	}
}

func waitEvent(t *testing.T, ch <-chan DeadlineEvent, timeout time.Duration) DeadlineEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
		return DeadlineEvent{}
	}
}
