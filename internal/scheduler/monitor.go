package scheduler

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/thetask/internal/model"
	"github.com/sandeepkv93/thetask/internal/notify"
	"github.com/sirupsen/logrus"
)

const (
	DefaultInterval  = time.Minute
	DefaultThreshold = 30 * time.Minute

	lateSuffix = "-late"
)

var ErrMonitorStopped = errors.New("scheduler: monitor stopped")

type Kind string

const (
	KindApproaching Kind = "approaching"
	KindOverdue     Kind = "overdue"
)

type DeadlineEvent struct {
	Kind    Kind
	TaskID  string
	Title   string
	Due     time.Time
	Left    time.Duration
	FiredAt time.Time
}

// Notification renders the user-facing text for an event.
func (e DeadlineEvent) Notification() notify.Notification {
	switch e.Kind {
	case KindOverdue:
		return notify.Notification{
			Title: "Task overdue!",
			Body:  fmt.Sprintf("The task %q is past its deadline.", e.Title),
			Level: notify.LevelError,
			At:    e.FiredAt,
		}
	default:
		return notify.Notification{
			Title: "Task due soon!",
			Body:  fmt.Sprintf("The task %q is due soon (%d min).", e.Title, int(math.Round(e.Left.Minutes()))),
			Level: notify.LevelWarning,
			At:    e.FiredAt,
		}
	}
}

// Source supplies the snapshot to scan.
type Source interface {
	Snapshot() []model.Task
}

type SourceFunc func() []model.Task

func (f SourceFunc) Snapshot() []model.Task { return f() }

type Options struct {
	Interval  time.Duration
	Threshold time.Duration
	Buffer    int
	Notifier  notify.Notifier
	Logger    logrus.FieldLogger
	Now       func() time.Time
}

// Monitor polls the task collection and reports each deadline at most once per kind for as
// long as the Monitor value lives.
type Monitor struct {
	source    Source
	interval  time.Duration
	threshold time.Duration
	notifier  notify.Notifier
	log       logrus.FieldLogger
	now       func() time.Time

	mu       sync.Mutex
	notified map[string]bool
	out      chan DeadlineEvent
	wakeup   chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	stopped  bool
	dropped  uint64
}

func NewMonitor(source Source, opts Options) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 1
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Noop{}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Monitor{
		source:    source,
		interval:  opts.Interval,
		threshold: opts.Threshold,
		notifier:  opts.Notifier,
		log:       opts.Logger.WithField("component", "deadline_monitor"),
		now:       opts.Now,
		notified:  make(map[string]bool),
		out:       make(chan DeadlineEvent, opts.Buffer),
		wakeup:    make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

func (m *Monitor) C() <-chan DeadlineEvent {
	return m.out
}

// Start scans once right away and then on every interval tick.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started || m.stopped {
		return
	}
	m.started = true
	go m.loop()
}

func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.started || m.stopped {
		m.stopped = true
		m.mu.Unlock()
		return
	}
	m.stopped = true
	close(m.stopCh)
	m.mu.Unlock()
	<-m.doneCh
}

// Trigger requests an extra scan without waiting for the next tick.
func (m *Monitor) Trigger() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return ErrMonitorStopped
	}
	select {
	case m.wakeup <- struct{}{}:
	default:
	}
	return nil
}

func (m *Monitor) Dropped() uint64 {
	return atomic.LoadUint64(&m.dropped)
}

// Scan evaluates one snapshot at now and records what fired. It is safe to call directly.
func (m *Monitor) Scan(now time.Time) []DeadlineEvent {
	tasks := m.source.Snapshot()

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DeadlineEvent, 0)
	for _, t := range tasks {
		due, ok := t.Due()
		if !ok || t.Status == model.StatusDone {
			continue
		}
		left := due.Sub(now)
		switch {
		case left > 0 && left < m.threshold:
			if m.notified[t.ID] {
				continue
			}
			m.notified[t.ID] = true
			out = append(out, DeadlineEvent{Kind: KindApproaching, TaskID: t.ID, Title: t.Title, Due: due, Left: left, FiredAt: now})
		case left <= 0:
			key := t.ID + lateSuffix
			if m.notified[key] {
				continue
			}
			m.notified[key] = true
			out = append(out, DeadlineEvent{Kind: KindOverdue, TaskID: t.ID, Title: t.Title, Due: due, Left: left, FiredAt: now})
		}
	}
	return out
}

// Forget drops dedup entries for tasks that are no longer in live.
func (m *Monitor) Forget(live []model.Task) int {
	keep := make(map[string]bool, len(live)*2)
	for _, t := range live {
		keep[t.ID] = true
		keep[t.ID+lateSuffix] = true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key := range m.notified {
		if !keep[key] {
			delete(m.notified, key)
			removed++
		}
	}
	return removed
}

func (m *Monitor) loop() {
	defer close(m.doneCh)
	defer close(m.out)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.scanAndDeliver()
	for {
		select {
		case <-ticker.C:
			m.scanAndDeliver()
		case <-m.wakeup:
			m.scanAndDeliver()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) scanAndDeliver() {
	for _, ev := range m.Scan(m.now()) {
		entry := m.log.WithFields(logrus.Fields{"task_id": ev.TaskID, "kind": ev.Kind})
		if err := m.notifier.Send(ev.Notification()); err != nil {
			entry.WithError(err).Warn("desktop notification failed")
		}
		select {
		case m.out <- ev:
			entry.Debug("deadline event emitted")
		default:
			atomic.AddUint64(&m.dropped, 1)
			entry.Warn("deadline event dropped, consumer is behind")
		}
	}
}
