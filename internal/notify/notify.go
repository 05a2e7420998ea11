// Package notify delivers desktop notifications. Delivery is gated by a permission that is
// requested once; without it every send is a silent no-op.
package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notification struct {
	Title string
	Body  string
	Level Level
	At    time.Time
}

type Notifier interface {
	Send(Notification) error
}

type Noop struct{}

func (Noop) Send(Notification) error { return nil }

// Exec shells out to notify-send on Linux and osascript on macOS.
type Exec struct{}

func (Exec) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", "--app-name=thetask", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

// Available reports whether the platform command Exec relies on is installed.
func (Exec) Available() bool {
	switch runtime.GOOS {
	case "linux":
		_, err := exec.LookPath("notify-send")
		return err == nil
	case "darwin":
		_, err := exec.LookPath("osascript")
		return err == nil
	default:
		return false
	}
}

var appleScriptEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// escapeAppleScript makes s safe inside a double-quoted AppleScript string literal.
func escapeAppleScript(s string) string {
	return appleScriptEscaper.Replace(s)
}

// Gate wraps a Notifier with a one-time permission decision.
type Gate struct {
	next    Notifier
	enabled bool
	probe   func() bool

	once    sync.Once
	mu      sync.RWMutex
	granted bool
}

// NewGate grants permission only when enabled is true and probe (if any) succeeds.
func NewGate(next Notifier, enabled bool, probe func() bool) *Gate {
	if next == nil {
		next = Noop{}
	}
	return &Gate{next: next, enabled: enabled, probe: probe}
}

// RequestPermission decides once; later calls return the first answer.
func (g *Gate) RequestPermission() bool {
	g.once.Do(func() {
		ok := g.enabled
		if ok && g.probe != nil {
			ok = g.probe()
		}
		g.mu.Lock()
		g.granted = ok
		g.mu.Unlock()
	})
	return g.Granted()
}

func (g *Gate) Granted() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.granted
}

func (g *Gate) Send(n Notification) error {
	if !g.Granted() {
		return nil
	}
	if n.At.IsZero() {
		n.At = time.Now()
	}
	return g.next.Send(n)
}

// Recorder keeps sent notifications in memory.
type Recorder struct {
	mu   sync.Mutex
	sent []Notification
}

func (r *Recorder) Send(n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func (r *Recorder) Sent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.sent...)
}
