// Package cli wires configuration, storage and the deadline monitor into the thetask
// command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sandeepkv93/thetask/internal/ai"
	"github.com/sandeepkv93/thetask/internal/config"
	"github.com/sandeepkv93/thetask/internal/logging"
	"github.com/sandeepkv93/thetask/internal/model"
	"github.com/sandeepkv93/thetask/internal/notify"
	"github.com/sandeepkv93/thetask/internal/scheduler"
	"github.com/sandeepkv93/thetask/internal/storage"
	"github.com/sandeepkv93/thetask/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath string
	storeKind  string
	storePath  string
)

var rootCmd = &cobra.Command{
	Use:   "thetask",
	Short: "A kanban task board for the terminal",
	Long: `thetask keeps a four-column task board (To do, In progress, Done, Blocked) with
deadline alerts, productivity analytics and an optional AI planner.

Running thetask without a subcommand opens the interactive board.`,
	SilenceUsage: true,
	RunE:         runBoard,
}

func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ./thetask.yaml or the user config dir)")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "", "storage backend: sqlite or json")
	rootCmd.PersistentFlags().StringVar(&storePath, "db", "", "path of the board database or JSON file")

	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(hintCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// app is everything a command needs once configuration has been resolved.
type app struct {
	cfg     config.Config
	log     *logrus.Logger
	backend storage.Backend
	store   *store.Store
	closers []func() error
}

// openApp loads config and opens the store. Interactive commands log to cfg.LogFile so the
// terminal stays clean; everything else logs to the command's stderr.
func openApp(cmd *cobra.Command, logToFile bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	opts := logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cmd.ErrOrStderr()}
	if logToFile {
		opts.File = cfg.LogFile
	}
	log, closeLog, err := logging.New(opts)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, closers: []func() error{closeLog}}

	backend, err := storage.Open(cfg.StoreKind, cfg.StorePath)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	st, err := store.Open(cmd.Context(), backend, log)
	if err != nil {
		_ = backend.Close()
		_ = a.Close()
		return nil, err
	}
	a.backend = backend
	a.store = st
	a.closers = append(a.closers, st.Close)
	log.WithFields(logrus.Fields{"store": cfg.StoreKind, "path": cfg.StorePath}).Debug("board opened")
	return a, nil
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if kind := strings.ToLower(strings.TrimSpace(storeKind)); kind != "" && kind != cfg.StoreKind {
		cfg.StoreKind = kind
		if storePath == "" {
			cfg.StorePath = config.DefaultStorePath(kind)
		}
	}
	if storePath != "" {
		cfg.StorePath = storePath
	}
	return cfg, cfg.Validate()
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) assistant() *ai.Client {
	return ai.New(ai.Config{
		APIKey:   a.cfg.AIAPIKey,
		Model:    a.cfg.AIModel,
		BaseURL:  a.cfg.AIBaseURL,
		Language: a.cfg.AILanguage,
		Timeout:  a.cfg.AITimeout,
	}, a.log)
}

// startMonitor runs the deadline monitor against the store. Every store mutation triggers an
// extra scan and prunes dedup state for deleted tasks.
func (a *app) startMonitor(ctx context.Context) *scheduler.Monitor {
	exec := notify.Exec{}
	gate := notify.NewGate(exec, a.cfg.DesktopNotifications, exec.Available)
	if !gate.RequestPermission() {
		a.log.Debug("desktop notifications disabled")
	}
	mon := scheduler.NewMonitor(scheduler.SourceFunc(a.store.Snapshot), scheduler.Options{
		Interval:  a.cfg.DeadlinePollInterval,
		Threshold: a.cfg.DeadlineThreshold,
		Buffer:    a.cfg.MonitorBuffer,
		Notifier:  gate,
		Logger:    a.log,
	})
	changes := a.store.Subscribe()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				mon.Forget(a.store.Snapshot())
				if err := mon.Trigger(); err != nil {
					return
				}
			}
		}
	}()
	mon.Start()
	a.closers = append(a.closers, func() error {
		mon.Stop()
		return nil
	})
	return mon
}

// findTask resolves an exact id or a unique id prefix.
func findTask(st *store.Store, ref string) (model.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Task{}, errors.New("task id is required")
	}
	if task, err := st.Get(ref); err == nil {
		return task, nil
	}
	var matches []model.Task
	for _, t := range st.Snapshot() {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return model.Task{}, fmt.Errorf("%w: %s", store.ErrTaskNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return model.Task{}, fmt.Errorf("task id %q is ambiguous (%d matches)", ref, len(matches))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func commandContext(cmd *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
