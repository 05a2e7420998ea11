package cli

import (
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/thetask/internal/model"
	"github.com/sandeepkv93/thetask/internal/update"
	"github.com/spf13/cobra"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive board",
	Args:  cobra.NoArgs,
	RunE:  runBoard,
}

var themeCmd = &cobra.Command{
	Use:   "theme [dark|light]",
	Short: "Show, set or toggle the board theme",
	Long:  "Without an argument the theme toggles between dark and light.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		next := a.store.Theme().Toggle()
		if len(args) == 1 {
			if next, err = model.ParseTheme(args[0]); err != nil {
				return err
			}
		}
		ctx, cancel := commandContext(cmd, storeTimeout)
		defer cancel()
		if err := a.store.SetTheme(ctx, next); err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "theme: %s\n", next)
		return nil
	},
}

func runBoard(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	mon := a.startMonitor(ctx)
	m := update.NewModel(update.Deps{
		Store:     a.store,
		Monitor:   mon,
		Assistant: a.assistant(),
		Logger:    a.log,
	}, update.RuntimeConfig{AITimeout: a.cfg.AITimeout})

	a.log.Info("board started")
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = program.Run()
	a.log.WithError(err).Info("board closed")
	return err
}
