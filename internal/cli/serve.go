package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sandeepkv93/thetask/internal/api"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the board over a local JSON HTTP API",
	Long: `Serve the board over HTTP for browser front ends. The deadline monitor runs while
the server is up. The listen address and allowed CORS origins come from http.addr and
http.cors_origins.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			a.cfg.HTTPAddr = addr
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		mon := a.startMonitor(ctx)
		go func() {
			for ev := range mon.C() {
				a.log.WithField("task_id", ev.TaskID).WithField("kind", ev.Kind).Info(ev.Notification().Body)
			}
		}()

		srv, err := api.New(api.Options{
			Store:       a.store,
			Assistant:   a.assistant(),
			Monitor:     mon,
			Logger:      a.log,
			CORSOrigins: a.cfg.CORSOrigins,
		})
		if err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "serving on http://%s\n", a.cfg.HTTPAddr)
		return srv.ListenAndServe(ctx, a.cfg.HTTPAddr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides http.addr)")
}
