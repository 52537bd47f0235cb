package cmd

import (
	"fmt"

	"github.com/apex/log"
	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/cache"
	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/metrics"
	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/store"
	"github.com/mpboonchaipolice/tcsd2-dashboard/internal/web"
	"github.com/spf13/cobra"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("host") {
			serveHost = cfg.Server.Host
		}
		if !cmd.Flags().Changed("port") {
			servePort = cfg.Server.Port
		}

		metrics.Register()

		var opts []cache.Option
		srv := &web.Server{
			Addr:          fmt.Sprintf("%s:%d", serveHost, servePort),
			ReloadLimiter: web.NewReloadLimiter(cfg.Server.ReloadRateLimit, cfg.Server.ReloadBurst),
		}
		if cfg.AuthEnabled() {
			srv.Auth = web.Credentials{User: cfg.Auth.User, Password: cfg.Auth.Password}
		}

		if cfg.History.Enabled {
			s, err := store.New(dataDir)
			if err != nil {
				return err
			}
			defer s.Close()
			opts = append(opts, cache.WithRecorder(s))
			srv.History = s
		}

		srv.Cache = cache.New(cfg.Source.Path, newLoader(), opts...)

		log.WithFields(log.Fields{
			"excel":   cfg.Source.Path,
			"auth":    cfg.AuthEnabled(),
			"history": cfg.History.Enabled,
		}).Info("serve.start")
		return srv.ListenAndServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "0.0.0.0", "Host to listen on")
	serveCmd.Flags().IntVar(&servePort, "port", 8000, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}
