package commands

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/koscakluka/snapscout/core/intents"
	"github.com/koscakluka/snapscout/internal/config"
	"github.com/koscakluka/snapscout/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the photo browser and the voice websocket",
	Long: `Serve the photo browser on PORT (default 3000).

Browsers connect to /ws and send recognised speech segments; agent replies
are sent back to be spoken by the browser.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var overrides config.Overrides
		if cmd.Flags().Changed("addr") {
			addr, err := cmd.Flags().GetString("addr")
			if err != nil {
				return fmt.Errorf("failed to read 'addr' flag: %w", err)
			}
			overrides.Addr = &addr
		}

		cfg, err := loadConfig(cmd, overrides)
		if err != nil {
			return err
		}
		if !cfg.Debug {
			gin.SetMode(gin.ReleaseMode)
		}

		registry, err := cfg.NewRegistry()
		if err != nil {
			return fmt.Errorf("failed to configure agents: %w", err)
		}

		server := web.NewServer(
			web.WithAgents(registry),
			web.WithTagger(intents.NewTagger(registry.Names()...)),
			web.WithDispatcherOptions(dispatcherOptions(cfg)...),
			web.WithAllowedOrigins(cfg.AllowedOrigins...),
		)
		return server.Run(cmd.Context(), cfg.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address, e.g. :3000 (overrides PORT)")
}
