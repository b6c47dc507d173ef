package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	orchestration "github.com/koscakluka/snapscout/core"
	"github.com/koscakluka/snapscout/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "snapscout",
	Short: "Photo browser driven by voice agents",
	Long: `SnapScout serves a photo-category browser that can be controlled by voice.

Recognised speech is routed to the magenta or genie agents:
  launch <agent>            make an agent the active one
  stop                      clear the active agent
  ask <agent> to <request>  send a request to a specific agent
  anything else             goes to the active agent`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("agents-file", "", "YAML file describing the agents (overrides SNAPSCOUT_AGENTS_FILE)")
	flags.String("fallback-agent", "", "agent used when none is active (overrides SNAPSCOUT_FALLBACK_AGENT)")
	flags.String("announce-stopped", "", "agent named when stopping: previous or current (overrides SNAPSCOUT_ANNOUNCE_STOPPED)")
	flags.Bool("debug", false, "run the server in debug mode (overrides DEBUG)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(consoleCmd)
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads the configuration and applies the flags the user set.
func loadConfig(cmd *cobra.Command, overrides config.Overrides) (*config.Config, error) {
	flags := cmd.Flags()
	if flags.Changed("agents-file") {
		value, err := flags.GetString("agents-file")
		if err != nil {
			return nil, fmt.Errorf("failed to read 'agents-file' flag: %w", err)
		}
		overrides.AgentsFile = &value
	}
	if flags.Changed("fallback-agent") {
		value, err := flags.GetString("fallback-agent")
		if err != nil {
			return nil, fmt.Errorf("failed to read 'fallback-agent' flag: %w", err)
		}
		overrides.FallbackAgent = &value
	}
	if flags.Changed("announce-stopped") {
		value, err := flags.GetString("announce-stopped")
		if err != nil {
			return nil, fmt.Errorf("failed to read 'announce-stopped' flag: %w", err)
		}
		overrides.AnnounceStopped = &value
	}
	if flags.Changed("debug") {
		value, err := flags.GetBool("debug")
		if err != nil {
			return nil, fmt.Errorf("failed to read 'debug' flag: %w", err)
		}
		overrides.Debug = &value
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func dispatcherOptions(cfg *config.Config) []orchestration.DispatcherOption {
	mode, ok := orchestration.ParseTerminationAnnouncement(cfg.AnnounceStopped)
	if !ok {
		mode = orchestration.AnnouncePreviousAgent
	}
	return []orchestration.DispatcherOption{orchestration.WithTerminationAnnouncement(mode)}
}
