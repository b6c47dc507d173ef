package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koscakluka/snapscout/internal/config"
	"github.com/koscakluka/snapscout/internal/console"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Talk to the agents from the terminal",
	Long: `Talk to the agents from the terminal.

Typed lines are handled like final speech segments. With --voice the
microphone is transcribed with Deepgram and replies are spoken through the
speakers; DEEPGRAM_API_KEY must be set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var overrides config.Overrides
		if cmd.Flags().Changed("voice-model") {
			voice, err := cmd.Flags().GetString("voice-model")
			if err != nil {
				return fmt.Errorf("failed to read 'voice-model' flag: %w", err)
			}
			overrides.DeepgramVoice = &voice
		}

		cfg, err := loadConfig(cmd, overrides)
		if err != nil {
			return err
		}

		registry, err := cfg.NewRegistry()
		if err != nil {
			return fmt.Errorf("failed to configure agents: %w", err)
		}

		opts := console.Options{
			Agents:            registry,
			AgentNames:        registry.Names(),
			DispatcherOptions: dispatcherOptions(cfg),
		}

		voice, err := cmd.Flags().GetBool("voice")
		if err != nil {
			return fmt.Errorf("failed to read 'voice' flag: %w", err)
		}
		if voice {
			if cfg.Deepgram.APIKey == "" {
				return fmt.Errorf("--voice requires DEEPGRAM_API_KEY")
			}
			opts.Voice = &console.VoiceOptions{
				DeepgramAPIKey: cfg.Deepgram.APIKey,
				Voice:          cfg.Deepgram.Voice,
			}
		}

		return console.Run(cmd.Context(), opts)
	},
}

func init() {
	consoleCmd.Flags().Bool("voice", false, "use the microphone and speakers")
	consoleCmd.Flags().String("voice-model", "", "Deepgram voice, e.g. aura-asteria-en (overrides DEEPGRAM_VOICE)")
}
