package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/elostealo/internal/client"
)

var (
	cfg       *Config
	apiClient *client.Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "stealo",
		Short: "CLI tool for the Elo Stealo game server",
		Long: `stealo is a CLI tool for the Elo Stealo chess server.

It can create and join rooms, play moves, follow a room's event stream,
browse the handicap catalog and run same-device games.

The seat from the last create or join is remembered in the seat file,
so later commands act for it without repeating the ticket.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			apiClient = client.NewClient(cfg.ServerURL)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: STEALO_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.SeatFile, "seat-file", cfg.SeatFile, "Seat file path (env: STEALO_SEAT_FILE)")
	rootCmd.PersistentFlags().StringVar(&cfg.Code, "code", "", "Room code, overriding the saved seat")
	rootCmd.PersistentFlags().StringVar(&cfg.Ticket, "ticket", "", "Seat ticket, overriding the saved seat")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json (env: STEALO_OUTPUT)")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newRoomCmd())
	rootCmd.AddCommand(newMoveCmd())
	rootCmd.AddCommand(newDrawCmd())
	rootCmd.AddCommand(newResignCmd())
	rootCmd.AddCommand(newStateCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newHandicapsCmd())
	rootCmd.AddCommand(newPairCmd())
	rootCmd.AddCommand(newLocalCmd())
	rootCmd.AddCommand(newGamesCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		NewOutput(cfg.Output, os.Stderr).PrintError(err)
		os.Exit(1)
	}
}
