package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mcoot/elostealo/internal/client"
	"github.com/mcoot/elostealo/internal/model"
)

// seatCommand runs fn for the saved seat and prints the resulting snapshot
func seatCommand(fn func(ctx context.Context, seat SavedSeat) (model.StateSync, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		seat, err := cfg.LoadSeat()
		if err != nil {
			return err
		}
		result, err := fn(cmd.Context(), seat)
		if err != nil {
			return err
		}

		out := NewOutput(cfg.Output, cmd.OutOrStdout())
		out.Print(result)
		return nil
	}
}

func newMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <uci>",
		Short: "Play a move in UCI notation, for example e2e4 or e7e8q",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return seatCommand(func(ctx context.Context, seat SavedSeat) (model.StateSync, error) {
				return apiClient.Move(ctx, seat.Code, seat.Ticket, args[0])
			})(cmd, args)
		},
	}
}

func newDrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "draw",
		Short: "Offer a draw, or accept the opponent's offer",
		RunE: seatCommand(func(ctx context.Context, seat SavedSeat) (model.StateSync, error) {
			return apiClient.OfferDraw(ctx, seat.Code, seat.Ticket)
		}),
	}
}

func newResignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resign",
		Short: "Resign the current game",
		RunE: seatCommand(func(ctx context.Context, seat SavedSeat) (model.StateSync, error) {
			return apiClient.Resign(ctx, seat.Code, seat.Ticket)
		}),
	}
}

func newStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the current game as seen from your seat",
		RunE: seatCommand(func(ctx context.Context, seat SavedSeat) (model.StateSync, error) {
			return apiClient.State(ctx, seat.Code, seat.Ticket)
		}),
	}
}

func newEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Follow the room from your seat",
		Long: `Connect to the seat's event stream and print the game as it changes.

A dropped connection is reopened automatically; the server answers with a
full resync. The command exits when the room closes after the game ends.

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			seat, err := cfg.LoadSeat()
			if err != nil {
				return err
			}

			logger := zerolog.Nop()
			if cfg.Verbose {
				logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
			}

			handle := client.NewHandle(apiClient, logger)
			if err := handle.Resume(seat.Code, seat.Color, seat.Ticket); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			err = handle.Listen(ctx, func(v client.View) {
				out.Print(NewWatchLine(v))
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
