package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/elostealo/internal/api/request"
	"github.com/mcoot/elostealo/internal/api/response"
	"github.com/mcoot/elostealo/internal/model"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room management commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomLeaveCmd())

	return cmd
}

// addPlayerFlags binds the descriptor flags shared by create and join
func addPlayerFlags(cmd *cobra.Command, p *request.Player) {
	var handicap int
	cmd.Flags().StringVar(&p.Name, "name", "", "Display name (required)")
	cmd.Flags().IntVar(&p.Rating, "rating", 0, "Rating; 0 means unrated and skips handicap pairing")
	cmd.Flags().IntVar(&handicap, "handicap", 0, "Handicap id to use when pairing is skipped")
	_ = cmd.MarkFlagRequired("name")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		p.Handicap = model.HandicapID(handicap)
		return nil
	}
}

func saveSeat(seat response.Seat) error {
	return cfg.SaveSeat(SavedSeat{
		Server: cfg.ServerURL,
		Code:   seat.Code,
		Color:  seat.Color,
		Ticket: seat.Ticket,
	})
}

func newRoomCreateCmd() *cobra.Command {
	var player request.Player

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a room and wait for an opponent",
		RunE: func(cmd *cobra.Command, args []string) error {
			seat, err := apiClient.CreateRoom(cmd.Context(), player)
			if err != nil {
				return err
			}
			if err := saveSeat(seat); err != nil {
				return fmt.Errorf("room created but seat not saved: %w", err)
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(seat)
			return nil
		},
	}
	addPlayerFlags(cmd, &player)

	return cmd
}

func newRoomJoinCmd() *cobra.Command {
	var player request.Player

	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a room by its code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seat, err := apiClient.JoinRoom(cmd.Context(), model.RoomCode(args[0]), player)
			if err != nil {
				return err
			}
			if err := saveSeat(seat); err != nil {
				return fmt.Errorf("joined but seat not saved: %w", err)
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(seat)
			return nil
		},
	}
	addPlayerFlags(cmd, &player)

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [code]",
		Short: "Get public room details",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var code model.RoomCode
			if len(args) == 1 {
				code = model.RoomCode(args[0])
			} else {
				seat, err := cfg.LoadSeat()
				if err != nil {
					return err
				}
				code = seat.Code
			}

			result, err := apiClient.GetRoom(cmd.Context(), code)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newRoomLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Give up the current seat",
		RunE: func(cmd *cobra.Command, args []string) error {
			seat, err := cfg.LoadSeat()
			if err != nil {
				return err
			}
			if err := apiClient.LeaveRoom(cmd.Context(), seat.Code, seat.Ticket); err != nil {
				return err
			}
			if err := cfg.ClearSeat(); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage(fmt.Sprintf("Left room %s", seat.Code))
			return nil
		},
	}
}
