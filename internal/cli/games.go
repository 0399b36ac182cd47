package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/elostealo/internal/api/request"
	"github.com/mcoot/elostealo/internal/api/response"
	"github.com/mcoot/elostealo/internal/model"
)

func newGamesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "games",
		Short: "List finished online games, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			games, err := apiClient.Games(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(response.GameList{Games: games})
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of games (default: server default)")

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show a finished game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := apiClient.Game(cmd.Context(), model.GameID(args[0]))
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(*record)
			return nil
		},
	})

	return cmd
}

func newLocalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "local",
		Short: "Same-device games",
	}

	cmd.AddCommand(newLocalCreateCmd())
	cmd.AddCommand(newLocalGetCmd())
	cmd.AddCommand(newLocalMoveCmd())

	return cmd
}

func newLocalCreateCmd() *cobra.Command {
	var req request.CreateLocalGameRequest
	var whiteHandicap, blackHandicap int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start a same-device game",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.White.Handicap = model.HandicapID(whiteHandicap)
			req.Black.Handicap = model.HandicapID(blackHandicap)
			result, err := apiClient.CreateLocalGame(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.White.Name, "white", "", "White player's name (required)")
	cmd.Flags().StringVar(&req.Black.Name, "black", "", "Black player's name (required)")
	cmd.Flags().IntVar(&req.White.Rating, "white-rating", 0, "White player's rating")
	cmd.Flags().IntVar(&req.Black.Rating, "black-rating", 0, "Black player's rating")
	cmd.Flags().IntVar(&whiteHandicap, "white-handicap", 0, "White handicap id when unrated")
	cmd.Flags().IntVar(&blackHandicap, "black-handicap", 0, "Black handicap id when unrated")
	_ = cmd.MarkFlagRequired("white")
	_ = cmd.MarkFlagRequired("black")

	return cmd
}

func newLocalGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a same-device game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := apiClient.LocalGame(cmd.Context(), model.GameID(args[0]))
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newLocalMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <white|black> <uci>",
		Short: "Play a move for one side, or resign with the move \"resign\"",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			color := model.Color(args[1])
			if color != model.White && color != model.Black {
				return fmt.Errorf("color must be white or black, got %q", args[1])
			}
			result, err := apiClient.LocalMove(cmd.Context(), model.GameID(args[0]), color, args[2])
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
