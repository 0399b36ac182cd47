package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/elostealo/internal/api/request"
	"github.com/mcoot/elostealo/internal/model"
	"github.com/mcoot/elostealo/internal/services/catalog"
	pgstorage "github.com/mcoot/elostealo/internal/storage/postgres"
)

func newHandicapsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "handicaps",
		Short: "Browse the handicap catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := apiClient.Handicaps(cmd.Context())
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one handicap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid handicap id %q", args[0])
			}
			result, err := apiClient.Handicap(cmd.Context(), model.HandicapID(id))
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	})

	return cmd
}

func newPairCmd() *cobra.Command {
	var req request.PairingRequest
	var handicapA, handicapB int

	cmd := &cobra.Command{
		Use:   "pair",
		Short: "Preview the handicaps two ratings would be assigned",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.HandicapA = model.HandicapID(handicapA)
			req.HandicapB = model.HandicapID(handicapB)
			result, err := apiClient.Pair(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&req.RatingA, "rating-a", 0, "Rating of player A")
	cmd.Flags().IntVar(&req.RatingB, "rating-b", 0, "Rating of player B")
	cmd.Flags().IntVar(&handicapA, "handicap-a", 0, "Handicap kept for A when a rating is 0")
	cmd.Flags().IntVar(&handicapB, "handicap-b", 0, "Handicap kept for B when a rating is 0")

	return cmd
}

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Catalog administration",
	}

	cmd.AddCommand(newCatalogSeedCmd())

	return cmd
}

func newCatalogSeedCmd() *cobra.Command {
	var databaseURL, file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the rules table and load it from a catalog file",
		Long: `Create the rules table if needed and replace its contents with the
entries of a YAML catalog file. Without --file the built-in catalog is used.

This talks to the database directly, not to the server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return fmt.Errorf("--database-url is required")
			}
			db, err := pgstorage.Open(databaseURL)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer func() { _ = sqlDB.Close() }()
			}

			src := catalog.NewPostgresSource(db)
			if err := src.Migrate(cmd.Context()); err != nil {
				return err
			}
			n, err := src.Seed(cmd.Context(), catalog.NewFileSource(file))
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage(fmt.Sprintf("Seeded %d handicaps", n))
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres DSN (env: DATABASE_URL)")
	cmd.Flags().StringVar(&file, "file", "", "Catalog YAML file (default: built-in catalog)")

	return cmd
}
