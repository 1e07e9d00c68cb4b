package main

import (
	"context"
	"encoding/json"

	settingsstore "github.com/aiesociety/aiesweb/internal/app/store/settings"
	"github.com/aiesociety/aiesweb/internal/domain/models"
	"github.com/spf13/cobra"
)

func newCountersCmd(opts *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counters",
		Short: "Show or change the home page counters",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Print the current counters as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSettings(cmd, opts, func(ctx context.Context, s *settingsstore.Store) error {
				c, err := s.Counters(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, c)
			})
		},
	}

	var c models.Counters
	set := &cobra.Command{
		Use:   "set",
		Short: "Replace the counters",
		Long: `Replace all four counters. Values must be zero or greater; flags left
unset are stored as zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSettings(cmd, opts, func(ctx context.Context, s *settingsstore.Store) error {
				saved, err := s.SetCounters(ctx, c)
				if err != nil {
					return err
				}
				return printJSON(cmd, saved)
			})
		},
	}
	set.Flags().IntVar(&c.Members, "members", 0, "members counter")
	set.Flags().IntVar(&c.Projects, "projects", 0, "projects counter")
	set.Flags().IntVar(&c.Journals, "journals", 0, "journals counter")
	set.Flags().IntVar(&c.Subscribers, "subscribers", 0, "subscribers counter")

	cmd.AddCommand(get, set)
	return cmd
}

func withSettings(cmd *cobra.Command, opts *globalOpts, fn func(context.Context, *settingsstore.Store) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	db, disconnect, err := opts.connect(ctx)
	if err != nil {
		return err
	}
	defer disconnect()
	return fn(ctx, settingsstore.New(db, nil, nil))
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
