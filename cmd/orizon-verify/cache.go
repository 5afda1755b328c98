package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orizon-lang/orizon-verify/internal/verifycache"
)

func newCacheCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the verification result cache",
	}
	cmd.AddCommand(newCacheStatsCommand(opts))
	cmd.AddCommand(newCacheClearCommand(opts))
	return cmd
}

func newCacheStatsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print hit/miss/entry counts for the current cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := verifycache.Open(opts.cfg.Cache.Path)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer c.Close()

			s := c.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "entries: %d\nhits:    %d\nmisses:  %d\n", s.Entries, s.Hits, s.Misses)
			return nil
		},
	}
}

func newCacheClearCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every entry in the cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := verifycache.Open(opts.cfg.Cache.Path)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer c.Close()

			before := c.Stats().Entries
			fmt.Fprintf(cmd.OutOrStdout(), "clearing %d cache entries\n", before)
			return c.Clear()
		},
	}
}
