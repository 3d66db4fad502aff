package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newRootCmd(load appLoader) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "meterctl",
		Short:        "Administer the token quota service",
		Long:         "meterctl applies migrations, runs the daily reset sweep, manages pricing plans and organization plan assignments, and mints API tokens.",
		SilenceUsage: true,
	}

	run := func(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := load(cmd.Context())
			if err != nil {
				return err
			}
			if a.close != nil {
				defer a.close()
			}
			return fn(cmd, a, args)
		}
	}

	rootCmd.AddCommand(
		newMigrateCmd(run),
		newSweepCmd(run),
		newPlanCmd(run),
		newOrgCmd(run),
		newTokenCmd(),
	)

	return rootCmd
}

type runner func(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
