package main

import (
	"fmt"

	"space-matchmaker/internal/pipeline"
	"space-matchmaker/internal/render"

	"github.com/spf13/cobra"
)

func newOperatorsCmd(a *app) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "operators",
		Short: "List the operators with their index and size range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = a.cfg.Data.Operators
			}
			ops, err := pipeline.LoadOperators(cmd.Context(), path, a.cfg.ModelColumns())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "📋 Available Operators:")
			fmt.Fprintln(out, render.Operators(ops))
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "operators", "", "operators table (.xlsx, .csv, .tsv)")
	return cmd
}
