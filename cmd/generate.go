package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"babylon/salesanalytics/synthetic"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		rows int
		dir  string
		seed int64
	)

	cmd := &cobra.Command{
		Use:   "generate-synthetic-data",
		Short: "Write a synthetic sales file for local runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rows <= 0 {
				rows = a.cfg.SyntheticDataRows
			}
			if dir == "" {
				dir = a.cfg.SyntheticDataDir
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			path, err := synthetic.RunGenerateSyntheticData(cmd.Context(), rows, dir, seed)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)

			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 0, "number of rows to generate (default synthetic_data_rows)")
	cmd.Flags().StringVar(&dir, "dir", "", "directory to write synthetic data to (default synthetic_data_dir)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 picks one from the clock")

	return cmd
}
