package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rkmeans",
		Short: "rkmeans - parallel k-means and k-medians clustering",
		Long: `rkmeans partitions a matrix of float coordinates into k clusters
using Lloyd's algorithm with a pool of worker goroutines.

Features:
  • k-means (Euclidean) and k-medians (Manhattan)
  • Missing values (NA, NaN, ?, empty) are ignored per dimension
  • gzip, zstd and lz4 compressed input
  • Local files, S3 and MinIO sources`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rkmeans v%s (%s)\n", version, commit)
		},
	})

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Cluster a dataset",
		Long:  "Load a delimited coordinate file and print the resulting clusters",
		Args:  cobra.NoArgs,
		RunE:  runRun,
	}
	registerFlags(runCmd.Flags())
	rootCmd.AddCommand(runCmd)

	return rootCmd
}
