package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrjoshuak/go-edgebreaker/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "ebtool",
	Short: "ebtool works with valence-coded edgebreaker streams",
	Long: `ebtool replays traversal traces through the valence coder.
A trace lists the mesh faces, the vertex and split counts, and the ordered
symbol and merge steps of a traversal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log coder activity to stderr")
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return logging.New(slog.LevelWarn)
	}
	return logging.New(slog.LevelDebug)
}
