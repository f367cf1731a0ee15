package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mrjoshuak/go-edgebreaker/internal/trace"
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a trace into a valence stream",
	Long:  `Replays the steps of a YAML trace through the valence encoder and writes the resulting stream.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tracePath, _ := cmd.Flags().GetString("trace")
		outPath, _ := cmd.Flags().GetString("out")
		return runEncode(cmd, tracePath, outPath)
	},
}

func init() {
	encodeCmd.Flags().String("trace", "", "YAML trace to encode")
	encodeCmd.Flags().String("out", "", "Output stream path")
	_ = encodeCmd.MarkFlagRequired("trace")
	_ = encodeCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(cmd *cobra.Command, tracePath, outPath string) error {
	tr, err := trace.Load(tracePath)
	if err != nil {
		return err
	}

	enc, err := trace.NewEncoder(tr, newLogger(cmd))
	if err != nil {
		return errors.Wrap(err, "encoding trace")
	}
	data, err := enc.Bytes()
	if err != nil {
		return errors.Wrap(err, "encoding trace")
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return errors.Wrap(err, "writing stream")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d symbols, %d bytes\n", outPath, len(tr.Symbols()), len(data))
	for ctx := 0; ctx < enc.NumContexts(); ctx++ {
		fmt.Fprintf(out, "context %d: %d symbols\n", ctx, enc.ContextSize(ctx))
	}
	return nil
}
