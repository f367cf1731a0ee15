package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mrjoshuak/go-edgebreaker/internal/trace"
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode a valence stream against a trace",
	Long: `Decodes a valence stream using the corners and merges of a YAML trace,
prints the decoded symbols, their contexts and the final valences, and
checks the symbols against the trace.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tracePath, _ := cmd.Flags().GetString("trace")
		inPath, _ := cmd.Flags().GetString("in")
		checkValences, _ := cmd.Flags().GetBool("valences")
		return runDecode(cmd, tracePath, inPath, checkValences)
	},
}

func init() {
	decodeCmd.Flags().String("trace", "", "YAML trace providing corners and merges")
	decodeCmd.Flags().String("in", "", "Valence stream to decode")
	decodeCmd.Flags().Bool("valences", false, "Check final valences against the edge counts of the mesh")
	_ = decodeCmd.MarkFlagRequired("trace")
	_ = decodeCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, tracePath, inPath string, checkValences bool) error {
	tr, err := trace.Load(tracePath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(inPath)
	if err != nil {
		return errors.Wrap(err, "reading stream")
	}

	res, err := trace.Decode(tr, data, newLogger(cmd))
	if err != nil {
		return errors.Wrap(err, "decoding stream")
	}

	out := cmd.OutOrStdout()
	names := make([]string, len(res.Symbols))
	for i, s := range res.Symbols {
		names[i] = s.String()
	}
	fmt.Fprintf(out, "symbols:  %s\n", strings.Join(names, " "))
	fmt.Fprintf(out, "contexts: %s\n", joinInts(res.Contexts))
	fmt.Fprintf(out, "valences: %s\n", joinInts(res.Valences))

	if err := trace.Verify(tr, res); err != nil {
		return err
	}
	fmt.Fprintln(out, "trace verified")

	if !checkValences {
		return nil
	}
	mesh, err := tr.Mesh()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "mesh:     %d faces, %d corners\n", mesh.NumFaces(), mesh.NumCorners())
	if err := trace.VerifyValences(tr, res); err != nil {
		return err
	}
	fmt.Fprintln(out, "valences match mesh")
	return nil
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}
