package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	edgebreaker "github.com/mrjoshuak/go-edgebreaker"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the header of a valence stream",
	Long:  `Reads the traversal and valence headers of a stream and prints the split count, the valence mode and the symbol count of every context.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inPath, _ := cmd.Flags().GetString("in")
		vertices, _ := cmd.Flags().GetInt("vertices")
		return runInspect(cmd, inPath, vertices)
	},
}

func init() {
	inspectCmd.Flags().String("in", "", "Valence stream to inspect")
	inspectCmd.Flags().Int("vertices", 0, "Encoded vertex count of the mesh")
	_ = inspectCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, inPath string, vertices int) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return errors.Wrap(err, "reading stream")
	}

	// Start only reads headers, so no corner table is needed.
	dec := edgebreaker.NewValenceDecoder(nil, edgebreaker.WithLogger(newLogger(cmd)))
	dec.SetNumEncodedVertices(vertices)
	if err := dec.Start(edgebreaker.NewDecoderBuffer(data)); err != nil {
		return errors.Wrap(err, "reading header")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "stream:   %d bytes\n", len(data))
	fmt.Fprintf(out, "vertices: %d encoded, %d split\n", vertices, dec.NumVertices()-vertices)
	fmt.Fprintf(out, "mode:     %d (valence 2..7)\n", edgebreaker.ValenceMode2To7)
	for ctx := 0; ctx < dec.NumContexts(); ctx++ {
		fmt.Fprintf(out, "context %d: %d symbols\n", ctx, dec.Remaining(ctx))
	}
	return nil
}
