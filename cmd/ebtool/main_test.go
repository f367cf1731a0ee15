package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestEncodeDecodeInspect(t *testing.T) {
	tracePath := filepath.Join("..", "..", "internal", "trace", "testdata", "tetrahedron.yaml")
	stream := filepath.Join(t.TempDir(), "tetrahedron.ebv")

	out, err := execute(t, "encode", "--trace", tracePath, "--out", stream)
	require.NoError(t, err)
	require.Contains(t, out, "3 symbols")
	require.Contains(t, out, "context 0: 1 symbols")
	require.Contains(t, out, "context 1: 1 symbols")

	out, err = execute(t, "decode", "--trace", tracePath, "--in", stream, "--valences")
	require.NoError(t, err)
	require.Contains(t, out, "symbols:  E R C")
	require.Contains(t, out, "contexts: -1 0 1")
	require.Contains(t, out, "valences: 3 3 3 3")
	require.Contains(t, out, "trace verified")
	require.Contains(t, out, "mesh:     4 faces, 12 corners")
	require.Contains(t, out, "valences match mesh")

	out, err = execute(t, "inspect", "--in", stream, "--vertices", "4")
	require.NoError(t, err)
	require.Contains(t, out, "vertices: 4 encoded, 0 split")
	require.Contains(t, out, "context 0: 1 symbols")
	require.Contains(t, out, "context 5: 0 symbols")
}

func TestDecode_MissingStream(t *testing.T) {
	tracePath := filepath.Join("..", "..", "internal", "trace", "testdata", "triangle.yaml")
	_, err := execute(t, "decode", "--trace", tracePath, "--in", filepath.Join(t.TempDir(), "missing.ebv"))
	require.Error(t, err)
}
