package trace

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	edgebreaker "github.com/mrjoshuak/go-edgebreaker"
	"github.com/mrjoshuak/go-edgebreaker/internal/cornertable"
	"github.com/mrjoshuak/go-edgebreaker/internal/logging"
)

func symbolPtr(s edgebreaker.TopologySymbol) *edgebreaker.TopologySymbol {
	return &s
}

func TestLoad_Fixtures(t *testing.T) {
	paths, err := filepath.Glob("testdata/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			tr, err := Load(path)
			require.NoError(t, err)

			data, err := Encode(tr, nil)
			require.NoError(t, err)

			res, err := Decode(tr, data, nil)
			require.NoError(t, err)
			require.NoError(t, Verify(tr, res))
			require.Len(t, res.Contexts, len(res.Symbols))
			require.Len(t, res.Valences, tr.NumVertices())

			// Every fixture is a complete traversal, so each valence is
			// the edge count of its vertex.
			tbl, err := tr.Mesh()
			require.NoError(t, err)
			require.Equal(t, tbl.Valences(), res.Valences)
			require.NoError(t, VerifyValences(tr, res))
		})
	}
}

func TestDecode_Tetrahedron(t *testing.T) {
	tr, err := Load("testdata/tetrahedron.yaml")
	require.NoError(t, err)
	require.Equal(t, "tetrahedron", tr.Name)

	data, err := Encode(tr, nil)
	require.NoError(t, err)

	res, err := Decode(tr, data, nil)
	require.NoError(t, err)

	require.Equal(t, []edgebreaker.TopologySymbol{
		edgebreaker.TopologyE,
		edgebreaker.TopologyR,
		edgebreaker.TopologyC,
	}, res.Symbols)
	require.Equal(t, []int{-1, 0, 1}, res.Contexts)
	require.Equal(t, []int{3, 3, 3, 3}, res.Valences)
}

func TestDecode_Fan(t *testing.T) {
	tr, err := Load("testdata/fan.yaml")
	require.NoError(t, err)

	data, err := Encode(tr, nil)
	require.NoError(t, err)
	res, err := Decode(tr, data, nil)
	require.NoError(t, err)

	require.Equal(t, []int{-1, 0, 1}, res.Contexts)
	require.Equal(t, []int{4, 2, 3, 3, 2}, res.Valences)
}

func TestDecode_Merge(t *testing.T) {
	// Vertex 3 is a split copy of vertex 0, merged back once both faces
	// have been decoded.
	tr, err := Parse([]byte(`
vertices: 3
splits: 1
faces: [[0, 1, 2], [3, 2, 1]]
steps:
  - {symbol: E, corner: 0}
  - {symbol: E, corner: 3}
  - {merge: [0, 3]}
`))
	require.NoError(t, err)

	enc, err := NewEncoder(tr, nil)
	require.NoError(t, err)
	require.Equal(t, 4, enc.Valence(0))

	data, err := enc.Bytes()
	require.NoError(t, err)
	res, err := Decode(tr, data, nil)
	require.NoError(t, err)
	require.Equal(t, []int{4, 4, 4, 2}, res.Valences)
	require.ErrorIs(t, VerifyValences(tr, res), ErrValenceMismatch)
}

func TestVerifyValences_Mismatch(t *testing.T) {
	tr, err := Load("testdata/fan.yaml")
	require.NoError(t, err)

	res := &Result{Valences: []int{4, 2, 3, 3}}
	require.ErrorIs(t, VerifyValences(tr, res), ErrValenceMismatch)

	res.Valences = []int{4, 2, 3, 3, 1}
	require.ErrorIs(t, VerifyValences(tr, res), ErrValenceMismatch)
}

func TestNewEncoder_ContextSizes(t *testing.T) {
	tr, err := Load("testdata/strip.yaml")
	require.NoError(t, err)

	enc, err := NewEncoder(tr, nil)
	require.NoError(t, err)

	total := 0
	for ctx := 0; ctx < enc.NumContexts(); ctx++ {
		total += enc.ContextSize(ctx)
	}
	require.Equal(t, len(tr.Symbols())-1, total, "all symbols but the first are context coded")
}

func TestDecode_Triangle(t *testing.T) {
	tr, err := Load("testdata/triangle.yaml")
	require.NoError(t, err)

	data, err := Encode(tr, nil)
	require.NoError(t, err)
	res, err := Decode(tr, data, nil)
	require.NoError(t, err)

	require.Equal(t, []int{-1}, res.Contexts)
	require.Equal(t, []int{2, 2, 2}, res.Valences)
}

func TestDecode_Truncated(t *testing.T) {
	tr, err := Load("testdata/tetrahedron.yaml")
	require.NoError(t, err)
	data, err := Encode(tr, nil)
	require.NoError(t, err)

	_, err = Decode(tr, data[:len(data)/2], nil)
	require.Error(t, err)
}

func TestDecode_Logs(t *testing.T) {
	tr, err := Load("testdata/triangle.yaml")
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, slog.LevelDebug)
	_, err = Decode(tr, []byte{0x01}, logger)
	require.ErrorIs(t, err, edgebreaker.ErrTruncated)
	require.Contains(t, buf.String(), "err=")
}

func TestVerify_Mismatch(t *testing.T) {
	tr, err := Load("testdata/tetrahedron.yaml")
	require.NoError(t, err)
	data, err := Encode(tr, nil)
	require.NoError(t, err)
	res, err := Decode(tr, data, nil)
	require.NoError(t, err)

	res.Symbols[2] = edgebreaker.TopologyL
	require.ErrorIs(t, Verify(tr, res), ErrMismatch)

	res.Symbols = res.Symbols[:1]
	require.ErrorIs(t, Verify(tr, res), ErrMismatch)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", "vertices: [1"},
		{"unknown symbol", "vertices: 3\nfaces: [[0, 1, 2]]\nsteps: [{symbol: X, corner: 0}]"},
		{"negative vertices", "vertices: -1"},
		{"negative splits", "vertices: 3\nsplits: -2"},
		{"corner out of range", "vertices: 3\nfaces: [[0, 1, 2]]\nsteps: [{symbol: C, corner: 3}]"},
		{"short merge", "vertices: 3\nsteps: [{merge: [0]}]"},
		{"merge out of range", "vertices: 3\nsteps: [{merge: [0, 3]}]"},
		{"symbol and merge", "vertices: 3\nfaces: [[0, 1, 2]]\nsteps: [{symbol: C, corner: 0, merge: [0, 1]}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.ErrorIs(t, err, ErrInvalidTrace)
		})
	}
}

func TestEncode_InvalidFace(t *testing.T) {
	tr, err := Parse([]byte("vertices: 2\nfaces: [[0, 1, 2]]\nsteps: [{symbol: E, corner: 0}]"))
	require.NoError(t, err)

	_, err = Encode(tr, nil)
	require.ErrorIs(t, err, cornertable.ErrInvalidFace)
}

func TestTrace_YAMLRoundtrip(t *testing.T) {
	want := &Trace{
		Name:     "pair",
		Vertices: 4,
		Splits:   1,
		Faces:    [][3]int{{0, 1, 2}, {2, 1, 3}},
		Steps: []Step{
			{Symbol: symbolPtr(edgebreaker.TopologyE), Corner: 0},
			{Merge: []int{4, 0}},
			{Symbol: symbolPtr(edgebreaker.TopologyR), Corner: 3},
		},
	}

	out, err := yaml.Marshal(want)
	require.NoError(t, err)
	require.Contains(t, string(out), "symbol: E")

	got, err := Parse(out)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, []edgebreaker.TopologySymbol{edgebreaker.TopologyE, edgebreaker.TopologyR}, got.Symbols())
}

func TestCornerTable_Adapter(t *testing.T) {
	tr := &Trace{Vertices: 4, Faces: [][3]int{{0, 1, 2}, {2, 1, 3}}}
	ct, err := tr.CornerTable()
	require.NoError(t, err)

	require.Equal(t, edgebreaker.CornerIndex(4), ct.Next(3))
	require.Equal(t, edgebreaker.CornerIndex(5), ct.Previous(3))
	require.Equal(t, edgebreaker.VertexIndex(3), ct.Vertex(5))
	require.Equal(t, edgebreaker.VertexIndex(-1), ct.Vertex(6))
}
