// Package trace loads edgebreaker traversal traces and replays them
// through the valence coder.
//
// A trace is the driver's side of the decode protocol written down: the
// mesh faces, the vertex and split counts, and the ordered steps. Each
// step is either a symbol visited at a corner or a vertex merge.
package trace

import (
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	edgebreaker "github.com/mrjoshuak/go-edgebreaker"
	"github.com/mrjoshuak/go-edgebreaker/internal/cornertable"
)

var (
	// ErrInvalidTrace indicates a trace that cannot be replayed.
	ErrInvalidTrace = errors.New("trace: invalid trace")

	// ErrMismatch indicates decoded symbols that differ from the trace.
	ErrMismatch = errors.New("trace: decoded symbols differ from trace")

	// ErrValenceMismatch indicates decoded valences that differ from the
	// edge counts of the trace's mesh.
	ErrValenceMismatch = errors.New("trace: decoded valences differ from mesh")
)

// Step is one traversal step.
type Step struct {
	Symbol *edgebreaker.TopologySymbol `yaml:"symbol,omitempty"`
	Corner int                         `yaml:"corner,omitempty"`
	Merge  []int                       `yaml:"merge,omitempty"`
}

// IsMerge reports whether the step merges two vertices.
func (s Step) IsMerge() bool {
	return s.Symbol == nil
}

// Trace is a recorded traversal.
type Trace struct {
	Name     string   `yaml:"name"`
	Vertices int      `yaml:"vertices"`
	Splits   int      `yaml:"splits"`
	Faces    [][3]int `yaml:"faces"`
	Steps    []Step   `yaml:"steps"`
}

// Load reads a YAML trace file.
func Load(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading trace")
	}
	t, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return t, nil
}

// Parse decodes and validates a YAML trace.
func Parse(data []byte) (*Trace, error) {
	var t Trace
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrap(ErrInvalidTrace, err.Error())
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// NumVertices returns the vertex count including split vertices.
func (t *Trace) NumVertices() int {
	return t.Vertices + t.Splits
}

// Symbols returns the symbol steps in order.
func (t *Trace) Symbols() []edgebreaker.TopologySymbol {
	var out []edgebreaker.TopologySymbol
	for _, s := range t.Steps {
		if !s.IsMerge() {
			out = append(out, *s.Symbol)
		}
	}
	return out
}

// Validate checks counts, corners and merge operands.
func (t *Trace) Validate() error {
	if t.Vertices < 0 || t.Splits < 0 {
		return errors.Wrapf(ErrInvalidTrace, "negative counts: %d vertices, %d splits", t.Vertices, t.Splits)
	}
	numCorners := 3 * len(t.Faces)
	for i, s := range t.Steps {
		if s.IsMerge() {
			if len(s.Merge) != 2 {
				return errors.Wrapf(ErrInvalidTrace, "step %d: merge needs [dest, src]", i)
			}
			for _, v := range s.Merge {
				if v < 0 || v >= t.NumVertices() {
					return errors.Wrapf(ErrInvalidTrace, "step %d: vertex %d of %d", i, v, t.NumVertices())
				}
			}
			continue
		}
		if len(s.Merge) != 0 {
			return errors.Wrapf(ErrInvalidTrace, "step %d: both symbol and merge", i)
		}
		if s.Corner < 0 || s.Corner >= numCorners {
			return errors.Wrapf(ErrInvalidTrace, "step %d: corner %d of %d", i, s.Corner, numCorners)
		}
	}
	return nil
}

// Mesh builds the corner table of the trace's faces.
func (t *Trace) Mesh() (*cornertable.Table, error) {
	return cornertable.New(t.Faces, t.NumVertices())
}

// CornerTable returns Mesh behind the interface the coders read.
func (t *Trace) CornerTable() (edgebreaker.CornerTable, error) {
	tbl, err := t.Mesh()
	if err != nil {
		return nil, err
	}
	return corners{tbl}, nil
}

// corners adapts cornertable.Table to edgebreaker.CornerTable.
type corners struct {
	t *cornertable.Table
}

func (c corners) Next(i edgebreaker.CornerIndex) edgebreaker.CornerIndex {
	return edgebreaker.CornerIndex(c.t.Next(int(i)))
}

func (c corners) Previous(i edgebreaker.CornerIndex) edgebreaker.CornerIndex {
	return edgebreaker.CornerIndex(c.t.Previous(int(i)))
}

func (c corners) Vertex(i edgebreaker.CornerIndex) edgebreaker.VertexIndex {
	return edgebreaker.VertexIndex(c.t.Vertex(int(i)))
}

// Result is the outcome of decoding a trace.
type Result struct {
	Symbols  []edgebreaker.TopologySymbol
	Contexts []int // context each symbol came from, -1 for the base coder
	Valences []int
}

// Encode replays the trace through a ValenceEncoder and returns the stream.
func Encode(t *Trace, logger *slog.Logger) ([]byte, error) {
	enc, err := NewEncoder(t, logger)
	if err != nil {
		return nil, err
	}
	return enc.Bytes()
}

// NewEncoder replays the trace through a fresh ValenceEncoder and returns
// it ready to write the stream.
func NewEncoder(t *Trace, logger *slog.Logger) (*edgebreaker.ValenceEncoder, error) {
	ct, err := t.CornerTable()
	if err != nil {
		return nil, err
	}
	enc, err := edgebreaker.NewValenceEncoder(ct, t.Vertices, t.Splits, edgebreaker.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	for i, s := range t.Steps {
		if s.IsMerge() {
			if err := enc.MergeVertices(edgebreaker.VertexIndex(s.Merge[0]), edgebreaker.VertexIndex(s.Merge[1])); err != nil {
				return nil, errors.Wrapf(err, "step %d", i)
			}
			continue
		}
		if err := enc.EncodeSymbol(*s.Symbol); err != nil {
			return nil, errors.Wrapf(err, "step %d", i)
		}
		if err := enc.NewActiveCornerReached(edgebreaker.CornerIndex(s.Corner)); err != nil {
			return nil, errors.Wrapf(err, "step %d", i)
		}
	}
	return enc, nil
}

// Decode replays the trace's corners and merges against a ValenceDecoder
// reading data. The trace's own symbols are not consulted; use Verify to
// compare them with the result.
func Decode(t *Trace, data []byte, logger *slog.Logger) (*Result, error) {
	ct, err := t.CornerTable()
	if err != nil {
		return nil, err
	}
	dec := edgebreaker.NewValenceDecoder(ct, edgebreaker.WithLogger(logger))
	dec.SetNumEncodedVertices(t.Vertices)
	if err := dec.Start(edgebreaker.NewDecoderBuffer(data)); err != nil {
		return nil, err
	}

	res := &Result{}
	for i, s := range t.Steps {
		if s.IsMerge() {
			if err := dec.MergeVertices(edgebreaker.VertexIndex(s.Merge[0]), edgebreaker.VertexIndex(s.Merge[1])); err != nil {
				return nil, errors.Wrapf(err, "step %d", i)
			}
			continue
		}
		ctx, ok := dec.ActiveContext()
		if !ok {
			ctx = -1
		}
		sym, err := dec.DecodeSymbol()
		if err != nil {
			return nil, errors.Wrapf(err, "step %d", i)
		}
		if err := dec.NewActiveCornerReached(edgebreaker.CornerIndex(s.Corner)); err != nil {
			return nil, errors.Wrapf(err, "step %d", i)
		}
		res.Symbols = append(res.Symbols, sym)
		res.Contexts = append(res.Contexts, ctx)
	}
	if err := dec.Finish(); err != nil {
		return nil, err
	}

	res.Valences = make([]int, dec.NumVertices())
	for v := range res.Valences {
		res.Valences[v] = dec.Valence(edgebreaker.VertexIndex(v))
	}
	return res, nil
}

// Verify compares decoded symbols with the trace.
func Verify(t *Trace, res *Result) error {
	want := t.Symbols()
	if len(want) != len(res.Symbols) {
		return errors.Wrapf(ErrMismatch, "decoded %d symbols, trace has %d", len(res.Symbols), len(want))
	}
	for i := range want {
		if want[i] != res.Symbols[i] {
			return errors.Wrapf(ErrMismatch, "symbol %d: decoded %s, trace has %s", i, res.Symbols[i], want[i])
		}
	}
	return nil
}

// VerifyValences checks that every decoded valence equals the number of
// distinct edges at that vertex of the trace's mesh. It holds once a
// traversal has decoded the whole mesh and no split vertex is left unmerged.
func VerifyValences(t *Trace, res *Result) error {
	tbl, err := t.Mesh()
	if err != nil {
		return err
	}
	if len(res.Valences) != tbl.NumVertices() {
		return errors.Wrapf(ErrValenceMismatch, "decoded %d valences for %d vertices", len(res.Valences), tbl.NumVertices())
	}
	for v, want := range tbl.Valences() {
		if res.Valences[v] != want {
			return errors.Wrapf(ErrValenceMismatch, "vertex %d: decoded %d, mesh has %d edges", v, res.Valences[v], want)
		}
	}
	return nil
}
