// Package cornertable provides a flat, face-list corner table.
//
// Corner c belongs to face c/3. Within a face the corners are wound
// 0 -> 1 -> 2 -> 0, so Next(c) = c+1 except for the last corner of a
// face, and Previous is its inverse.
package cornertable

import (
	"github.com/pkg/errors"
)

// ErrInvalidFace indicates a face that references a vertex outside the table.
var ErrInvalidFace = errors.New("cornertable: invalid face")

// Table maps corners to vertices for a triangle mesh.
type Table struct {
	corners     []int
	numVertices int
}

// New builds a table from triangle faces. Every vertex id must lie in
// [0, numVertices).
func New(faces [][3]int, numVertices int) (*Table, error) {
	t := &Table{
		corners:     make([]int, 0, 3*len(faces)),
		numVertices: numVertices,
	}
	for i, f := range faces {
		for _, v := range f {
			if v < 0 || v >= numVertices {
				return nil, errors.Wrapf(ErrInvalidFace, "face %d references vertex %d of %d", i, v, numVertices)
			}
		}
		t.corners = append(t.corners, f[0], f[1], f[2])
	}
	return t, nil
}

// NumCorners returns the number of corners (three per face).
func (t *Table) NumCorners() int { return len(t.corners) }

// NumFaces returns the number of faces.
func (t *Table) NumFaces() int { return len(t.corners) / 3 }

// NumVertices returns the vertex count the table was built for.
func (t *Table) NumVertices() int { return t.numVertices }

// Next returns the next corner of the same face.
func (t *Table) Next(c int) int {
	if c%3 == 2 {
		return c - 2
	}
	return c + 1
}

// Previous returns the previous corner of the same face.
func (t *Table) Previous(c int) int {
	if c%3 == 0 {
		return c + 2
	}
	return c - 1
}

// Vertex returns the vertex at corner c, or -1 when c is not a corner of
// the table.
func (t *Table) Vertex(c int) int {
	if c < 0 || c >= len(t.corners) {
		return -1
	}
	return t.corners[c]
}

// Valences returns the number of distinct edges incident to each vertex.
func (t *Table) Valences() []int {
	type edge struct{ a, b int }
	seen := make(map[edge]struct{}, len(t.corners))
	val := make([]int, t.numVertices)
	for c := range t.corners {
		a, b := t.corners[c], t.corners[t.Next(c)]
		if a > b {
			a, b = b, a
		}
		if _, ok := seen[edge{a, b}]; ok {
			continue
		}
		seen[edge{a, b}] = struct{}{}
		val[a]++
		val[b]++
	}
	return val
}
