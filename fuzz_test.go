package edgebreaker

import (
	"testing"
)

// FuzzValenceDecoder feeds arbitrary streams through the full decode protocol.
// Run with: go test -fuzz=FuzzValenceDecoder -fuzztime=60s
func FuzzValenceDecoder(f *testing.F) {
	tbl := faceTable{0, 1, 2, 2, 1, 3, 3, 4, 0, 5, 4, 3}

	enc, err := NewValenceEncoder(tbl, 6, 1)
	if err != nil {
		f.Fatal(err)
	}
	for i, s := range []TopologySymbol{TopologyE, TopologyC, TopologyS, TopologyR, TopologyL, TopologyC} {
		if err := enc.EncodeSymbol(s); err != nil {
			f.Fatal(err)
		}
		if err := enc.NewActiveCornerReached(CornerIndex(2 * i)); err != nil {
			f.Fatal(err)
		}
	}
	valid, err := enc.Bytes()
	if err != nil {
		f.Fatal(err)
	}
	f.Add(valid)

	// Empty input
	f.Add([]byte{})
	// Header with an unsupported mode
	f.Add([]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x05})
	// Huge announced symbol count
	f.Add([]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0x07})

	f.Fuzz(func(t *testing.T, data []byte) {
		// The decoder should never panic, regardless of input
		dec := NewValenceDecoder(tbl)
		dec.SetNumEncodedVertices(6)
		if err := dec.Start(NewDecoderBuffer(data)); err != nil {
			return
		}
		for i := 0; i < 64; i++ {
			if _, err := dec.DecodeSymbol(); err != nil {
				return
			}
			if err := dec.NewActiveCornerReached(CornerIndex(i % len(tbl))); err != nil {
				return
			}
			if i%7 == 3 {
				_ = dec.MergeVertices(VertexIndex(i%6), 6)
			}
		}
		_ = dec.Finish()
	})
}
