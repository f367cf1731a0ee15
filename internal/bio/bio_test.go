package bio

import (
	"bytes"
	"errors"
	"testing"
)

// errWriter is an io.Writer that always returns an error after n writes.
type errWriter struct {
	n   int
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.n <= 0 {
		return 0, e.err
	}
	e.n--
	return len(p), nil
}

func TestReader_ReadBit(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected []int
	}{
		{"all zeros", []byte{0x00}, []int{0, 0, 0, 0, 0, 0, 0, 0}},
		{"all ones", []byte{0xFF}, []int{1, 1, 1, 1, 1, 1, 1, 1}},
		{"alternating", []byte{0xAA}, []int{1, 0, 1, 0, 1, 0, 1, 0}},
		{"two bytes", []byte{0x80, 0x01}, []int{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(bytes.NewReader(tt.data))
			for i, want := range tt.expected {
				got, err := r.ReadBit()
				if err != nil {
					t.Fatalf("ReadBit() at position %d returned error: %v", i, err)
				}
				if got != want {
					t.Errorf("ReadBit() at position %d = %d, want %d", i, got, want)
				}
			}
		})
	}
}

func TestReader_ReadBit_EOF(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xFF}))
	for i := 0; i < 8; i++ {
		if _, err := r.ReadBit(); err != nil {
			t.Fatalf("ReadBit() at position %d returned error: %v", i, err)
		}
	}
	_, err := r.ReadBit()
	if !errors.Is(err, ErrShortBuffer) {
		t.Errorf("ReadBit() past end error = %v, want ErrShortBuffer", err)
	}
}

func TestReader_ReadBits(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		n        uint
		expected uint32
	}{
		{"read 0 bits", []byte{0xFF}, 0, 0},
		{"read 1 bit", []byte{0x80}, 1, 1},
		{"read 3 bits", []byte{0xE0}, 3, 7},
		{"read 12 bits crossing byte boundary", []byte{0xAB, 0xCD}, 12, 0xABC},
		{"read 32 bits", []byte{0x12, 0x34, 0x56, 0x78}, 32, 0x12345678},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(bytes.NewReader(tt.data))
			got, err := r.ReadBits(tt.n)
			if err != nil {
				t.Fatalf("ReadBits(%d) returned error: %v", tt.n, err)
			}
			if got != tt.expected {
				t.Errorf("ReadBits(%d) = 0x%X, want 0x%X", tt.n, got, tt.expected)
			}
		})
	}
}

func TestWriter_Flush(t *testing.T) {
	tests := []struct {
		name     string
		bits     []int
		expected []byte
	}{
		{"no bits", nil, nil},
		{"one bit", []int{1}, []byte{0x80}},
		{"three bits", []int{1, 0, 1}, []byte{0xA0}},
		{"full byte", []int{1, 1, 1, 1, 0, 0, 0, 0}, []byte{0xF0}},
		{"nine bits", []int{0, 0, 0, 0, 0, 0, 0, 1, 1}, []byte{0x01, 0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf)
			for _, b := range tt.bits {
				if err := w.WriteBit(b); err != nil {
					t.Fatal(err)
				}
			}
			if err := w.Flush(); err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(buf.Bytes(), tt.expected) {
				t.Errorf("got %X, want %X", buf.Bytes(), tt.expected)
			}
		})
	}
}

func TestWriter_WriteBit_Error(t *testing.T) {
	want := errors.New("write failed")
	w := NewWriter(&errWriter{n: 0, err: want})
	var err error
	for i := 0; i < 8 && err == nil; i++ {
		err = w.WriteBit(1)
	}
	if !errors.Is(err, want) {
		t.Errorf("WriteBit() error = %v, want %v", err, want)
	}
}

func TestRoundTrip_MixedBitLengths(t *testing.T) {
	values := []struct {
		val uint32
		n   uint
	}{
		{0, 1}, {1, 1}, {5, 3}, {3, 2}, {0x1FF, 9}, {0xDEADBEEF, 32}, {7, 3},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, v := range values {
		if err := w.WriteBits(v.val, v.n); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	for i, v := range values {
		got, err := r.ReadBits(v.n)
		if err != nil {
			t.Fatalf("value %d: %v", i, err)
		}
		if got != v.val {
			t.Errorf("value %d: got 0x%X, want 0x%X", i, got, v.val)
		}
	}
}

func BenchmarkReader_ReadBits(b *testing.B) {
	data := bytes.Repeat([]byte{0xA5}, 4096)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := NewReader(bytes.NewReader(data))
		for j := 0; j < 4096*8/3; j++ {
			_, _ = r.ReadBits(3)
		}
	}
}
