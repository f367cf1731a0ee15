// Package entropy implements the entropy coding used by edgebreaker streams.
//
// This includes:
// - MQ coder (adaptive binary arithmetic coder)
// - Binary-tree symbol coding over MQ contexts
// - Bulk symbol sequence encode/decode with length-prefixed payloads
package entropy

// mqState represents a state in the MQ coder state machine.
type mqState struct {
	Qe   uint32 // Probability estimate (fixed-point, qeval)
	MPS  uint8  // Most probable symbol for this state (0 or 1)
	NMPS uint8  // Next state index if MPS occurs
	NLPS uint8  // Next state index if LPS occurs
}

// mqStates is the ISO/IEC 15444-1 Annex C probability estimation table,
// doubled so that even indices carry MPS=0 and odd indices MPS=1.
var mqStates = []mqState{
	{0x5601, 0, 2, 3},   // 0
	{0x5601, 1, 3, 2},   // 1
	{0x3401, 0, 4, 12},  // 2
	{0x3401, 1, 5, 13},  // 3
	{0x1801, 0, 6, 18},  // 4
	{0x1801, 1, 7, 19},  // 5
	{0x0AC1, 0, 8, 24},  // 6
	{0x0AC1, 1, 9, 25},  // 7
	{0x0521, 0, 10, 58}, // 8
	{0x0521, 1, 11, 59}, // 9
	{0x0221, 0, 76, 66}, // 10
	{0x0221, 1, 77, 67}, // 11
	{0x5601, 0, 14, 13}, // 12
	{0x5601, 1, 15, 12}, // 13
	{0x5401, 0, 16, 28}, // 14
	{0x5401, 1, 17, 29}, // 15
	{0x4801, 0, 18, 28}, // 16
	{0x4801, 1, 19, 29}, // 17
	{0x3801, 0, 20, 28}, // 18
	{0x3801, 1, 21, 29}, // 19
	{0x3001, 0, 22, 34}, // 20
	{0x3001, 1, 23, 35}, // 21
	{0x2401, 0, 24, 36}, // 22
	{0x2401, 1, 25, 37}, // 23
	{0x1C01, 0, 26, 40}, // 24
	{0x1C01, 1, 27, 41}, // 25
	{0x1601, 0, 58, 42}, // 26
	{0x1601, 1, 59, 43}, // 27
	{0x5601, 0, 30, 29}, // 28
	{0x5601, 1, 31, 28}, // 29
	{0x5401, 0, 32, 28}, // 30
	{0x5401, 1, 33, 29}, // 31
	{0x5101, 0, 34, 30}, // 32
	{0x5101, 1, 35, 31}, // 33
	{0x4801, 0, 36, 32}, // 34
	{0x4801, 1, 37, 33}, // 35
	{0x3801, 0, 38, 34}, // 36
	{0x3801, 1, 39, 35}, // 37
	{0x3401, 0, 40, 36}, // 38
	{0x3401, 1, 41, 37}, // 39
	{0x3001, 0, 42, 38}, // 40
	{0x3001, 1, 43, 39}, // 41
	{0x2801, 0, 44, 38}, // 42
	{0x2801, 1, 45, 39}, // 43
	{0x2401, 0, 46, 40}, // 44
	{0x2401, 1, 47, 41}, // 45
	{0x2201, 0, 48, 42}, // 46
	{0x2201, 1, 49, 43}, // 47
	{0x1C01, 0, 50, 44}, // 48
	{0x1C01, 1, 51, 45}, // 49
	{0x1801, 0, 52, 46}, // 50
	{0x1801, 1, 53, 47}, // 51
	{0x1601, 0, 54, 48}, // 52
	{0x1601, 1, 55, 49}, // 53
	{0x1401, 0, 56, 50}, // 54
	{0x1401, 1, 57, 51}, // 55
	{0x1201, 0, 58, 52}, // 56
	{0x1201, 1, 59, 53}, // 57
	{0x1101, 0, 60, 54}, // 58
	{0x1101, 1, 61, 55}, // 59
	{0x0AC1, 0, 62, 56}, // 60
	{0x0AC1, 1, 63, 57}, // 61
	{0x09C1, 0, 64, 58}, // 62
	{0x09C1, 1, 65, 59}, // 63
	{0x08A1, 0, 66, 60}, // 64
	{0x08A1, 1, 67, 61}, // 65
	{0x0521, 0, 68, 62}, // 66
	{0x0521, 1, 69, 63}, // 67
	{0x0441, 0, 70, 64}, // 68
	{0x0441, 1, 71, 65}, // 69
	{0x02A1, 0, 72, 66}, // 70
	{0x02A1, 1, 73, 67}, // 71
	{0x0221, 0, 74, 68}, // 72
	{0x0221, 1, 75, 69}, // 73
	{0x0141, 0, 76, 70}, // 74
	{0x0141, 1, 77, 71}, // 75
	{0x0111, 0, 78, 72}, // 76
	{0x0111, 1, 79, 73}, // 77
	{0x0085, 0, 80, 74}, // 78
	{0x0085, 1, 81, 75}, // 79
	{0x0049, 0, 82, 76}, // 80
	{0x0049, 1, 83, 77}, // 81
	{0x0025, 0, 84, 78}, // 82
	{0x0025, 1, 85, 79}, // 83
	{0x0015, 0, 86, 80}, // 84
	{0x0015, 1, 87, 81}, // 85
	{0x0009, 0, 88, 82}, // 86
	{0x0009, 1, 89, 83}, // 87
	{0x0005, 0, 90, 84}, // 88
	{0x0005, 1, 91, 85}, // 89
	{0x0001, 0, 90, 86}, // 90
	{0x0001, 1, 91, 87}, // 91
	{0x5601, 0, 92, 92}, // 92 - Uniform context (MPS=0)
	{0x5601, 1, 93, 93}, // 93 - Uniform context (MPS=1)
}


// Flat arrays indexed directly by state number.
var (
	mqQe   [94]uint32
	mqNMPS [94]uint8
	mqNLPS [94]uint8
)

func init() {
	for i, s := range mqStates {
		mqQe[i] = s.Qe
		mqNMPS[i] = s.NMPS
		mqNLPS[i] = s.NLPS
	}
}

// MQEncoder implements the MQ arithmetic encoder over a fixed number of
// adaptive contexts. Every context starts in state 0.
type MQEncoder struct {
	A  uint32 // Interval size
	C  uint32 // Code register
	CT uint32 // Bit counter

	buf []byte
	// bp is the index of the last written byte; buf[0] is a placeholder.
	bp       int
	contexts []uint8
}

// NewMQEncoder creates an encoder with numContexts adaptive contexts.
func NewMQEncoder(numContexts int) *MQEncoder {
	e := &MQEncoder{contexts: make([]uint8, numContexts)}
	e.Reset()
	return e
}

// Reset resets the encoder state and all contexts.
func (e *MQEncoder) Reset() {
	e.A = 0x8000
	e.C = 0
	e.CT = 12
	if cap(e.buf) > 0 {
		e.buf = e.buf[:1]
	} else {
		e.buf = make([]byte, 1, 256)
	}
	e.buf[0] = 0
	e.bp = 0
	for i := range e.contexts {
		e.contexts[i] = 0
	}
}

// Encode encodes a binary decision (0 or 1) for the given context.
func (e *MQEncoder) Encode(ctx int, decision int) {
	stateIdx := e.contexts[ctx]
	qe := mqQe[stateIdx]
	// MPS is determined by state index: even = 0, odd = 1
	mps := stateIdx & 1

	e.A -= qe

	if uint8(decision) == mps {
		if (e.A & 0x8000) == 0 {
			if e.A < qe {
				e.A = qe
			} else {
				e.C += qe
			}
			e.contexts[ctx] = mqNMPS[stateIdx]
			e.renormEnc()
		} else {
			e.C += qe
		}
	} else {
		if e.A < qe {
			e.C += qe
		} else {
			e.A = qe
		}
		e.contexts[ctx] = mqNLPS[stateIdx]
		e.renormEnc()
	}
}

func (e *MQEncoder) renormEnc() {
	for (e.A & 0x8000) == 0 {
		e.A <<= 1
		e.C <<= 1
		e.CT--
		if e.CT == 0 {
			e.byteOut()
		}
	}
}

// emit appends the next output byte.
func (e *MQEncoder) emit(b byte) {
	e.bp++
	if e.bp >= len(e.buf) {
		e.buf = append(e.buf, 0)
	}
	e.buf[e.bp] = b
}

// byteOut outputs a byte with bit stuffing after 0xFF.
func (e *MQEncoder) byteOut() {
	if e.buf[e.bp] == 0xFF {
		e.emit(byte(e.C >> 20))
		e.C &= 0xFFFFF
		e.CT = 7
		return
	}
	if (e.C & 0x8000000) == 0 {
		e.emit(byte(e.C >> 19))
		e.C &= 0x7FFFF
		e.CT = 8
		return
	}
	// carry into the previous byte
	e.buf[e.bp]++
	if e.buf[e.bp] == 0xFF {
		e.C &= 0x7FFFFFF
		e.emit(byte(e.C >> 20))
		e.C &= 0xFFFFF
		e.CT = 7
		return
	}
	e.emit(byte(e.C >> 19))
	e.C &= 0x7FFFF
	e.CT = 8
}

// Flush terminates the code stream and returns the compressed data.
// The returned slice aliases the encoder's buffer until the next Reset.
func (e *MQEncoder) Flush() []byte {
	e.setbits()
	e.C <<= e.CT
	e.byteOut()
	e.C <<= e.CT
	e.byteOut()

	// A trailing 0xFF is implied by the decoder.
	endPos := e.bp + 1
	if endPos > 0 && e.buf[endPos-1] == 0xFF {
		endPos--
	}
	if endPos > 1 {
		return e.buf[1:endPos]
	}
	return nil
}

func (e *MQEncoder) setbits() {
	tempC := e.C + e.A
	e.C |= 0xFFFF
	if e.C >= tempC {
		e.C -= 0x8000
	}
}

// MQDecoder implements the MQ arithmetic decoder.
type MQDecoder struct {
	C  uint32 // Code register
	A  uint32 // Interval size
	CT uint32 // Bit counter

	bp       int
	data     []byte
	contexts []uint8
	// endCounter counts synthetic 0xFF bytes fed after the end of data.
	endCounter int
}

// NewMQDecoder creates a decoder over data with numContexts adaptive contexts.
func NewMQDecoder(data []byte, numContexts int) *MQDecoder {
	d := &MQDecoder{
		data:     data,
		bp:       -1,
		contexts: make([]uint8, numContexts),
	}

	// INITDEC
	if len(data) == 0 {
		d.C = 0xFF << 16
	} else {
		d.bp = 0
		d.C = uint32(data[0]) << 16
	}
	d.byteIn()
	d.C <<= 7
	d.CT -= 7
	d.A = 0x8000

	return d
}

// Overrun returns how many bytes past the end of data the decoder has consumed.
func (d *MQDecoder) Overrun() int {
	return d.endCounter
}

func (d *MQDecoder) byteIn() {
	if d.bp < 0 {
		d.bp = 0
	}

	if d.bp >= len(d.data) {
		d.C += 0xFF00
		d.CT = 8
		d.endCounter++
		return
	}

	var nextByte byte
	if d.bp+1 < len(d.data) {
		nextByte = d.data[d.bp+1]
	} else {
		nextByte = 0xFF
	}

	if d.data[d.bp] == 0xFF {
		if nextByte > 0x8F {
			d.C += 0xFF00
			d.CT = 8
			d.endCounter++
		} else {
			d.bp++
			d.C += uint32(nextByte) << 9
			d.CT = 7
		}
	} else {
		d.bp++
		d.C += uint32(nextByte) << 8
		d.CT = 8
	}
}

// Decode decodes a binary decision for the given context.
func (d *MQDecoder) Decode(ctx int) int {
	stateIdx := d.contexts[ctx]
	qe := mqQe[stateIdx]
	mps := int(stateIdx & 1)

	d.A -= qe

	if (d.C >> 16) < qe {
		var decision int
		if d.A < qe {
			// conditional exchange
			d.A = qe
			decision = mps
			d.contexts[ctx] = mqNMPS[stateIdx]
		} else {
			d.A = qe
			decision = 1 - mps
			d.contexts[ctx] = mqNLPS[stateIdx]
		}
		d.renormDec()
		return decision
	}

	d.C -= qe << 16
	if (d.A & 0x8000) == 0 {
		var decision int
		if d.A < qe {
			decision = 1 - mps
			d.contexts[ctx] = mqNLPS[stateIdx]
		} else {
			decision = mps
			d.contexts[ctx] = mqNMPS[stateIdx]
		}
		d.renormDec()
		return decision
	}
	return mps
}

func (d *MQDecoder) renormDec() {
	for (d.A & 0x8000) == 0 {
		if d.CT == 0 {
			d.byteIn()
		}
		d.A <<= 1
		d.C <<= 1
		d.CT--
	}
}
