package modifier

import (
	"bytes"
	"io"
)

// Emitter is the sink every escape function writes to. Splitting append-byte
// from append-bytes lets a modifier avoid allocating a one-byte slice for
// the common case of emitting a single escaped character.
type Emitter interface {
	EmitBytes(p []byte)
	EmitByte(b byte)
	EmitString(s string)
}

// BufferEmitter adapts a *bytes.Buffer to Emitter. It is used for the
// intermediate buffers in a modifier chain (see Chain in apply.go).
type BufferEmitter struct {
	Buf *bytes.Buffer
}

func (e BufferEmitter) EmitBytes(p []byte)  { e.Buf.Write(p) }
func (e BufferEmitter) EmitByte(b byte)     { e.Buf.WriteByte(b) }
func (e BufferEmitter) EmitString(s string) { e.Buf.WriteString(s) }

// WriterEmitter adapts an io.Writer to Emitter, for the final modifier in a
// chain, which writes straight to the expander's output stream.
type WriterEmitter struct {
	W io.Writer
}

func (e WriterEmitter) EmitBytes(p []byte) { e.W.Write(p) }
func (e WriterEmitter) EmitByte(b byte)    { e.W.Write([]byte{b}) }
func (e WriterEmitter) EmitString(s string) {
	io.WriteString(e.W, s)
}
