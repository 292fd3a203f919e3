package modifier

import "bytes"

// Application is one resolved modifier call: a registry entry plus its
// literal argument text (empty, or starting with '='). It mirrors
// node.ModApp field-for-field; the two stay separate types so this
// package never has to import package node.
type Application struct {
	Info *Info
	Arg  string
}

// Chain pipes in through every application in order, writing the final
// result to out. Each intermediate stage writes into a scratch buffer
// sized len(in) + len(in)/8 + 16, the same growth allowance the original
// used for an escaped string's typical expansion, to keep reallocation
// rare without over-allocating for long inputs.
func Chain(apps []Application, data *Data, in []byte, out Emitter) {
	if len(apps) == 0 {
		out.EmitBytes(in)
		return
	}
	cur := in
	for i, app := range apps {
		if i == len(apps)-1 {
			app.Info.Func(cur, app.Arg, data, out)
			return
		}
		buf := bytes.NewBuffer(make([]byte, 0, len(cur)+len(cur)/8+16))
		app.Info.Func(cur, app.Arg, data, BufferEmitter{Buf: buf})
		cur = buf.Bytes()
	}
}
