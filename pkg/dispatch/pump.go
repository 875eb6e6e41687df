package dispatch

import "io"

// pumpChunkSize is a policy choice, not a correctness constraint: chunks only
// need to be small enough that partial output feels live.
const pumpChunkSize = 1024

// Pump forwards r to sink in chunks until end-of-stream. Read errors end the
// pump silently: the bytes already forwarded are still useful to the
// consumer. The sink must not block; Queue.Push qualifies.
func Pump(r io.Reader, sink func([]byte)) {
	buf := make([]byte, pumpChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			sink(chunk)
		}
		if err != nil {
			return
		}
	}
}
