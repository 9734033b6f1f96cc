package oplog

import (
	"bufio"
	"io"
	"sync"
)

// Writer appends journal entries to an underlying io.Writer under its own
// lock, so the same journal can be shared across the goroutines of a
// concurrency stress test without each caller having to serialize writes
// itself.
type Writer struct {
	mu      sync.Mutex
	w       *bufio.Writer
	closer  io.Closer // nil if the underlying writer doesn't need closing
	options Options
	seq     uint64
}

// NewWriter wraps w (e.g. an *os.File, or a bytes.Buffer for in-memory use
// in tests) in a journal Writer.
func NewWriter(w io.Writer, opts Options) *Writer {
	c, _ := w.(io.Closer)
	return &Writer{
		w:       bufio.NewWriterSize(w, opts.BufferSize),
		closer:  c,
		options: opts,
	}
}

// AppendPut journals a put(key, value) call and returns its sequence number.
func (w *Writer) AppendPut(keyFingerprint []byte, value string) (uint64, error) {
	return w.append(OpPut, EncodePutPayload(keyFingerprint, value))
}

// AppendRemove journals a remove(key) call and returns its sequence number.
func (w *Writer) AppendRemove(keyFingerprint []byte) (uint64, error) {
	return w.append(OpRemove, EncodeRemovePayload(keyFingerprint))
}

func (w *Writer) append(op OpType, payload []byte) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.seq++
	entry := &Entry{
		Header:  Header{OpType: op, Seq: w.seq},
		Payload: payload,
	}
	if _, err := entry.WriteTo(w.w); err != nil {
		return 0, err
	}
	return w.seq, nil
}

// Flush pushes any buffered bytes to the underlying writer.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Flush()
}

// Close flushes and, if the underlying writer is closeable, closes it.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.w.Flush(); err != nil {
		return err
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}
