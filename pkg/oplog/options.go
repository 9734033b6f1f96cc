package oplog

// Options configures a Writer.
type Options struct {
	// BufferSize is the in-memory bufio buffer size before flushing to the
	// underlying writer.
	BufferSize int
}

// DefaultOptions returns a reasonable default for journaling a stress test run.
func DefaultOptions() Options {
	return Options{
		BufferSize: 64 * 1024,
	}
}
