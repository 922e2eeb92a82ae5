package backend

import (
	"bytes"
	"sync"

	"reflow_predictor/internal/logger"
)

const maxLineBytes = 4096

// lineWriter logs every complete line written to it.
type lineWriter struct {
	log    *logger.Logger
	event  string
	stream string

	mu  sync.Mutex
	buf []byte
}

func newLineWriter(log *logger.Logger, event, stream string) *lineWriter {
	return &lineWriter{log: log, event: event, stream: stream}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	if len(w.buf) > maxLineBytes {
		w.emit(w.buf)
		w.buf = w.buf[:0]
	}
	return len(p), nil
}

// Flush logs a trailing partial line.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		w.emit(w.buf)
		w.buf = w.buf[:0]
	}
}

func (w *lineWriter) emit(line []byte) {
	line = bytes.TrimRight(line, "\r")
	if len(line) == 0 {
		return
	}
	if w.stream == "stderr" {
		w.log.Warnw(w.event, "stream", w.stream, "line", string(line))
		return
	}
	w.log.Infow(w.event, "stream", w.stream, "line", string(line))
}
