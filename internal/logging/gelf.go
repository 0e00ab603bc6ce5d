package logging

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Graylog2/go-gelf/gelf"
)

// NewGelfHandler sends JSON records to a Graylog input over UDP. The returned
// closer releases the socket.
func NewGelfHandler(address, level string) (slog.Handler, io.Closer, error) {
	w, err := gelf.NewWriter(address)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to graylog at %s: %w", address, err)
	}
	w.Facility = ServiceName
	return NewWriterHandler(w, level), w, nil
}

// NewWriterHandler builds a JSON handler on w with the standard options.
func NewWriterHandler(w io.Writer, level string) slog.Handler {
	return slog.NewJSONHandler(w, handlerOptions(parseLevel(level)))
}
