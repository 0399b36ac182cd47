package client

import (
	"bufio"
	"io"
	"strings"
)

// Frame is one server-sent event
type Frame struct {
	Event string
	Data  string
}

// Stream reads frames from an event-stream body
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

func newStream(body io.ReadCloser) *Stream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Stream{body: body, scanner: scanner}
}

// Next blocks until a whole frame has arrived. It returns io.EOF when the server closes the
// stream.
func (s *Stream) Next() (Frame, error) {
	var frame Frame
	var data []string
	for s.scanner.Scan() {
		line := s.scanner.Text()
		switch {
		case line == "":
			if frame.Event == "" && len(data) == 0 {
				continue
			}
			frame.Data = strings.Join(data, "\n")
			return frame, nil
		case strings.HasPrefix(line, ":"):
			// keepalive
		case strings.HasPrefix(line, "event:"):
			frame.Event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := s.scanner.Err(); err != nil {
		return Frame{}, err
	}
	return Frame{}, io.EOF
}

// Close ends the stream
func (s *Stream) Close() error {
	return s.body.Close()
}
