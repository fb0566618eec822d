package progress

import (
	"bufio"
	"io"
)

// Sink receives decoded snapshots. It runs on the reader's goroutine, so it
// must not block for long.
type Sink func(Snapshot)

// maxLine bounds a single stderr line; anything longer is log noise we can
// afford to drop along with the rest of the stream.
const maxLine = 1024 * 1024

// Stream reads r line by line until EOF, delivering every line that decodes
// as a progress report to sink, in the order the lines were written. Lines
// that do not decode are dropped, and read errors end the stream the same
// way EOF does.
func Stream(r io.Reader, sink Sink) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	scanner.Split(scanCRLines)
	for scanner.Scan() {
		if snap, ok := ParseLine(scanner.Text()); ok {
			sink(snap)
		}
	}
}

// scanCRLines splits on \r as well as \n: ffmpeg rewrites its stats line in
// place with a bare carriage return, so newline-only splitting would only
// surface the final line.
func scanCRLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i := 0; i < len(data); i++ {
		if data[i] == '\r' || data[i] == '\n' {
			advance = i + 1
			for advance < len(data) && (data[advance] == '\r' || data[advance] == '\n') {
				advance++
			}
			return advance, data[:i], nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
