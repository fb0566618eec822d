package progress_test

import (
	"strings"
	"testing"

	"github.com/ffkit/ffproc/progress"
	"github.com/stretchr/testify/assert"
)

func TestStreamDeliversInOrder(t *testing.T) {
	// stats lines end in \r when ffmpeg rewrites them in place; the last
	// one and ordinary log lines end in \n
	input := "ffmpeg version 6.0\n" +
		"Stream mapping:\n" +
		"frame=   10 fps=0.0 q=-1.0 size=     256kB time=00:00:00.50 bitrate=4194.3kbits/s speed=0.80x\r" +
		"frame=   20 fps=20.0 q=28.0 size=     512kB time=00:00:01.00 bitrate=4194.3kbits/s speed=0.90x\r" +
		"some log noise in between\n" +
		"frame=   30 fps=21.0 q=28.0 size=     768kB time=00:00:01.50 bitrate=4194.3kbits/s speed=0.95x\n"

	var frames []uint64
	progress.Stream(strings.NewReader(input), func(s progress.Snapshot) {
		if s.Frame != nil {
			frames = append(frames, *s.Frame)
		}
	})
	assert.Equal(t, []uint64{10, 20, 30}, frames)
}

func TestStreamSkipsNoise(t *testing.T) {
	calls := 0
	progress.Stream(strings.NewReader("line one\nline two\n"), func(progress.Snapshot) { calls++ })
	assert.Zero(t, calls)
}

func TestStreamToleratesLongLines(t *testing.T) {
	// a huge banner line must not abort the rest of the stream
	input := strings.Repeat("x", 512*1024) + "\nframe=5\n"

	var frames []uint64
	progress.Stream(strings.NewReader(input), func(s progress.Snapshot) {
		if s.Frame != nil {
			frames = append(frames, *s.Frame)
		}
	})
	assert.Equal(t, []uint64{5}, frames)
}

func TestStreamEmptyInput(t *testing.T) {
	calls := 0
	progress.Stream(strings.NewReader(""), func(progress.Snapshot) { calls++ })
	assert.Zero(t, calls)
}
