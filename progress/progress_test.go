package progress_test

import (
	"testing"
	"time"

	"github.com/ffkit/ffproc/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCanonicalLine(t *testing.T) {
	line := "frame=  100 fps=25.0 q=28.0 size=    1024kB time=00:00:04.00 bitrate=2097.2kbits/s speed=1.00x"
	snap, ok := progress.ParseLine(line)
	require.True(t, ok)

	require.NotNil(t, snap.Frame)
	assert.Equal(t, uint64(100), *snap.Frame)
	require.NotNil(t, snap.FPS)
	assert.Equal(t, 25.0, *snap.FPS)
	require.NotNil(t, snap.Q)
	assert.Equal(t, 28.0, *snap.Q)
	require.NotNil(t, snap.Size)
	assert.Equal(t, uint64(1048576), *snap.Size)
	require.NotNil(t, snap.Time)
	assert.Equal(t, 4*time.Second, *snap.Time)
	require.NotNil(t, snap.Bitrate)
	assert.InDelta(t, 2097200.0, *snap.Bitrate, 1e-3)
	require.NotNil(t, snap.Speed)
	assert.Equal(t, 1.0, *snap.Speed)
}

func TestParseNonProgressLines(t *testing.T) {
	for _, line := range []string{
		"",
		"ffmpeg version 6.0 Copyright (c) 2000-2023 the FFmpeg developers",
		"Stream mapping:",
		"Output #0, mp4, to 'out.mp4':",
		"video:1024kB audio:128kB subtitle:0kB other streams:0kB",
	} {
		_, ok := progress.ParseLine(line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestParseBadFieldKeepsRest(t *testing.T) {
	snap, ok := progress.ParseLine("frame=abc fps=25.0")
	require.True(t, ok, "a bad field does not disqualify the line")
	assert.Nil(t, snap.Frame)
	require.NotNil(t, snap.FPS)
	assert.Equal(t, 25.0, *snap.FPS)
}

func TestParseNegativeQ(t *testing.T) {
	snap, ok := progress.ParseLine("frame=10 q=-1.0")
	require.True(t, ok)
	require.NotNil(t, snap.Q)
	assert.Equal(t, -1.0, *snap.Q)
}

func TestParseMissingSuffixes(t *testing.T) {
	// suffix-bearing fields without their suffix are treated as unknown,
	// as is ffmpeg's "N/A" placeholder
	snap, ok := progress.ParseLine("frame=10 size=1024 bitrate=N/A speed=N/A")
	require.True(t, ok)
	require.NotNil(t, snap.Frame)
	assert.Nil(t, snap.Size)
	assert.Nil(t, snap.Bitrate)
	assert.Nil(t, snap.Speed)
}

func TestParseIgnoresUnknownKeys(t *testing.T) {
	snap, ok := progress.ParseLine("frame=10 dup=0 drop=5 Lsize=99kB")
	require.True(t, ok)
	require.NotNil(t, snap.Frame)
	assert.Equal(t, uint64(10), *snap.Frame)
	assert.Nil(t, snap.Size)
}

func TestSizeRoundTrip(t *testing.T) {
	formatted := progress.FormatSize(1048576)
	assert.Equal(t, "1024kB", formatted)

	snap, ok := progress.ParseLine("frame=1 size=" + formatted)
	require.True(t, ok)
	require.NotNil(t, snap.Size)
	assert.Equal(t, uint64(1048576), *snap.Size)
}

func TestSnapshotStringRoundTrip(t *testing.T) {
	snap, ok := progress.ParseLine("frame=  100 fps=25.0 q=28.0 size=    1024kB time=00:00:04.00 bitrate=2097.2kbits/s speed=1.00x")
	require.True(t, ok)

	reparsed, ok := progress.ParseLine(snap.String())
	require.True(t, ok)
	assert.Equal(t, *snap.Frame, *reparsed.Frame)
	assert.Equal(t, *snap.FPS, *reparsed.FPS)
	assert.Equal(t, *snap.Q, *reparsed.Q)
	assert.Equal(t, *snap.Size, *reparsed.Size)
	assert.Equal(t, *snap.Time, *reparsed.Time)
	assert.Equal(t, *snap.Bitrate, *reparsed.Bitrate)
	assert.Equal(t, *snap.Speed, *reparsed.Speed)
}

func TestSnapshotStringSparse(t *testing.T) {
	frame := uint64(7)
	snap := progress.Snapshot{Frame: &frame}
	assert.Equal(t, "frame=7", snap.String())

	assert.Empty(t, progress.Snapshot{}.String())
}
