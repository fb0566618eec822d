package progress

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ffkit/ffproc/internal/timefmt"
)

// Snapshot is one decoded progress report. Every field is optional: the
// tools omit fields freely depending on codec and stream state, and an
// absent field means unknown, not zero.
type Snapshot struct {
	Frame   *uint64
	FPS     *float64
	Q       *float64       // quality factor, negative for some codecs
	Size    *uint64        // bytes
	Time    *time.Duration // position in the output media
	Bitrate *float64       // bits/s
	Speed   *float64       // realtime multiplier
}

// fieldRe matches one key=value token. ffmpeg right-aligns small values, so
// padding spaces may separate a value from its key.
var fieldRe = regexp.MustCompile(`(\w+)=\s*(\S+)`)

// ParseLine decodes a single stats line. The second return is false when
// the line is not a progress line at all (no "frame=" marker). A field
// whose value fails to parse is left unset; it never invalidates the line,
// and unrecognized keys are ignored.
func ParseLine(line string) (Snapshot, bool) {
	var snap Snapshot
	if !strings.Contains(line, "frame=") {
		return snap, false
	}

	for _, m := range fieldRe.FindAllStringSubmatch(line, -1) {
		key, val := m[1], m[2]
		switch key {
		case "frame":
			if v, err := strconv.ParseUint(val, 10, 64); err == nil {
				snap.Frame = &v
			}
		case "fps":
			if v, err := strconv.ParseFloat(val, 64); err == nil {
				snap.FPS = &v
			}
		case "q":
			if v, err := strconv.ParseFloat(val, 64); err == nil {
				snap.Q = &v
			}
		case "size":
			if kb := strings.TrimSuffix(val, "kB"); kb != val {
				if v, err := strconv.ParseUint(kb, 10, 64); err == nil {
					b := v * 1024
					snap.Size = &b
				}
			}
		case "time":
			if d, err := timefmt.Parse(val); err == nil {
				snap.Time = &d
			}
		case "bitrate":
			if kbits := strings.TrimSuffix(val, "kbits/s"); kbits != val {
				if v, err := strconv.ParseFloat(kbits, 64); err == nil {
					bits := v * 1000
					snap.Bitrate = &bits
				}
			}
		case "speed":
			if x := strings.TrimSuffix(val, "x"); x != val {
				if v, err := strconv.ParseFloat(x, 64); err == nil {
					snap.Speed = &v
				}
			}
		}
	}
	return snap, true
}

// FormatSize renders a byte count in the integer-kibibyte "kB" form used by
// the stats lines. Sub-kibibyte precision is lost, matching the tool.
func FormatSize(bytes uint64) string {
	return strconv.FormatUint(bytes/1024, 10) + "kB"
}

// String re-encodes the present fields in the tool's own key=value shape.
func (s Snapshot) String() string {
	parts := make([]string, 0, 7)
	if s.Frame != nil {
		parts = append(parts, fmt.Sprintf("frame=%d", *s.Frame))
	}
	if s.FPS != nil {
		parts = append(parts, fmt.Sprintf("fps=%.1f", *s.FPS))
	}
	if s.Q != nil {
		parts = append(parts, fmt.Sprintf("q=%.1f", *s.Q))
	}
	if s.Size != nil {
		parts = append(parts, "size="+FormatSize(*s.Size))
	}
	if s.Time != nil {
		parts = append(parts, "time="+timefmt.Format(*s.Time))
	}
	if s.Bitrate != nil {
		parts = append(parts, fmt.Sprintf("bitrate=%.1fkbits/s", *s.Bitrate/1000))
	}
	if s.Speed != nil {
		parts = append(parts, fmt.Sprintf("speed=%.2fx", *s.Speed))
	}
	return strings.Join(parts, " ")
}
