/*
Package progress decodes the stats lines the ffmpeg tools print to stderr
while they run, e.g.

	frame=  100 fps=25.0 q=28.0 size=    1024kB time=00:00:04.00 bitrate=2097.2kbits/s speed=1.00x

into structured snapshots. Decoding is best-effort telemetry: lines that are
not progress lines, and individual fields that fail to parse, are skipped
without error, because the bulk of the tools' stderr is human-readable log
output and a malformed stats line must never fail an otherwise-healthy run.

Stream is meant to run on its own goroutine against a live stderr pipe. It
doubles as the pipe's drain: ffmpeg stalls when its stderr pipe fills, so
whoever requests a piped stderr must either stream it or capture it, never
neither and never both.
*/
package progress
