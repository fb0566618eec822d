package proc

import (
	"context"

	"github.com/ffkit/ffproc/progress"
)

// Run spawns the program and waits for it to finish. A non-zero exit is
// reported in the Output, not as an error; call Output.Err to make it
// strict.
func Run(ctx context.Context, cfg *Config, args []string) (*Output, error) {
	p, err := Spawn(ctx, cfg, args)
	if err != nil {
		return nil, err
	}
	return p.Wait(ctx)
}

// RunWithProgress runs the program while decoding its stderr as a live
// progress stream. Snapshots reach sink in write order and the reader is
// joined before returning. Because the reader consumes the stderr pipe, the
// returned Output never carries stderr: one pipe cannot feed both live
// decoding and capture.
func RunWithProgress(ctx context.Context, cfg *Config, args []string, sink progress.Sink) (*Output, error) {
	cfg = cfg.clone().WithCaptureStderr(true)

	p, err := Spawn(ctx, cfg, args)
	if err != nil {
		return nil, err
	}

	stderr := p.Stderr()
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer stderr.Close()
		progress.Stream(stderr, sink)
	}()

	out, waitErr := p.Wait(ctx)
	<-done
	return out, waitErr
}
