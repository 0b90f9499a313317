package tui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const statusInterval = 100 * time.Millisecond

// StatusWriter repaints a single spinner line with the current phase text
// and how long that phase has been running. Commands use it for the stretch
// before a step table takes over, like resolving the save directory or
// querying releases.
type StatusWriter struct {
	out io.Writer

	mu    sync.Mutex
	phase string
	since time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewStatusWriter starts the spinner goroutine. Stop it before writing any
// other output to the same stream.
func NewStatusWriter(out io.Writer) *StatusWriter {
	sw := &StatusWriter{
		out:   out,
		since: time.Now(),
		stop:  make(chan struct{}),
	}
	go sw.run()
	return sw
}

// Update swaps the phase text and restarts the elapsed clock.
func (sw *StatusWriter) Update(phase string) {
	sw.mu.Lock()
	sw.phase = phase
	sw.since = time.Now()
	sw.mu.Unlock()
}

// Stop halts the spinner and wipes its line. Safe to call more than once.
func (sw *StatusWriter) Stop() {
	sw.stopOnce.Do(func() {
		close(sw.stop)
		fmt.Fprint(sw.out, "\r\033[K")
	})
}

func (sw *StatusWriter) run() {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-sw.stop:
			return
		case <-ticker.C:
			sw.mu.Lock()
			phase, since := sw.phase, sw.since
			sw.mu.Unlock()
			glyph := spinGlyphs[frame%len(spinGlyphs)]
			fmt.Fprintf(sw.out, "\r\033[K%s %s (%s)", glyph, phase, shortDuration(time.Since(since)))
		}
	}
}

// shortDuration compacts an elapsed time for the status line: millisecond
// precision under a second, tenths under ten, then whole units.
func shortDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < 10*time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
