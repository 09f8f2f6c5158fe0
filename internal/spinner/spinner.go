// Package spinner draws a one-line progress animation for long CLI steps.
package spinner

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const interval = 80 * time.Millisecond

// Start animates message on w until the returned stop function is called.
// stop clears the line and is safe to call more than once.
func Start(w io.Writer, message string) (stop func()) {
	done := make(chan struct{})
	cleared := make(chan struct{})
	blank := fmt.Sprintf("\r%*s\r", runewidth.StringWidth(message)+2, "")

	go func() {
		defer close(cleared)
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(w, "\r%s %s", frames[i%len(frames)], message) //nolint:errcheck
			select {
			case <-done:
				fmt.Fprint(w, blank) //nolint:errcheck
				return
			case <-tick.C:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-cleared
	}
}

// StartOn animates only when w is a terminal. Otherwise nothing is written
// and stop is a no-op, so piped output stays clean.
func StartOn(w io.Writer, message string) (stop func()) {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return Start(w, message)
	}
	return func() {}
}
