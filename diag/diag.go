// Package diag captures goroutine dumps for the fatal error path: when the
// directory agent's Start fails, the app logs every running goroutine
// alongside the error, grounded on the teacher's own use of
// gostackparse around actor crash/deadlock diagnostics.
package diag

import (
	"bytes"
	"fmt"
	"runtime"

	"github.com/DataDog/gostackparse"
)

// DumpGoroutines renders every live goroutine's stack as readable text.
// Parse failures fall back to the raw runtime dump rather than losing the
// diagnostic entirely.
func DumpGoroutines() string {
	buf := make([]byte, 1<<20)
	n := runtime.Stack(buf, true)
	raw := buf[:n]

	goros, err := gostackparse.Parse(bytes.NewReader(raw))
	if err != nil {
		return string(raw)
	}

	out := bytes.NewBuffer(nil)
	for _, g := range goros {
		fmt.Fprintf(out, "goroutine %d [%s]\n", g.ID, g.State)
		for _, frame := range g.Stack {
			fmt.Fprintf(out, "%s\n\t%s:%d\n", frame.Func, frame.File, frame.Line)
		}
	}
	return out.String()
}
