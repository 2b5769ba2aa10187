// Package classify converts the semi-structured output of the test and
// static-analysis runners into structured records in real time.
//
// A Classifier is a small state machine fed one line at a time; Stream
// drives it over a child process's merged output without ever buffering
// the whole stream. Classification performs no I/O of its own beyond
// the lines Stream writes back out.
package classify

import (
	"bufio"
	"fmt"
	"io"
)

// maxLineSize bounds a single output line. Compiler diagnostics can get
// long, but anything past this is a runaway line.
const maxLineSize = 1024 * 1024

// Classifier decides, per line, what to print.
type Classifier interface {
	// Classify consumes one raw line and returns the text to print and
	// whether to print it at all.
	Classify(line string) (string, bool)
}

// Stream reads r line-by-line, classifies each line, and writes kept
// lines to w. Returns the first read or write error; io.EOF is not an
// error.
func Stream(r io.Reader, w io.Writer, c Classifier) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		out, keep := c.Classify(scanner.Text())
		if !keep {
			continue
		}
		if _, err := fmt.Fprintln(w, out); err != nil {
			return fmt.Errorf("write classified line: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read output stream: %w", err)
	}
	return nil
}

// Passthrough prints every line verbatim. Used for stages whose output
// carries no grammar (configure, build).
type Passthrough struct{}

// Classify implements Classifier.
func (Passthrough) Classify(line string) (string, bool) { return line, true }
