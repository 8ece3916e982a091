package nextbus

import "strings"

// LineScanner is the minimal line-stream surface the framer pulls from.
// *bufio.Scanner and the archive package's sources both satisfy it.
type LineScanner interface {
	Scan() bool
	Text() string
	Err() error
}

// Framer splits a captured line stream into discrete raw response bodies.
//
// A body runs up to and including a line that trims to "</body>". A
// buffer whose first line trims to "<html>" is an error page: it is
// accumulated until "</html>" and then discarded without being emitted.
// A buffer still open when the input ends is dropped silently; truncated
// captures are expected.
type Framer struct {
	lines LineScanner
	body  []string

	// OnErrorPage, when set, is called with the first line of every
	// discarded error page.
	OnErrorPage func(firstLine string)
}

// NewFramer returns a Framer pulling from lines.
func NewFramer(lines LineScanner) *Framer {
	return &Framer{lines: lines}
}

// Scan advances to the next complete body. It returns false when the
// input is exhausted or the underlying scanner failed.
func (f *Framer) Scan() bool {
	var buf []string
	for f.lines.Scan() {
		line := f.lines.Text()
		buf = append(buf, line)

		if strings.TrimSpace(buf[0]) == "<html>" {
			if strings.TrimSpace(line) == "</html>" {
				if f.OnErrorPage != nil {
					f.OnErrorPage(buf[0])
				}
				buf = nil
			}
			continue
		}

		if strings.TrimSpace(line) == "</body>" {
			f.body = buf
			return true
		}
	}
	f.body = nil
	return false
}

// Body returns the lines of the body found by the last call to Scan,
// including the closing "</body>" line, content preserved verbatim.
func (f *Framer) Body() []string {
	return f.body
}

// Err returns the underlying scanner's error, if any.
func (f *Framer) Err() error {
	return f.lines.Err()
}
