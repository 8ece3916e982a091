package archive

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Source is a closable line stream. It follows the bufio.Scanner pull
// idiom; Err reports mid-stream failures, Close reports resource and
// external-process failures.
type Source interface {
	Scan() bool
	Text() string
	Err() error
	Close() error
}

// ProcessError reports a non-zero exit from an external extraction
// process. It is fatal for the run.
type ProcessError struct {
	Cmd string
	Err error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("external process %q: %v", e.Cmd, e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Open opens one archive path as a line stream. Dispatch is by name:
// tar archives run through an external tar process, .gz and .bz2 are
// decompressed in-process, directories concatenate their members in
// sorted name order, anything else is read as a plain file.
func Open(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return openDir(path)
	}
	switch {
	case strings.HasSuffix(path, ".tar"),
		strings.HasSuffix(path, ".tar.gz"),
		strings.HasSuffix(path, ".tar.bz2"):
		return openTar(path)
	case strings.HasSuffix(path, ".gz"):
		return openGzip(path)
	case strings.HasSuffix(path, ".bz2"):
		return openBzip2(path)
	default:
		return openPlain(path)
	}
}

// OpenAll concatenates several archive paths into one line stream,
// preserving argument order. Each path is opened lazily when the stream
// reaches it.
func OpenAll(paths ...string) Source {
	openers := make([]opener, 0, len(paths))
	for _, p := range paths {
		p := p
		openers = append(openers, func() (Source, error) { return Open(p) })
	}
	return &concatSource{openers: openers}
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return sc
}

// fileSource reads lines from a reader and closes its underlying
// resources in reverse acquisition order.
type fileSource struct {
	sc      *bufio.Scanner
	closers []io.Closer
}

func (s *fileSource) Scan() bool   { return s.sc.Scan() }
func (s *fileSource) Text() string { return s.sc.Text() }
func (s *fileSource) Err() error   { return s.sc.Err() }

func (s *fileSource) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func openPlain(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &fileSource{sc: newScanner(f), closers: []io.Closer{f}}, nil
}

func openGzip(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileSource{sc: newScanner(gz), closers: []io.Closer{f, gz}}, nil
}

func openBzip2(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &fileSource{sc: newScanner(bzip2.NewReader(f)), closers: []io.Closer{f}}, nil
}

// tarSource streams every member of a tar archive through an external
// tar process. The process exit status is only checked by Close; an
// abandoned stream can therefore also surface a ProcessError there.
type tarSource struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	sc     *bufio.Scanner
	closed bool
}

func openTar(path string) (Source, error) {
	cmd := exec.Command("tar", "-xaOf", path)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &tarSource{cmd: cmd, stdout: stdout, sc: newScanner(stdout)}, nil
}

func (s *tarSource) Scan() bool   { return s.sc.Scan() }
func (s *tarSource) Text() string { return s.sc.Text() }
func (s *tarSource) Err() error   { return s.sc.Err() }

func (s *tarSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.stdout.Close()
	if err := s.cmd.Wait(); err != nil {
		return &ProcessError{Cmd: strings.Join(s.cmd.Args, " "), Err: err}
	}
	return nil
}

type opener func() (Source, error)

// concatSource chains sources end to end. A member's Close error is
// fatal mid-stream: it surfaces through Err and stops the scan.
type concatSource struct {
	openers []opener
	cur     Source
	err     error
}

func openDir(path string) (Source, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	openers := make([]opener, 0, len(names))
	for _, name := range names {
		member := filepath.Join(path, name)
		openers = append(openers, func() (Source, error) { return Open(member) })
	}
	return &concatSource{openers: openers}, nil
}

func (s *concatSource) Scan() bool {
	for s.err == nil {
		if s.cur == nil {
			if len(s.openers) == 0 {
				return false
			}
			next := s.openers[0]
			s.openers = s.openers[1:]
			s.cur, s.err = next()
			continue
		}
		if s.cur.Scan() {
			return true
		}
		if err := s.cur.Err(); err != nil {
			s.err = err
			return false
		}
		if err := s.cur.Close(); err != nil {
			s.cur = nil
			s.err = err
			return false
		}
		s.cur = nil
	}
	return false
}

func (s *concatSource) Text() string {
	if s.cur == nil {
		return ""
	}
	return s.cur.Text()
}

func (s *concatSource) Err() error { return s.err }

func (s *concatSource) Close() error {
	s.openers = nil
	if s.cur != nil {
		err := s.cur.Close()
		s.cur = nil
		if s.err == nil {
			s.err = err
		}
		return err
	}
	return s.err
}
