package gesture

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fsnotify/fsnotify"
)

// Source produces classifier frames. Next may block until a frame is
// available or ctx is done.
type Source interface {
	Next(ctx context.Context) (Result, error)
	Close() error
}

// DecodeFrame parses one JSON frame of the form {"hands":[[{"x":..,"y":..,"z":..},...]]}.
func DecodeFrame(data []byte) (Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return r, nil
}

// EncodeFrame is the inverse of DecodeFrame, without a trailing newline.
func EncodeFrame(r Result) ([]byte, error) {
	return json.Marshal(r)
}

// ReplaySource reads JSON-lines frames from a reader.
type ReplaySource struct {
	r       io.Reader
	scanner *bufio.Scanner
	loop    bool
	frames  int
}

// NewReplaySource replays r once, or forever when loop is set and r can seek.
func NewReplaySource(r io.Reader, loop bool) *ReplaySource {
	s := &ReplaySource{r: r, loop: loop}
	s.scanner = newLineScanner(r)
	return s
}

// OpenReplay opens a frames file for replay.
func OpenReplay(path string, loop bool) (*ReplaySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return NewReplaySource(f, loop), nil
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return sc
}

func (s *ReplaySource) Next(ctx context.Context) (Result, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if s.scanner.Scan() {
			line := bytes.TrimSpace(s.scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			s.frames++
			return DecodeFrame(line)
		}
		if err := s.scanner.Err(); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
		if !s.rewind() {
			return Result{}, fmt.Errorf("%w: %w", ErrSourceUnavailable, io.EOF)
		}
	}
}

func (s *ReplaySource) rewind() bool {
	seeker, ok := s.r.(io.Seeker)
	if !s.loop || !ok || s.frames == 0 {
		return false
	}
	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		return false
	}
	s.frames = 0
	s.scanner = newLineScanner(s.r)
	return true
}

func (s *ReplaySource) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// TailSource follows a JSON-lines file that an external classifier appends to.
type TailSource struct {
	path    string
	file    *os.File
	reader  *bufio.Reader
	watcher *fsnotify.Watcher
	partial []byte
}

// NewTailSource opens path and watches it for writes. Unless fromStart is set
// only frames appended after opening are delivered.
func NewTailSource(path string, fromStart bool) (*TailSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if !fromStart {
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	return &TailSource{
		path:    path,
		file:    f,
		reader:  bufio.NewReader(f),
		watcher: w,
	}, nil
}

func (s *TailSource) Next(ctx context.Context) (Result, error) {
	for {
		chunk, err := s.reader.ReadBytes('\n')
		s.partial = append(s.partial, chunk...)
		if err == nil {
			line := bytes.TrimSpace(s.partial)
			s.partial = s.partial[:0]
			if len(line) == 0 {
				continue
			}
			return DecodeFrame(line)
		}
		if !errors.Is(err, io.EOF) {
			return Result{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}

		if err := s.wait(ctx); err != nil {
			return Result{}, err
		}
	}
}

// wait blocks until the file grows again.
func (s *TailSource) wait(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return fmt.Errorf("%w: watcher closed", ErrSourceUnavailable)
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				return fmt.Errorf("%w: %s removed", ErrSourceUnavailable, s.path)
			}
			if ev.Has(fsnotify.Write) {
				return nil
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return fmt.Errorf("%w: watcher closed", ErrSourceUnavailable)
			}
			return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
	}
}

func (s *TailSource) Close() error {
	werr := s.watcher.Close()
	ferr := s.file.Close()
	return errors.Join(werr, ferr)
}

// Unavailable is a source that never produces frames, standing in for a
// camera that could not be opened.
type Unavailable struct {
	Reason string
}

func (u Unavailable) Next(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if u.Reason == "" {
		return Result{}, ErrSourceUnavailable
	}
	return Result{}, fmt.Errorf("%w: %s", ErrSourceUnavailable, u.Reason)
}

func (Unavailable) Close() error { return nil }
