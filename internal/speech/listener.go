package speech

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DefaultMaxUtterance bounds one line of input, newline included.
const DefaultMaxUtterance = 64 * 1024

var (
	// ErrNoSpeech means nothing usable was heard; the turn is skipped.
	ErrNoSpeech = errors.New("speech: no speech detected")
	// ErrTooLong means an utterance exceeded the listener's limit. The line
	// is discarded and the turn skipped; it matches ErrNoSpeech.
	ErrTooLong = fmt.Errorf("%w: utterance too long", ErrNoSpeech)
)

// Listener yields one utterance per call. It returns ErrNoSpeech to skip a
// turn and io.EOF when input has ended.
type Listener interface {
	Listen(ctx context.Context) (string, error)
}

type lineResult struct {
	text string
	err  error
}

// LineListener reads utterances line by line, standing in for a
// speech-to-text engine. A read blocked on a terminal outlives a cancelled
// ctx; the pending line is delivered on the next call.
type LineListener struct {
	r       *bufio.Reader
	max     int
	lines   chan lineResult
	pending bool
	before  func()
}

// LineOption configures a LineListener.
type LineOption func(*LineListener)

// WithMaxUtterance sets the longest accepted line in bytes. n <= 0 keeps
// DefaultMaxUtterance.
func WithMaxUtterance(n int) LineOption {
	return func(l *LineListener) {
		if n > 0 {
			l.max = n
		}
	}
}

// NewLineListener reads from r. before, if non-nil, runs ahead of each new
// read (to print a prompt).
func NewLineListener(r io.Reader, before func(), opts ...LineOption) *LineListener {
	l := &LineListener{
		r:      bufio.NewReader(r),
		max:    DefaultMaxUtterance,
		lines:  make(chan lineResult, 1),
		before: before,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Listen implements Listener.
func (l *LineListener) Listen(ctx context.Context) (string, error) {
	if !l.pending {
		if l.before != nil {
			l.before()
		}
		l.pending = true
		go l.read()
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-l.lines:
		l.pending = false
		if r.err != nil {
			return "", r.err
		}
		text := strings.TrimSpace(r.text)
		if text == "" {
			return "", ErrNoSpeech
		}
		return text, nil
	}
}

// read delivers one line. A line longer than max is consumed to its end
// so the next read starts on a fresh utterance.
func (l *LineListener) read() {
	var (
		buf     []byte
		n       int
		tooLong bool
	)
	for {
		chunk, err := l.r.ReadSlice('\n')
		n += len(chunk)
		if !tooLong {
			if len(buf)+len(chunk) > l.max {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case err != nil && !errors.Is(err, io.EOF):
			l.lines <- lineResult{err: err}
			return
		case err != nil && n == 0:
			l.lines <- lineResult{err: io.EOF}
			return
		case tooLong:
			l.lines <- lineResult{err: ErrTooLong}
			return
		default:
			l.lines <- lineResult{text: string(buf)}
			return
		}
	}
}
