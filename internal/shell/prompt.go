package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gastos/internal/core"
)

// ErrInputClosed is returned once the input stream is exhausted.
var ErrInputClosed = errors.New("input closed")

type readResult struct {
	line string
	err  error
}

// Prompter writes a question and reads one line per answer. Lines have no
// length limit; overlong answers reach the validators like any other.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer

	// pending is the read still in flight after a cancelled Line call. The
	// next call picks it up so no typed line is lost.
	pending chan readResult
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Line prints prompt and returns the next input line without its newline.
// It returns ctx.Err() as soon as ctx is done, even while waiting for input.
func (p *Prompter) Line(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)

	if p.pending == nil {
		ch := make(chan readResult, 1)
		go func() {
			line, err := p.in.ReadString('\n')
			ch <- readResult{line: line, err: err}
		}()
		p.pending = ch
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-p.pending:
		p.pending = nil
		return finishLine(r)
	}
}

func finishLine(r readResult) (string, error) {
	line := strings.TrimRight(strings.TrimSuffix(r.line, "\n"), "\r")
	switch {
	case r.err == nil:
		return line, nil
	case errors.Is(r.err, io.EOF):
		if r.line == "" {
			return "", ErrInputClosed
		}
		// last line without a trailing newline
		return line, nil
	}
	return "", fmt.Errorf("read input: %w", r.err)
}

// Ask repeats prompt until validate accepts the answer. Rejections are shown
// to the user; only a closed or failing input stream or a done ctx ends the
// loop early.
func Ask[T any](ctx context.Context, p *Prompter, prompt string, validate func(string) (T, error)) (T, error) {
	for {
		raw, err := p.Line(ctx, prompt)
		if err != nil {
			var zero T
			return zero, err
		}
		v, err := validate(raw)
		if err == nil {
			return v, nil
		}
		fmt.Fprintf(p.out, "⚠️ %s\n", reason(err))
	}
}

func reason(err error) string {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return err.Error()
}
