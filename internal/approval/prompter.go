package approval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/allisson/secretbroker/internal/errors"
)

// TerminalPrompter asks on a terminal and reads a y/N answer.
type TerminalPrompter struct {
	in         io.Reader
	out        io.Writer
	fd         int
	isTerminal func(fd int) bool
}

// NewTerminalPrompter prompts on out and reads answers from in. It refuses to
// prompt when in is not a terminal, so a piped stdin cannot auto-approve.
func NewTerminalPrompter(in *os.File, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{
		in:         in,
		out:        out,
		fd:         int(in.Fd()),
		isTerminal: term.IsTerminal,
	}
}

// Confirm renders req and waits for an answer. Anything but "y" or "yes" is a
// refusal. Cancelling ctx abandons the prompt.
func (p *TerminalPrompter) Confirm(ctx context.Context, req Request) (bool, error) {
	if !p.isTerminal(p.fd) {
		return false, ErrNotInteractive
	}

	_, _ = fmt.Fprint(p.out, Render(req))
	_, _ = fmt.Fprint(p.out, "Allow? [y/N] ")

	answers := make(chan string, 1)
	errs := make(chan error, 1)
	go func() {
		line, err := bufio.NewReader(p.in).ReadString('\n')
		if err != nil && line == "" {
			errs <- err
			return
		}
		answers <- line
	}()

	select {
	case <-ctx.Done():
		_, _ = fmt.Fprintln(p.out)
		return false, ctx.Err()
	case err := <-errs:
		_, _ = fmt.Fprintln(p.out)
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, errors.Wrap(err, "failed to read answer")
	case line := <-answers:
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	}
}

// Render formats req for display.
func Render(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nSecret access request\n")
	fmt.Fprintf(&b, "  secret: %s\n", req.Secret)
	fmt.Fprintf(&b, "  caller: %s\n", req.Caller)
	fmt.Fprintf(&b, "  trust:  %s (%d/%d)\n", req.Trust.Stars(), req.Trust.Level, MaxTrustLevel)
	for _, finding := range req.Trust.Findings {
		fmt.Fprintf(&b, "          - %s\n", finding)
	}
	if req.Reason != "" {
		fmt.Fprintf(&b, "  reason: %s\n", req.Reason)
	}
	return b.String()
}

// StaticPrompter always gives the same answer. It serves automation that has
// approved out of band, and tests.
type StaticPrompter struct {
	Approve bool
}

// Confirm returns p.Approve.
func (p StaticPrompter) Confirm(context.Context, Request) (bool, error) {
	return p.Approve, nil
}
