package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

// LineReader reads one line of user input.
type LineReader interface {
	ReadLine() (string, error)
}

type promptReader struct {
	label string
}

func (p *promptReader) ReadLine() (string, error) {
	prompt := promptui.Prompt{
		Label:  p.label,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
	}

	return prompt.Run()
}

type Console struct {
	triggerKey string
	exitKey    string
	reader     LineReader
}

type ConsoleOpts func(*Console) error

func WithLineReader(reader LineReader) ConsoleOpts {
	return func(c *Console) error {
		if reader == nil {
			return errors.New("nil line reader supplied")
		}
		c.reader = reader
		return nil
	}
}

func NewConsole(triggerKey, exitKey string, opts ...ConsoleOpts) (*Console, error) {
	if triggerKey == "" || exitKey == "" {
		return nil, errors.New("trigger key and exit key must not be empty")
	}

	if strings.EqualFold(triggerKey, exitKey) {
		return nil, fmt.Errorf("trigger key and exit key must differ, both are %q", triggerKey)
	}

	c := &Console{
		triggerKey: triggerKey,
		exitKey:    exitKey,
		reader:     &promptReader{label: fmt.Sprintf("Press %s to trigger, %s to quit", triggerKey, exitKey)},
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

type readResult struct {
	line string
	err  error
}

// Run reads lines until the exit key is entered, the input is closed or ctx is
// cancelled. Requests are issued from the calling goroutine only.
func (c *Console) Run(ctx context.Context, r Requester) error {
	results := make(chan readResult)
	next := make(chan struct{})

	go func() {
		for {
			line, err := c.reader.ReadLine()
			select {
			case results <- readResult{line: line, err: err}:
			case <-ctx.Done():
				return
			}

			if err != nil {
				return
			}

			// wait until the line has been handled, otherwise the next prompt
			// interleaves with the output of the request
			select {
			case <-next:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res := <-results:
			if res.err != nil {
				if errors.Is(res.err, promptui.ErrInterrupt) || errors.Is(res.err, promptui.ErrEOF) || errors.Is(res.err, io.EOF) {
					slog.Info("Input closed")
					return nil
				}
				return fmt.Errorf("could not read input: %w", res.err)
			}

			input := strings.TrimSpace(res.line)
			switch {
			case strings.EqualFold(input, c.exitKey):
				slog.Info("Exit key pressed")
				return nil
			case strings.EqualFold(input, c.triggerKey):
				r.Request()
			default:
				slog.Debug("Ignoring input", "input", input)
			}

			select {
			case next <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
