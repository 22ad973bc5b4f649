package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Result is the outcome of one external tool invocation. A nonzero exit is a
// value, not an error: orchestrators decide per stage whether it is fatal.
type Result struct {
	Succeeded bool
	ExitCode  int
	Output    string
}

type Runner interface {
	Run(ctx context.Context, name string, args ...string) Result
}

// CommandRunner spawns the command with stderr merged into stdout and streams
// every line to the log as it arrives, so a hung process is still observable.
type CommandRunner struct{}

func (CommandRunner) Run(ctx context.Context, name string, args ...string) Result {
	cmd := exec.CommandContext(ctx, name, args...)

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	var captured strings.Builder
	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		scanner.Split(scanToolLines)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			captured.WriteString(line)
			captured.WriteByte('\n')
			zerolog.Ctx(ctx).Debug().Str("tool", name).Msg(line)
		}
		// If a single run of output overflowed the scanner buffer, keep
		// consuming the pipe so the child never blocks on a full write.
		_, _ = io.Copy(&captured, pr)
	}()

	err := cmd.Run()
	_ = pw.Close()
	<-done

	res := Result{Output: captured.String()}
	if err == nil {
		res.Succeeded = true
		return res
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res
	}

	// The command never ran (not found, bad permissions, cancelled context).
	res.ExitCode = -1
	if res.Output == "" {
		res.Output = err.Error()
	}
	return res
}

// scanToolLines frames on \n, \r and \r\n. ffmpeg reports encode progress as
// carriage-return updates on one terminal line; splitting on \r keeps each
// update within the scanner's buffer instead of growing a single giant token.
func scanToolLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance := i + 1
		if data[i] == '\r' && advance < len(data) && data[advance] == '\n' {
			advance++
		}
		return advance, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
