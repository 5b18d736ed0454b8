// Package parser turns a document on disk into HTML page fragments for the
// parse endpoint.
package parser

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/metcalfc/flip/internal/book"
	"github.com/metcalfc/flip/internal/reader"
)

// DocumentParser turns the document at path into an ordered list of page
// fragments.
type DocumentParser interface {
	Parse(ctx context.Context, path string) ([]string, error)
}

// SubprocessError reports a failed run of an external parsing script.
type SubprocessError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *SubprocessError) Error() string {
	msg := fmt.Sprintf("%s failed: %v", e.Command, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *SubprocessError) Unwrap() error { return e.Err }

// DefaultInterpreter runs the parsing script when PYTHON_PATH is unset.
const DefaultInterpreter = "python3"

// Interpreter returns PYTHON_PATH, or DefaultInterpreter.
func Interpreter() string {
	if p := os.Getenv("PYTHON_PATH"); p != "" {
		return p
	}
	return DefaultInterpreter
}

// ScriptParser runs "<Interpreter> <Script> <path>" and treats every
// non-empty line of standard output as one page fragment.
type ScriptParser struct {
	Interpreter string
	Script      string
	Timeout     time.Duration // zero means no limit beyond ctx
}

func (p *ScriptParser) Parse(ctx context.Context, path string) ([]string, error) {
	interp := p.Interpreter
	if interp == "" {
		interp = Interpreter()
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, interp, p.Script, path)
	// Grandchildren holding stdout open must not outlive a cancelled ctx.
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		se := &SubprocessError{
			Command:  interp + " " + p.Script,
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
		if cmd.ProcessState != nil {
			se.ExitCode = cmd.ProcessState.ExitCode()
		}
		return nil, se
	}

	var out []string
	scanner := bufio.NewScanner(&stdout)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out, scanner.Err()
}

// NativeParser extracts paragraphs in-process and applies the same
// line-based pagination as the external script.
type NativeParser struct {
	CharsPerPage int
}

func (p *NativeParser) Parse(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	paras, err := reader.Paragraphs(path, data)
	if err != nil {
		return nil, err
	}
	return book.Fragments(paras, p.CharsPerPage), nil
}
