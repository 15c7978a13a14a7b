// Package picker lets the user choose one line with fzf or a dmenu-style
// launcher.
package picker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the picker without choosing.
var ErrCancelled = errors.New("cancelled")

// Supported programs in order of preference. fzf runs in the terminal, the
// rest open a launcher window.
var supportedPrograms = []string{
	"fzf",
	"rofi",
	"wofi",
	"fuzzel",
	"bemenu",
	"dmenu",
}

// Detect finds the first available program.
func Detect() (string, error) {
	for _, prog := range supportedPrograms {
		if path, err := exec.LookPath(prog); err == nil && path != "" {
			return prog, nil
		}
	}
	return "", fmt.Errorf("no picker program found (tried: %s)", strings.Join(supportedPrograms, ", "))
}

// Supported returns the list of supported programs.
func Supported() []string {
	return supportedPrograms
}

// Picker runs a picker program.
type Picker struct {
	program string
	args    []string
}

// New creates a picker. An empty program is auto-detected; extra args are
// appended to the program's own.
func New(program string, extra []string) (*Picker, error) {
	if program == "" {
		var err error
		program, err = Detect()
		if err != nil {
			return nil, err
		}
		slog.Debug("auto-detected picker program", "program", program)
	} else if _, err := exec.LookPath(program); err != nil {
		return nil, fmt.Errorf("picker program %q not found: %w", program, err)
	}
	return &Picker{program: program, args: extra}, nil
}

// Program returns the program in use.
func (p *Picker) Program() string {
	return p.program
}

// Choose shows items and returns the index of the chosen one.
func (p *Picker) Choose(ctx context.Context, prompt string, items []string) (int, error) {
	if len(items) == 0 {
		return -1, errors.New("nothing to choose from")
	}
	return p.run(ctx, p.buildArgs(prompt), items)
}

func (p *Picker) run(ctx context.Context, args []string, items []string) (int, error) {
	cmd := exec.CommandContext(ctx, p.program, args...)
	cmd.Stdin = strings.NewReader(strings.Join(items, "\n"))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if p.program == "fzf" {
		// fzf draws its interface on stderr.
		cmd.Stderr = os.Stderr
	} else {
		cmd.Stderr = &stderr
	}

	slog.Debug("running picker", "program", p.program, "args", args)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		// 1 is "no selection" for dmenu-style launchers; fzf uses 130 for Escape.
		if errors.As(err, &exitErr) && (exitErr.ExitCode() == 1 || exitErr.ExitCode() == 130) {
			return -1, ErrCancelled
		}
		return -1, fmt.Errorf("%s failed: %w (stderr: %s)", p.program, err, stderr.String())
	}

	i := indexOf(stdout.String(), items)
	if i < 0 {
		slog.Debug("selection not among items", "selected", stdout.String())
		return -1, ErrCancelled
	}
	return i, nil
}

// indexOf matches the picker's output against items, ignoring surrounding
// whitespace that some launchers strip.
func indexOf(output string, items []string) int {
	selected := strings.TrimSpace(output)
	if selected == "" {
		return -1
	}
	for i, item := range items {
		if strings.TrimSpace(item) == selected {
			return i
		}
	}
	return -1
}

// buildArgs builds command-line arguments for the program.
func (p *Picker) buildArgs(prompt string) []string {
	var args []string

	switch p.program {
	case "fzf":
		args = []string{"--prompt", prompt + "> ", "--no-sort", "--layout=reverse"}
	case "rofi":
		args = []string{"-dmenu", "-p", prompt, "-i"}
	case "wofi":
		args = []string{"--dmenu", "--prompt", prompt, "--insensitive"}
	case "fuzzel":
		args = []string{"--dmenu", "--prompt", prompt + ": "}
	case "bemenu":
		args = []string{"-p", prompt, "-i"}
	case "dmenu":
		args = []string{"-p", prompt, "-i", "-l", "20"}
	default:
		// Generic dmenu-compatible args
		args = []string{"-p", prompt}
	}

	return append(args, p.args...)
}
