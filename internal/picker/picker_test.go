package picker

import (
	"context"
	"errors"
	"os/exec"
	"slices"
	"testing"
)

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		program string
		extra   []string
		want    []string
	}{
		{"fzf", nil, []string{"--prompt", "Events> ", "--no-sort", "--layout=reverse"}},
		{"rofi", []string{"-theme", "dark"}, []string{"-dmenu", "-p", "Events", "-i", "-theme", "dark"}},
		{"fuzzel", nil, []string{"--dmenu", "--prompt", "Events: "}},
		{"dmenu", nil, []string{"-p", "Events", "-i", "-l", "20"}},
		{"mymenu", nil, []string{"-p", "Events"}},
	}
	for _, tt := range tests {
		t.Run(tt.program, func(t *testing.T) {
			p := &Picker{program: tt.program, args: tt.extra}
			if got := p.buildArgs("Events"); !slices.Equal(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIndexOf(t *testing.T) {
	items := []string{"  09:00  Standup", "  14:00  Review"}

	tests := []struct {
		output string
		want   int
	}{
		{"  14:00  Review\n", 1},
		{"09:00  Standup", 0},
		{"", -1},
		{"something else", -1},
	}
	for _, tt := range tests {
		if got := indexOf(tt.output, items); got != tt.want {
			t.Errorf("indexOf(%q) = %d, want %d", tt.output, got, tt.want)
		}
	}
}

func TestNewMissingProgram(t *testing.T) {
	if _, err := New("calgrid-no-such-picker", nil); err == nil {
		t.Error("expected error for missing program")
	}
}

func TestChoose(t *testing.T) {
	// head -n 2 | tail -n 1 behaves like a user choosing the second line.
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	p := &Picker{program: sh}
	got, err := p.run(context.Background(), []string{"-c", "head -n 2 | tail -n 1"}, []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Errorf("got %d, want 1", got)
	}

	if _, err := p.Choose(context.Background(), "x", nil); err == nil {
		t.Error("expected error for empty items")
	}
}

func TestChooseCancelled(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	p := &Picker{program: sh}
	if _, err := p.run(context.Background(), []string{"-c", "cat >/dev/null; exit 1"}, []string{"a"}); !errors.Is(err, ErrCancelled) {
		t.Errorf("err = %v, want ErrCancelled", err)
	}
}
