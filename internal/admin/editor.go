package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// DescriptionEditor edits a product description. It receives the current
// HTML and returns the new HTML without validating it.
type DescriptionEditor interface {
	EditHTML(ctx context.Context, initial string) (string, error)
}

// ExternalEditor opens Command (for example "vim" or "code --wait") on a
// temporary .html file and reads the file back once the command exits.
type ExternalEditor struct {
	Command string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

var ErrNoEditor = errors.New("no editor configured: set $VISUAL or $EDITOR")

// EditorFromEnv picks $VISUAL, then $EDITOR.
func EditorFromEnv() ExternalEditor {
	cmd := os.Getenv("VISUAL")
	if cmd == "" {
		cmd = os.Getenv("EDITOR")
	}
	return ExternalEditor{Command: cmd, Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (e ExternalEditor) EditHTML(ctx context.Context, initial string) (string, error) {
	argv := strings.Fields(e.Command)
	if len(argv) == 0 {
		return "", ErrNoEditor
	}

	f, err := os.CreateTemp("", "description-*.html")
	if err != nil {
		return "", err
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(initial); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = e.Stdin, e.Stdout, e.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("run editor %q: %w", argv[0], err)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
