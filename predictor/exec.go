package predictor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/carbocation/pfx"
)

// writeTempSequence writes sequence as a single-record FASTA file for tools
// that only accept files. The caller removes the file.
func writeTempSequence(dir, sequence string) (string, error) {
	f, err := os.CreateTemp(dir, "tempseq-*.fa")
	if err != nil {
		return "", pfx.Err(err)
	}

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, ">temp1 temp")
	for i := 0; i < len(sequence); i += 60 {
		end := i + 60
		if end > len(sequence) {
			end = len(sequence)
		}
		fmt.Fprintln(w, sequence[i:end])
	}

	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", pfx.Err(err)
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", pfx.Err(err)
	}

	return f.Name(), nil
}

// runTool runs an external predictor and returns its standard output. On
// failure the tool's standard error is folded into the returned error.
func runTool(ctx context.Context, command string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, command, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s %s: %w: %s", command, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%s: %w", command, err)
	}

	return out, nil
}

func requirePath(path, tool string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%s not found at %s: %w", tool, path, err)
	}

	return nil
}
