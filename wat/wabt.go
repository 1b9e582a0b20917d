package wat

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// WabtCompiler runs the wat2wasm executable.
type WabtCompiler struct {
	Path  string
	Flags []string
}

func (w *WabtCompiler) binary() string {
	if w.Path != "" {
		return w.Path
	}
	return "wat2wasm"
}

// Compile writes source to a temporary directory, runs wat2wasm on it and
// returns the produced binary.
func (w *WabtCompiler) Compile(ctx context.Context, source string) ([]byte, error) {
	tmpdir, err := os.MkdirTemp("", "watplay")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpdir)

	watPath := filepath.Join(tmpdir, "module.wat")
	if err := os.WriteFile(watPath, []byte(source), 0o644); err != nil {
		return nil, err
	}

	wasmPath := filepath.Join(tmpdir, "module.wasm")
	args := append(append([]string{}, w.Flags...), watPath, "-o", wasmPath)
	cmd := exec.CommandContext(ctx, w.binary(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	Logger().Debug("running wat2wasm", zap.String("binary", w.binary()), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		// wat2wasm reports positions against the temp path
		msg = strings.ReplaceAll(msg, watPath, "module.wat")
		if msg == "" {
			return nil, fmt.Errorf("wat2wasm: %w", err)
		}
		return nil, fmt.Errorf("wat2wasm: %s", oneLine(msg))
	}

	return os.ReadFile(wasmPath)
}

func oneLine(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return strings.Join(fields, " | ")
}
