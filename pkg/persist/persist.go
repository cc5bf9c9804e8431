package persist

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

var logger *zap.SugaredLogger

func init() {
	l, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	logger = l.Sugar()
}

// WriteLines writes one line per record to path/filename, creating the
// directory if absent and overwriting any previous file. Every line is
// newline terminated.
func WriteLines(path, filename string, lines []string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", path, err)
	}

	target := filepath.Join(path, filename)
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}

	logger.Infow("results written", "file", target, "lines", len(lines))
	return nil
}
