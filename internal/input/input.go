// Package input reads practice text and answer files.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// ReadText returns the whole content of path, or of stdin when path is "-".
func ReadText(path string, stdin io.Reader) (string, error) {
	if path == Stdin {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// LoadLines reads one answer per line. Blank lines are kept so that line i
// stays aligned with record i; trailing blank lines are dropped.
func LoadLines(path string, stdin io.Reader) ([]string, error) {
	var r io.Reader = stdin
	if path != Stdin {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() {
			if cerr := file.Close(); cerr != nil {
				// Best-effort close for read-only answers file.
				_ = cerr
			}
		}()
		r = file
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("answers file is empty")
	}
	return lines, nil
}
