package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yildizm/PortTriage/internal/incident"
)

// maxIncidentSize bounds how much of an incident file is read
const maxIncidentSize = 1 << 20

// readIncidentText reads the incident from the file argument or, when there
// is none or it is "-", from stdin
func readIncidentText(args []string, stdin io.Reader) (text, source string, err error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(io.LimitReader(stdin, maxIncidentSize))
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		text, source = string(data), "stdin"
	} else {
		if err := validateFilePath(args[0]); err != nil {
			return "", "", err
		}
		text, err = readIncidentFile(args[0])
		if err != nil {
			return "", "", err
		}
		source = args[0]
	}

	if strings.TrimSpace(text) == "" {
		return "", "", fmt.Errorf("incident text is empty")
	}
	return text, source, nil
}

func readIncidentFile(path string) (string, error) {
	// #nosec G304 - path is validated by validateFilePath
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to open incident file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close file: %v\n", closeErr)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(f, maxIncidentSize))
	if err != nil {
		return "", fmt.Errorf("failed to read incident file: %w", err)
	}
	return string(data), nil
}

// readIncident reads and parses the incident named by args
func readIncident(args []string, stdin io.Reader) (*incident.ParsedIncident, string, error) {
	text, source, err := readIncidentText(args, stdin)
	if err != nil {
		return nil, "", err
	}
	return incident.Parse(text), source, nil
}

func validateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", cleanPath)
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", cleanPath)
	}

	return nil
}

// writeOutput writes output to a file when path is set, otherwise to w
func writeOutput(w io.Writer, output []byte, path string) error {
	if path == "" {
		_, err := w.Write(output)
		return err
	}

	if err := writeOutputBytesToFile(output, path); err != nil {
		return fmt.Errorf("failed to write output to file: %w", err)
	}
	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Output saved to: %s\n", path)
	}
	return nil
}

// writeOutputBytesToFile writes output to a file, creating parent directories
func writeOutputBytesToFile(output []byte, filePath string) error {
	cleanPath := filepath.Clean(filePath)

	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", closeErr)
		}
	}()

	if _, err := file.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}

	return nil
}
