package sources

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/yildizm/go-logparser"

	"github.com/yildizm/PortTriage/internal/common"
	"github.com/yildizm/PortTriage/internal/logs"
)

// Log file suffixes, plain first so a plain file wins over its archive
var logSuffixes = []string{".log", ".log.gz"}

const maxLineSize = 1024 * 1024

// ReadLines reads a log file line by line. Files ending in .gz are
// decompressed on the fly.
func ReadLines(path string) ([]string, error) {
	if err := common.ValidateSourcePath(path, logSuffixes...); err != nil {
		return nil, err
	}

	file, err := os.Open(path) // #nosec G304 - log paths come from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var reader io.Reader = file
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer func() { _ = gz.Close() }()
		reader = gz
	}

	var lines []string
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	return lines, nil
}

// serviceFiles maps service names to their log files in dir. With no
// requested services every log file in dir is used, sorted by service name.
// Requested services without a file are returned in missing.
func serviceFiles(dir string, services []string) (found map[string]string, order []string, missing []string, err error) {
	found = make(map[string]string)

	if len(services) > 0 {
		for _, service := range services {
			if path, ok := findServiceFile(dir, service); ok {
				found[service] = path
				order = append(order, service)
			} else {
				missing = append(missing, service)
			}
		}
		return found, order, missing, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to read log directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		for _, suffix := range logSuffixes {
			if !strings.HasSuffix(name, suffix) {
				continue
			}
			service := strings.TrimSuffix(name, suffix)
			if existing, ok := found[service]; ok && strings.HasSuffix(existing, ".log") {
				break
			}
			if _, ok := found[service]; !ok {
				order = append(order, service)
			}
			found[service] = filepath.Join(dir, name)
			break
		}
	}
	sort.Strings(order)
	return found, order, nil, nil
}

func findServiceFile(dir, service string) (string, bool) {
	for _, suffix := range logSuffixes {
		path := filepath.Join(dir, service+suffix)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// NormalizeLines rewrites structured log lines into the service log grammar
// so the correlator can read them. format is one of auto, text, json or
// logfmt; text returns the lines untouched and auto picks a structured
// format from the first line that is not already canonical. The result always
// has one line per input line.
func NormalizeLines(lines []string, format string) ([]string, error) {
	var parserFormat logparser.Format
	switch format {
	case "", "text":
		return lines, nil
	case "json":
		parserFormat = logparser.FormatJSON
	case "logfmt":
		parserFormat = logparser.FormatLogfmt
	case "auto":
		detected, ok := detectFormat(lines)
		if !ok {
			return lines, nil
		}
		parserFormat = detected
	default:
		return nil, fmt.Errorf("%w: log format %q", ErrUnsupportedFormat, format)
	}

	parser := logparser.NewWithFormat(parserFormat)
	out := make([]string, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || logs.IsCanonical(trimmed) {
			out[i] = line
			continue
		}
		entries, err := parser.ParseString(trimmed)
		if err != nil || len(entries) == 0 {
			out[i] = line
			continue
		}
		rendered, ok := renderEntry(entries[0])
		if !ok {
			out[i] = line
			continue
		}
		out[i] = rendered
	}
	return out, nil
}

func detectFormat(lines []string) (logparser.Format, bool) {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || logs.IsCanonical(trimmed) {
			continue
		}
		switch {
		case strings.HasPrefix(trimmed, "{"):
			return logparser.FormatJSON, true
		case strings.Contains(trimmed, "level=") || strings.Contains(trimmed, "msg="):
			return logparser.FormatLogfmt, true
		default:
			return logparser.FormatText, false
		}
	}
	return logparser.FormatText, false
}

// Fields consumed by renderEntry rather than appended to the message
var reservedFields = map[string]bool{
	"time": true, "ts": true, "timestamp": true, "@timestamp": true,
	"level": true, "lvl": true, "severity": true,
	"msg": true, "message": true,
}

var componentFields = []string{"component", "service", "logger", "module"}

// renderEntry formats a parsed structured entry as
// "<timestamp> <LEVEL> <component> <message> [k=v ...]". It reports false
// when the entry lacks a timestamp or a known level.
func renderEntry(entry logparser.LogEntry) (string, bool) {
	level := normalizeLevel(entry.Level)
	if entry.Timestamp.IsZero() || level == common.LevelUnknown {
		return "", false
	}

	component := "-"
	used := make(map[string]bool)
	for _, key := range componentFields {
		if v, ok := entry.Fields[key]; ok {
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
				component = strings.ReplaceAll(s, " ", "-")
				used[key] = true
				break
			}
		}
	}

	var extras []string
	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		if !reservedFields[k] && !used[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		extras = append(extras, fmt.Sprintf("%s=%v", k, entry.Fields[k]))
	}

	message := strings.TrimSpace(entry.Message)
	if len(extras) > 0 {
		message = strings.TrimSpace(message + " " + strings.Join(extras, " "))
	}

	return fmt.Sprintf("%s %s %s %s",
		entry.Timestamp.UTC().Format(logs.TimestampLayout), level, component, message), true
}

func normalizeLevel(s string) common.LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FATAL", "CRITICAL", "PANIC", "ERR":
		return common.LevelError
	case "TRACE":
		return common.LevelDebug
	default:
		return common.ParseLogLevel(s)
	}
}
