package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/yildizm/PortTriage/internal/correlation"
	"github.com/yildizm/PortTriage/internal/formatter"
	"github.com/yildizm/PortTriage/internal/incident"
	"github.com/yildizm/PortTriage/internal/logger"
	"github.com/yildizm/PortTriage/internal/metrics"
	"github.com/yildizm/PortTriage/internal/sources"
)

var (
	watchReportDir string
	watchPatterns  []string
	watchDebounce  time.Duration
	watchOnce      bool
	watchMetrics   string
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [inbox]",
		Short: "Triage incident reports as they land in an inbox directory",
		Long: `Watch an inbox directory and triage every incident report written to it.

Files already in the inbox are triaged first. Each new or rewritten file that
matches the patterns is triaged once it has been quiet for the debounce
interval. Reports go to the report directory, or to stdout when none is set.
Data sources are loaded once at start. Press Ctrl+C to stop watching.

Examples:
  porttriage watch ./inbox
  porttriage watch ./inbox --report-dir ./reports -o markdown
  porttriage watch ./inbox --once
  porttriage watch ./inbox --metrics-addr :9464`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().StringVar(&watchReportDir, "report-dir", "", "directory to write reports to (default: stdout)")
	cmd.Flags().StringSliceVarP(&watchPatterns, "patterns", "p", nil, "file name patterns to triage (default from config)")
	cmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet period before a changed file is triaged (default from config)")
	cmd.Flags().BoolVar(&watchOnce, "once", false, "triage the files already in the inbox and exit")
	cmd.Flags().StringVar(&watchMetrics, "metrics-addr", "", "serve Prometheus metrics on this address (default from config)")

	return cmd
}

// inboxWatcher triages incident files from one directory with a shared engine
type inboxWatcher struct {
	inbox     string
	reportDir string
	patterns  []string
	debounce  time.Duration
	extension string
	engine    *correlation.Engine
	format    formatter.Formatter
	out       io.Writer
	log       *logger.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := GetGlobalConfig()
	if err != nil {
		return err
	}

	inbox := cfg.Watch.InboxDir
	if len(args) > 0 {
		inbox = args[0]
	}
	if err := validateWatchDir(inbox); err != nil {
		return err
	}

	f, err := getFormatter(cfg)
	if err != nil {
		return err
	}

	w := &inboxWatcher{
		inbox:     filepath.Clean(inbox),
		reportDir: cfg.Watch.ReportDir,
		patterns:  cfg.Watch.Patterns,
		debounce:  cfg.Watch.Debounce,
		extension: reportExtension(getOutputFormat(cfg)),
		format:    f,
		out:       cmd.OutOrStdout(),
		log:       newLogger("watch"),
		timers:    make(map[string]*time.Timer),
	}
	if cmd.Flags().Changed("report-dir") {
		w.reportDir = watchReportDir
	}
	if len(watchPatterns) > 0 {
		w.patterns = watchPatterns
	}
	if cmd.Flags().Changed("debounce") {
		w.debounce = watchDebounce
	}
	if w.reportDir != "" && sameDir(w.reportDir, w.inbox) {
		return fmt.Errorf("report directory must differ from the inbox")
	}

	var statuses []sources.Status
	w.engine, statuses = buildEngine(cfg)
	for _, st := range statuses {
		metrics.SetSourceItems(st.Source, st.Items, st.Loaded())
	}

	w.processExisting()
	if watchOnce {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.Watch.MetricsAddr
	if cmd.Flags().Changed("metrics-addr") {
		addr = watchMetrics
	}
	if addr != "" {
		srv, err := serveMetrics(addr, w.log)
		if err != nil {
			return err
		}
		defer shutdownMetrics(srv, w.log)
	}

	return w.run(ctx)
}

// serveMetrics exposes the Prometheus registry on addr in the background
func serveMetrics(addr string, log *logger.Logger) (*http.Server, error) {
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.InfoWithFields("Metrics server listening", []logger.Field{logger.F("address", addr)})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server exited: %v", err)
		}
	}()
	return srv, nil
}

func shutdownMetrics(srv *http.Server, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WarnWithFields("Metrics server shutdown", []logger.Field{logger.Error(err)})
	}
}

// run watches the inbox until ctx is done
func (w *inboxWatcher) run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer cleanupWatcher(watcher)

	if err := watcher.Add(w.inbox); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.inbox, err)
	}

	ready := make(chan string, 16)
	w.log.InfoWithFields("Watching inbox", []logger.Field{logger.Path(w.inbox), logger.F("patterns", strings.Join(w.patterns, ","))})

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, stopping...\n")
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(event, ready, ctx.Done())

		case path := <-ready:
			if err := w.processFile(path); err != nil {
				w.log.WarnWithFields("Failed to triage incident file", []logger.Field{logger.Path(path), logger.Error(err)})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.WarnWithFields("Watcher error", []logger.Field{logger.Error(err)})
		}
	}
}

// handleEvent schedules a matching file for triage once it stops changing
func (w *inboxWatcher) handleEvent(event fsnotify.Event, ready chan<- string, done <-chan struct{}) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !w.matches(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[event.Name]; ok {
		t.Stop()
	}
	path := event.Name
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		deliver(path, ready, done)
	})
}

// deliver hands path to the run loop unless the loop has already stopped
func deliver(path string, ready chan<- string, done <-chan struct{}) bool {
	select {
	case ready <- path:
		return true
	case <-done:
		return false
	}
}

func (w *inboxWatcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

// processExisting triages the files already in the inbox in name order
func (w *inboxWatcher) processExisting() {
	entries, err := os.ReadDir(w.inbox)
	if err != nil {
		w.log.WarnWithFields("Failed to list inbox", []logger.Field{logger.Path(w.inbox), logger.Error(err)})
		return
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if path := filepath.Join(w.inbox, e.Name()); w.matches(path) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := w.processFile(path); err != nil {
			w.log.WarnWithFields("Failed to triage incident file", []logger.Field{logger.Path(path), logger.Error(err)})
		}
	}
}

// processFile triages one incident file and records the outcome
func (w *inboxWatcher) processFile(path string) error {
	start := time.Now()
	err := w.triageFile(path)
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.ObserveTriage(time.Since(start), outcome)
	return err
}

// triageFile triages one incident file and writes its report
func (w *inboxWatcher) triageFile(path string) error {
	text, err := readIncidentFile(path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		w.log.Debug("Skipping empty incident file %s", path)
		return nil
	}

	start := time.Now()
	report, err := buildReport(w.engine, incident.Parse(text), path)
	if err != nil {
		return err
	}
	metrics.ObserveIncident(string(report.Incident.Severity), string(report.Incident.Module))

	output, err := w.format.Format(report)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}

	if w.reportDir == "" {
		_, err = w.out.Write(output)
		return err
	}

	target := w.reportPath(path)
	if err := writeOutputBytesToFile(output, target); err != nil {
		return err
	}
	w.log.InfoWithFields("Incident triaged", []logger.Field{
		logger.Path(target),
		logger.F("severity", report.Incident.Severity),
		logger.Duration(time.Since(start)),
	})
	return nil
}

// matches reports whether a file name matches one of the inbox patterns.
// No patterns matches every file.
func (w *inboxWatcher) matches(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	if len(w.patterns) == 0 {
		return true
	}
	for _, pattern := range w.patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// reportPath names the report written for an incident file
func (w *inboxWatcher) reportPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return filepath.Join(w.reportDir, base+".report"+w.extension)
}

func reportExtension(format string) string {
	switch strings.ToLower(format) {
	case formatter.FormatJSON:
		return ".json"
	case formatter.FormatMarkdown, "md":
		return ".md"
	default:
		return ".txt"
	}
}

// cleanupWatcher safely closes watcher with error logging
func cleanupWatcher(watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: failed to close watcher: %v\n", err)
	}
}

// validateWatchDir validates that a path is an existing directory
func validateWatchDir(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty inbox path")
	}

	info, err := os.Stat(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("cannot access inbox: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("inbox must be a directory")
	}
	return nil
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
