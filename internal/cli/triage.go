package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yildizm/PortTriage/internal/correlation"
	"github.com/yildizm/PortTriage/internal/formatter"
	"github.com/yildizm/PortTriage/internal/incident"
	"github.com/yildizm/PortTriage/internal/prompt"
)

var (
	triageOutputFile   string
	triageAnalysisFile string
)

func newTriageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "triage [file]",
		Short: "Correlate an incident report with logs, cases, knowledge and contacts",
		Long: `Parse a free-text incident report and gather the evidence for it.

If no file is specified, reads the report from stdin. The configured log
directory, case log, knowledge base and contact directory are loaded first;
a source that cannot be loaded is reported and treated as empty.

Examples:
  porttriage triage incident.txt
  cat alert.eml | porttriage triage -o markdown
  porttriage triage incident.txt -o prompt > prompt.txt
  porttriage triage incident.txt --analysis reply.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTriage,
	}

	cmd.Flags().StringVar(&triageOutputFile, "output-file", "", "save output to file instead of stdout")
	cmd.Flags().StringVar(&triageAnalysisFile, "analysis", "", "model reply to attach to the report as its analysis")

	return cmd
}

func runTriage(cmd *cobra.Command, args []string) error {
	cfg, err := GetGlobalConfig()
	if err != nil {
		return err
	}

	f, err := getFormatter(cfg)
	if err != nil {
		return err
	}

	in, source, err := readIncident(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	engine, _ := buildEngine(cfg)
	report, err := buildReport(engine, in, source)
	if err != nil {
		return err
	}

	if triageAnalysisFile != "" {
		analysis, err := readAnalysis(triageAnalysisFile)
		if err != nil {
			return err
		}
		report.Analysis = analysis
	}

	output, err := f.Format(report)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}

	return writeOutput(cmd.OutOrStdout(), output, triageOutputFile)
}

// buildReport gathers context for a parsed incident and wraps it in a report
func buildReport(engine *correlation.Engine, in *incident.ParsedIncident, source string) (*formatter.Report, error) {
	ctx, err := engine.Gather(in)
	if err != nil {
		return nil, fmt.Errorf("failed to gather context: %w", err)
	}

	report := formatter.NewReport(in, ctx)
	report.Source = source
	return report, nil
}

// readAnalysis parses a saved model reply
func readAnalysis(path string) (*prompt.Analysis, error) {
	if err := validateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid analysis file: %w", err)
	}
	// #nosec G304 - path is validated by validateFilePath
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis file: %w", err)
	}
	return prompt.ParseAnalysis(string(data)), nil
}

// readRemediation parses a saved remediation reply
func readRemediation(path string) (*prompt.RemediationPlan, error) {
	if err := validateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid plan file: %w", err)
	}
	// #nosec G304 - path is validated by validateFilePath
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	return prompt.ParseRemediation(string(data)), nil
}
