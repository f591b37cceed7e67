package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yildizm/PortTriage/internal/correlation"
	"github.com/yildizm/PortTriage/internal/formatter"
	"github.com/yildizm/PortTriage/internal/incident"
)

func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse an incident report without correlating it",
		Long: `Extract entities, incident type, module, severity and keywords from an
incident report. No data sources are loaded.

Examples:
  porttriage parse incident.txt
  echo "Vessel MV LION CITY 07 berth application stuck" | porttriage parse -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runParse,
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := GetGlobalConfig()
	if err != nil {
		return err
	}

	in, source, err := readIncident(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	format := strings.ToLower(getOutputFormat(cfg))
	if format == "" || format == formatter.FormatText {
		fmt.Fprint(cmd.OutOrStdout(), incident.FormatSummary(in))
		fmt.Fprintf(cmd.OutOrStdout(), "\nLog search terms: %s\n", strings.Join(correlation.SearchTerms(in), ", "))
		return nil
	}

	f, err := formatter.New(format, formatterOptions(cfg))
	if err != nil {
		return err
	}

	report := formatter.NewReport(in, nil)
	report.Source = source
	output, err := f.Format(report)
	if err != nil {
		return fmt.Errorf("failed to format incident: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(output)
	return err
}
