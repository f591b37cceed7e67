package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yildizm/PortTriage/internal/common"
	"github.com/yildizm/PortTriage/internal/config"
	"github.com/yildizm/PortTriage/internal/contacts"
	"github.com/yildizm/PortTriage/internal/correlation"
	"github.com/yildizm/PortTriage/internal/incident"
	"github.com/yildizm/PortTriage/internal/logs"
)

var (
	searchLimit      int
	searchContext    int
	searchModule     string
	searchProcedures bool
	searchSection    string
	searchSeverity   string
	searchRole       string
)

func newSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Query a single data source",
		Long: `Query one of the loaded data sources directly.

Each subcommand loads only the configured sources and prints the raw
matches, which is useful when tuning the data behind a triage report.`,
	}

	cmd.PersistentFlags().IntVarP(&searchLimit, "limit", "n", 10, "maximum results to show (0 for all)")

	cmd.AddCommand(newSearchLogsCommand())
	cmd.AddCommand(newSearchCasesCommand())
	cmd.AddCommand(newSearchKnowledgeCommand())
	cmd.AddCommand(newSearchContactsCommand())

	return cmd
}

func newSearchLogsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs <term>...",
		Short: "Search service logs for literal terms",
		Long: `Search every loaded service log for lines containing any of the terms.
Matching is case-sensitive, as identifiers in the logs are.`,
		Example: `  porttriage search logs CMAU0000020
  porttriage search logs CMAU0000020 --context 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearchLogs,
	}
	cmd.Flags().IntVar(&searchContext, "context", 0, "show N lines around each matching ERROR line")
	return cmd
}

func newSearchCasesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cases [keyword]...",
		Short: "Search historical cases by keyword or module",
		Example: `  porttriage search cases duplicate container
  porttriage search cases --module Container`,
		RunE: runSearchCases,
	}
	cmd.Flags().StringVar(&searchModule, "module", "", "list cases filed under a module")
	return cmd
}

func newSearchKnowledgeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "kb [keyword]...",
		Aliases: []string{"knowledge"},
		Short:   "Search knowledge-base sections",
		Example: `  porttriage search kb duplicate container
  porttriage search kb edi --procedures
  porttriage search kb --section "Vessel Advice"`,
		RunE: runSearchKnowledge,
	}
	cmd.Flags().BoolVar(&searchProcedures, "procedures", false, "only sections that read as procedures")
	cmd.Flags().StringVar(&searchSection, "section", "", "print the first section whose title contains this text")
	return cmd
}

func newSearchContactsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts [module]",
		Short: "Look up escalation contacts",
		Example: `  porttriage search contacts Container
  porttriage search contacts EDI/API --severity CRITICAL
  porttriage search contacts --role engineer`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSearchContacts,
	}
	cmd.Flags().StringVar(&searchSeverity, "severity", "", "route as an incident of this severity")
	cmd.Flags().StringVar(&searchRole, "role", "", "list contacts whose role contains this text")
	return cmd
}

// searchSources loads the configured sources for a search subcommand
func searchSources() (*config.Config, correlation.Sources, error) {
	cfg, err := GetGlobalConfig()
	if err != nil {
		return nil, correlation.Sources{}, err
	}
	src, _ := loadSources(cfg)
	return cfg, correlation.NewEngine(src).Sources(), nil
}

func wantsJSON(cfg *config.Config) bool {
	return strings.EqualFold(getOutputFormat(cfg), "json")
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func limit(n int) int {
	if searchLimit > 0 && n > searchLimit {
		return searchLimit
	}
	return n
}

func runSearchLogs(cmd *cobra.Command, args []string) error {
	cfg, src, err := searchSources()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if searchContext > 0 {
		contexts := src.Logs.ContextAroundErrors(args, searchContext)
		contexts = contexts[:limit(len(contexts))]
		if wantsJSON(cfg) {
			return printJSON(out, contexts)
		}
		if len(contexts) == 0 {
			fmt.Fprintln(out, "No matching ERROR lines")
			return nil
		}
		for _, c := range contexts {
			fmt.Fprintf(out, "── %s:%d\n", c.Service, c.Error.LineNum)
			for _, e := range c.Before {
				fmt.Fprintf(out, "   %s\n", e.Raw)
			}
			fmt.Fprintf(out, " > %s\n", c.Error.Raw)
			for _, e := range c.After {
				fmt.Fprintf(out, "   %s\n", e.Raw)
			}
			fmt.Fprintln(out)
		}
		return nil
	}

	if wantsJSON(cfg) {
		return printJSON(out, src.Logs.Search(args))
	}

	fmt.Fprint(out, src.Logs.Summary(args))
	timeline := src.Logs.Timeline(args)
	if len(timeline) > 0 {
		fmt.Fprintln(out, "\nTimeline:")
		for _, e := range timeline[:limit(len(timeline))] {
			fmt.Fprintf(out, "• %s:%d %s\n", e.Service, e.LineNum, logs.FormatEntry(e))
		}
	}
	return nil
}

func runSearchCases(cmd *cobra.Command, args []string) error {
	cfg, src, err := searchSources()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if searchModule != "" {
		found := src.Cases.SearchByModule(searchModule)
		found = found[:limit(len(found))]
		if wantsJSON(cfg) {
			return printJSON(out, found)
		}
		fmt.Fprintf(out, "%d case(s) in module %s\n", len(found), searchModule)
		for _, c := range found {
			fmt.Fprintf(out, "\nCase #%d\n%s", c.ID, c.Summary())
		}
		return nil
	}

	if len(args) == 0 {
		stats := src.Cases.Statistics()
		if wantsJSON(cfg) {
			return printJSON(out, stats)
		}
		fmt.Fprintf(out, "Total cases: %d\nEDI cases: %d\n", stats.TotalCases, stats.EDICases)
		for _, module := range sortedKeys(stats.Modules) {
			fmt.Fprintf(out, "• %s: %d\n", module, stats.Modules[module])
		}
		return nil
	}

	matches := src.Cases.SearchByKeywords(args)
	matches = matches[:limit(len(matches))]
	if wantsJSON(cfg) {
		return printJSON(out, matches)
	}
	if len(matches) == 0 {
		fmt.Fprintln(out, "No matching cases")
		return nil
	}
	for _, m := range matches {
		fmt.Fprintf(out, "Case #%d (similarity %.0f%%, matched: %s)\n%s\n",
			m.Case.ID, m.Similarity*100, strings.Join(m.MatchedKeywords, ", "), m.Case.Summary())
	}
	return nil
}

func runSearchKnowledge(cmd *cobra.Command, args []string) error {
	cfg, src, err := searchSources()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if searchSection != "" {
		section, ok := src.Knowledge.SectionByTitle(searchSection)
		if !ok {
			return fmt.Errorf("no knowledge-base section matches %q", searchSection)
		}
		if wantsJSON(cfg) {
			return printJSON(out, section)
		}
		fmt.Fprintf(out, "%s\n%s\n\n%s\n", section.Heading, strings.Repeat("=", len([]rune(section.Heading))), strings.TrimSpace(section.Content))
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("at least one keyword or --section is required")
	}

	matches := src.Knowledge.SearchByKeywords(args)
	if searchProcedures {
		matches = src.Knowledge.SearchProcedures(args)
	}
	matches = matches[:limit(len(matches))]
	if wantsJSON(cfg) {
		return printJSON(out, matches)
	}
	if len(matches) == 0 {
		fmt.Fprintln(out, "No matching sections")
		return nil
	}
	for _, m := range matches {
		fmt.Fprintf(out, "%s (relevance %.0f%%)\n  %s\n\n",
			m.SectionTitle, m.Relevance*100, common.Truncate(strings.Join(strings.Fields(m.Content), " "), 200))
	}
	return nil
}

func runSearchContacts(cmd *cobra.Command, args []string) error {
	cfg, src, err := searchSources()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if searchRole == "" && len(args) == 0 {
		modules := src.Contacts.Modules()
		if wantsJSON(cfg) {
			return printJSON(out, modules)
		}
		for _, module := range modules {
			fmt.Fprintf(out, "• %s (%d contacts)\n", module, len(src.Contacts.Lookup(module)))
		}
		return nil
	}

	var found []contacts.Contact
	switch {
	case searchRole != "":
		found = src.Contacts.ByRole(searchRole)
	case searchSeverity != "":
		severity := incident.Severity(strings.ToUpper(strings.TrimSpace(searchSeverity)))
		found = src.Contacts.RouteIncident(args[0], severity)
	default:
		found = src.Contacts.Lookup(args[0])
	}

	if wantsJSON(cfg) {
		return printJSON(out, found)
	}
	if len(found) == 0 {
		fmt.Fprintln(out, "No matching contacts")
		return nil
	}
	for _, c := range found {
		line := fmt.Sprintf("• %s (%s, %s) <%s>", c.Name, c.Role, c.Module, c.Email)
		if c.Phone != "" {
			line += " " + c.Phone
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
