package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/PortTriage/internal/sources"
)

// sourceStatus is the JSON form of a load status
type sourceStatus struct {
	sources.Status
	Loaded bool   `json:"loaded"`
	Error  string `json:"error,omitempty"`
	TookMS int64  `json:"took_ms"`
}

func newSourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Load every configured data source and report its status",
		Long: `Load the log directory, case log, knowledge base and contact directory
as triage would, and report what each one contributed. A source that cannot
be loaded is shown with its error; triage would treat it as empty.`,
		Args: cobra.NoArgs,
		RunE: runSources,
	}
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := GetGlobalConfig()
	if err != nil {
		return err
	}

	_, statuses := loadSources(cfg)
	out := cmd.OutOrStdout()

	if wantsJSON(cfg) {
		rows := make([]sourceStatus, 0, len(statuses))
		for _, st := range statuses {
			row := sourceStatus{Status: st, Loaded: st.Loaded(), TookMS: st.Took.Milliseconds()}
			if st.Err != nil {
				row.Error = st.Err.Error()
			}
			rows = append(rows, row)
		}
		return printJSON(out, rows)
	}

	opts := termfmt.DefaultOptions()
	opts.Color = useColor(cfg)
	opts.Emoji = !isEmojiDisabled()

	fmt.Fprintf(out, "%s Data Sources\n", termfmt.GetEmoji("statistics", opts))
	items := make([]termfmt.TreeItem, 0, len(statuses))
	for i, st := range statuses {
		symbol := termfmt.GetEmoji("success", opts)
		value := fmt.Sprintf("%d items", st.Items)
		if st.Detail != "" {
			value += ", " + st.Detail
		}
		if !st.Loaded() {
			symbol = termfmt.GetEmoji("error", opts)
			value = st.Err.Error()
		}

		items = append(items, termfmt.TreeItem{
			Label: fmt.Sprintf("%s %s", symbol, st.Source),
			Value: value,
			Children: []termfmt.TreeItem{
				{Label: "Path", Value: orDefault(st.Path, "(not configured)")},
				{Label: "Load Time", Value: st.Took.String(), Last: true},
			},
			Last: i == len(statuses)-1,
		})
	}
	fmt.Fprintln(out, termfmt.TreeViewWithOptions(items, opts))
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
