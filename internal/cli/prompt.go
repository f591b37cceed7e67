package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yildizm/PortTriage/internal/formatter"
	"github.com/yildizm/PortTriage/internal/prompt"
)

var (
	promptAnalysisFile string
	promptPlanFile     string
	promptAudience     string
)

func newPromptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Render prompts for a downstream analysis model",
		Long: `Render the prompts that hand a triaged incident to an analysis model.

PortTriage never calls a model itself. The prompts are printed so they can
be sent by whatever client the team uses, and the saved replies can be fed
back with --analysis and --plan.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "analysis [file]",
		Short: "Root cause analysis prompt with the gathered context",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnalysisPrompt,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "context [file]",
		Short: "Gathered context as plain markdown, without prompt framing",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runContextPrompt,
	})

	remediation := &cobra.Command{
		Use:   "remediation [file]",
		Short: "Remediation plan prompt for an analysed incident",
		Example: `  porttriage prompt remediation incident.txt --analysis reply.json`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRemediationPrompt,
	}
	remediation.Flags().StringVar(&promptAnalysisFile, "analysis", "", "saved analysis reply")
	cmd.AddCommand(remediation)

	escalation := &cobra.Command{
		Use:   "escalation [file]",
		Short: "Escalation summary prompt for L3 engineers or management",
		Example: `  porttriage prompt escalation incident.txt --analysis reply.json --plan plan.txt
  porttriage prompt escalation incident.txt --analysis reply.json --audience management`,
		Args: cobra.MaximumNArgs(1),
		RunE: runEscalationPrompt,
	}
	escalation.Flags().StringVar(&promptAnalysisFile, "analysis", "", "saved analysis reply")
	escalation.Flags().StringVar(&promptPlanFile, "plan", "", "saved remediation reply")
	escalation.Flags().StringVar(&promptAudience, "audience", string(prompt.AudienceL3), "l3 or management")
	cmd.AddCommand(escalation)

	return cmd
}

func runAnalysisPrompt(cmd *cobra.Command, args []string) error {
	cfg, err := GetGlobalConfig()
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

	output, err := formatter.NewPrompt(formatterOptions(cfg)).Format(report)
	if err != nil {
		return fmt.Errorf("failed to render prompt: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(output)
	return err
}

func runContextPrompt(cmd *cobra.Command, args []string) error {
	cfg, err := GetGlobalConfig()
	if err != nil {
		return err
	}

	in, _, err := readIncident(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	engine, _ := buildEngine(cfg)
	ctx, err := engine.Gather(in)
	if err != nil {
		return fmt.Errorf("failed to gather context: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), ctx.FormatForAnalysis())
	return err
}

func runRemediationPrompt(cmd *cobra.Command, args []string) error {
	in, _, err := readIncident(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	analysis, err := optionalAnalysis(promptAnalysisFile)
	if err != nil {
		return err
	}

	p := prompt.Remediation().WithIncident(in).WithAnalysis(analysis).Build()
	_, err = fmt.Fprint(cmd.OutOrStdout(), formatter.RenderPrompt(p))
	return err
}

func runEscalationPrompt(cmd *cobra.Command, args []string) error {
	in, _, err := readIncident(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	analysis, err := optionalAnalysis(promptAnalysisFile)
	if err != nil {
		return err
	}

	var plan *prompt.RemediationPlan
	if promptPlanFile != "" {
		if plan, err = readRemediation(promptPlanFile); err != nil {
			return err
		}
	}

	p := prompt.Escalation(prompt.ParseAudience(promptAudience)).
		WithIncident(in).
		WithAnalysis(analysis).
		WithPlan(plan).
		Build()
	_, err = fmt.Fprint(cmd.OutOrStdout(), formatter.RenderPrompt(p))
	return err
}

func optionalAnalysis(path string) (*prompt.Analysis, error) {
	if path == "" {
		return nil, nil
	}
	return readAnalysis(path)
}
