package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"mend/internal/correction"
	"mend/internal/diagfmt"
	"mend/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the quick-fix and quick-assist catalogue",
	Long: `Print every rule of the catalogue in registration order with its kind,
base relevance and, for quick-fixes, the diagnostic codes dispatching to it.`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().String("kind", "all", "rules to list (fix|assist|all)")
	rulesCmd.Flags().String("format", "table", "output format (table|json)")
}

// ruleRow is one catalogue entry as printed.
type ruleRow struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	Relevance int      `json:"relevance"`
	Codes     []string `json:"codes,omitempty"`
	Disabled  bool     `json:"disabled,omitempty"`
}

func runRules(cmd *cobra.Command, _ []string) error {
	kind, err := cmd.Flags().GetString("kind")
	if err != nil {
		return fmt.Errorf("failed to get kind flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	cat := rules.Default()
	if unknown := state.cfg.UnknownRules(cat); len(unknown) > 0 && !quietFlag(cmd) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s names unknown rules: %s\n", configName(state.cfg.Path), strings.Join(unknown, ", "))
	}
	rows, err := catalogueRows(cat, kind, state.cfg.Settings(nil))
	if err != nil {
		return err
	}
	switch format {
	case "table":
		renderRulesTable(cmd.OutOrStdout(), rows)
		return nil
	case "json":
		return diagfmt.WriteJSON(cmd.OutOrStdout(), rows)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func configName(path string) string {
	if path == "" {
		return "configuration"
	}
	return path
}

// catalogueRows lists the rules of kind with the relevance the settings
// give them.
func catalogueRows(cat *correction.Catalogue, kind string, s correction.Settings) ([]ruleRow, error) {
	var want func(*correction.Rule) bool
	switch kind {
	case "all", "":
		want = func(*correction.Rule) bool { return true }
	case "fix":
		want = func(r *correction.Rule) bool { return r.Kind == correction.KindFix }
	case "assist":
		want = func(r *correction.Rule) bool { return r.Kind == correction.KindAssist }
	default:
		return nil, fmt.Errorf("invalid --kind value %q (expected fix|assist|all)", kind)
	}

	rows := make([]ruleRow, 0, len(cat.Rules()))
	for _, r := range cat.Rules() {
		if !want(r) {
			continue
		}
		row := ruleRow{ID: r.ID, Kind: r.Kind.String(), Relevance: r.Relevance, Disabled: s.Disabled[r.ID]}
		if v, ok := s.Relevance[r.ID]; ok {
			row.Relevance = v
		}
		if r.Kind == correction.KindFix {
			for _, code := range cat.CodesFor(r.ID) {
				row.Codes = append(row.Codes, code.ID())
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func renderRulesTable(w io.Writer, rows []ruleRow) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"id", "kind", "relevance", "codes"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range rows {
		id := row.ID
		if row.Disabled {
			id += " (disabled)"
		}
		table.Append([]string{id, row.Kind, strconv.Itoa(row.Relevance), strings.Join(row.Codes, " ")})
	}
	table.Render()
}
