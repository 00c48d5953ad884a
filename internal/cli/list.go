package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/grantflow/internal/filter"
	"github.com/pfrederiksen/grantflow/internal/logger"
)

type listOptions struct {
	niches    []string
	query     string
	hasAmount bool
	rolling   bool
	minAmount int
	deadline  string
	sort      string
	format    string
}

func newListCmd(a *app) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List curated grants in the terminal",
		Long: `List the grants the next build would publish, after merging curated
grants, removing junk and duplicates.

Examples:
  grantflow list --niche SLP --has-amount
  grantflow list --deadline "Mar 1-31" --sort deadline
  grantflow list --query research --format table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runList(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.niches, "niche", nil, "Only these niches (repeatable or comma-separated, e.g. SLP,OT)")
	cmd.Flags().StringVar(&opts.query, "query", "", "Search title, summary, eligibility and source")
	cmd.Flags().BoolVar(&opts.hasAmount, "has-amount", false, "Only grants with a known amount")
	cmd.Flags().BoolVar(&opts.rolling, "rolling", false, "Only grants with rolling deadlines")
	cmd.Flags().IntVar(&opts.minAmount, "min-amount", 0, "Only grants with a numeric amount of at least this many dollars")
	cmd.Flags().StringVar(&opts.deadline, "deadline", "", "Deadline range, e.g. \"Mar 1-15\", \"March 1 - April 15\" or \"March\"")
	cmd.Flags().StringVar(&opts.sort, "sort", string(SortDefault), "Sort order: default, deadline, title or amount")
	cmd.Flags().StringVar(&opts.format, "format", string(FormatText), "Output format: text, json or table")

	return cmd
}

func (a *app) runList(cmd *cobra.Command, opts *listOptions) error {
	format, err := ParseOutputFormat(opts.format)
	if err != nil {
		return err
	}
	order, err := ParseSortOrder(opts.sort)
	if err != nil {
		return err
	}

	now := time.Now()

	f := filter.NewFilter()
	f.Niches = append(f.Niches, opts.niches...)
	f.Query = opts.query
	f.HasAmount = opts.hasAmount
	f.RollingOnly = opts.rolling
	f.MinAmount = opts.minAmount
	if opts.deadline != "" {
		from, to, err := filter.ParseDateRange(opts.deadline, now)
		if err != nil {
			return fmt.Errorf("parsing --deadline: %w", err)
		}
		f.DeadlineFrom, f.DeadlineTo = from, to
	}

	grants, _, err := loadCurated(a.cfg, now)
	if err != nil {
		return err
	}

	matching := f.Apply(grants)
	sortGrants(matching, order)

	logger.Debug("Listing grants", logger.Fields{
		"total":    len(grants),
		"matching": len(matching),
		"filter":   f.String(),
		"sort":     string(order),
	})

	result := &OutputResult{
		GeneratedAt: now.UTC(),
		Sort:        order,
		Count:       len(matching),
		Grants:      matching,
	}
	if !f.IsEmpty() {
		result.Filter = f.String()
	}

	if err := WriteOutput(cmd.OutOrStdout(), result, format, a.verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
