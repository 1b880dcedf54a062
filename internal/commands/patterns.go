package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spendlens/spendlens/internal/categories"
	"github.com/spendlens/spendlens/internal/categorize"
	"github.com/spendlens/spendlens/internal/model"
)

// patternFile is the YAML shape accepted by `patterns add --file`.
type patternFile struct {
	Patterns []patternSpec `yaml:"patterns"`
}

type patternSpec struct {
	Type       string  `yaml:"type"`
	Value      string  `yaml:"value"`
	Category   string  `yaml:"category"`
	Confidence float64 `yaml:"confidence,omitempty"`
}

func newPatternsCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Similarity patterns used for auto-categorization",
	}
	cmd.AddCommand(newPatternsListCommand(opts), newPatternsAddCommand(opts), newPatternsTestCommand(opts))
	return cmd
}

func newPatternsListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			patterns, err := a.store.Patterns.List(cmd.Context())
			if err != nil {
				return err
			}
			cats, err := categories.Load(cmd.Context(), a.store.Categories)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"ID", "Type", "Value", "Category", "Confidence", "Uses"})
			for _, p := range patterns {
				table.Append([]string{
					strconv.FormatInt(p.ID, 10), string(p.PatternType), p.PatternValue, cats.Path(p.CategoryID),
					strconv.FormatFloat(p.ConfidenceScore, 'f', 2, 64), strconv.Itoa(p.UsageCount),
				})
			}
			table.Render()
			return nil
		},
	}
}

func newPatternsAddCommand(opts *globalOptions) *cobra.Command {
	var (
		spec patternSpec
		file string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a pattern, or many from a YAML file",
		Example: "  spendlens patterns add --type contains --value TESCO --category Groceries\n" +
			"  spendlens patterns add --file patterns.yaml",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			specs := []patternSpec{spec}
			if file != "" {
				loaded, err := readPatternFile(file)
				if err != nil {
					return err
				}
				specs = loaded
			}

			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			cats, err := categories.Load(cmd.Context(), a.store.Categories)
			if err != nil {
				return err
			}
			for _, s := range specs {
				id, err := addPattern(cmd.Context(), a, cats, s)
				if err != nil {
					return fmt.Errorf("pattern %q: %w", s.Value, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added pattern %d: %s %q -> %s\n", id, s.Type, s.Value, s.Category)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&spec.Type, "type", string(model.PatternContains), "exact, contains, starts_with or regex")
	cmd.Flags().StringVar(&spec.Value, "value", "", "text or expression to match")
	cmd.Flags().StringVar(&spec.Category, "category", "", "category name")
	cmd.Flags().Float64Var(&spec.Confidence, "confidence", model.DefaultConfidence, "ranking weight among matches")
	cmd.Flags().StringVar(&file, "file", "", "YAML file with a patterns list")
	cmd.MarkFlagsMutuallyExclusive("file", "value")

	return cmd
}

func readPatternFile(path string) ([]patternSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pattern file: %w", err)
	}
	var pf patternFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing pattern file: %w", err)
	}
	if len(pf.Patterns) == 0 {
		return nil, errors.New("pattern file has no patterns")
	}
	return pf.Patterns, nil
}

func addPattern(ctx context.Context, a *app, cats *categories.Service, s patternSpec) (int64, error) {
	pt, err := model.ParsePatternType(s.Type)
	if err != nil {
		return 0, err
	}
	if s.Value == "" {
		return 0, errors.New("value is required")
	}
	p := model.SimilarityPattern{PatternType: pt, PatternValue: s.Value, ConfidenceScore: s.Confidence}
	if s.Category != "" {
		c, ok := cats.ByName(s.Category)
		if !ok {
			return 0, fmt.Errorf("unknown category %q", s.Category)
		}
		p.CategoryID = c.ID
		p.ParentCategoryID = c.ParentID
	}
	return a.store.Patterns.Create(ctx, p)
}

func newPatternsTestCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "test <description>",
		Short: "Show which pattern would categorize a description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			best, ok, err := categorize.New(a.store, a.log).Preview(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No pattern matches")
				return nil
			}
			cats, err := categories.Load(cmd.Context(), a.store.Categories)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pattern %d (%s %q, confidence %.2f) -> %s\n",
				best.ID, best.PatternType, best.PatternValue, best.ConfidenceScore, cats.Path(best.CategoryID))
			return nil
		},
	}
}
