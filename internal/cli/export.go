package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/codegnosis/depspace/pkg/encode"
	"github.com/codegnosis/depspace/pkg/export"
	"github.com/codegnosis/depspace/pkg/filter"
	"github.com/codegnosis/depspace/pkg/model"
)

// exportCommand creates the export command for rendering an analysis file.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output    string
		format    string
		mission   string
		family    string
		detailed  bool
		technical bool
	)

	cmd := &cobra.Command{
		Use:   "export [analysis.json]",
		Short: "Render an analysis as a DOT or SVG dependency diagram",
		Long: `Render an analysis as a DOT or SVG dependency diagram.

The export command reads an analyzer payload, builds the dependency graph,
optionally applies a filter mission or family restriction, and writes the
result as Graphviz DOT or rendered SVG.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state := filter.State{Mission: filter.Mission(mission)}
			if !state.Mission.Valid() {
				return fmt.Errorf("unknown mission %q", mission)
			}
			if family != "" {
				var fam model.Family
				if err := fam.UnmarshalText([]byte(family)); err != nil {
					return fmt.Errorf("unknown family %q", family)
				}
				state.SoloFamily = &fam
			}
			colorMode := encode.ColorByFamily
			if technical {
				colorMode = encode.ColorByCategory
			}
			return c.runExport(args[0], output, format, state, export.Options{
				Detailed:  detailed,
				ColorMode: colorMode,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input name with new extension)")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg, dot")
	cmd.Flags().StringVar(&mission, "mission", "", "filter mission: risk, rot, onboard, incident, optimize")
	cmd.Flags().StringVar(&family, "family", "", "restrict to one family: logic, ui, data, config, assets, docs, external")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include metric detail in node labels")
	cmd.Flags().BoolVar(&technical, "technical", false, "color by raw category instead of family")

	return cmd
}

// runExport loads the analysis, applies the filter, and writes the diagram.
func (c *CLI) runExport(input, output, format string, state filter.State, opts export.Options) error {
	prog := newProgress(c.Logger)

	raw, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read analysis %s: %w", input, err)
	}
	analysis, err := model.UnmarshalAnalysis(raw)
	if err != nil {
		return fmt.Errorf("parse analysis %s: %w", input, err)
	}
	g := model.Build(analysis)
	view := filter.Apply(g, state, time.Now())
	prog.done(fmt.Sprintf("Loaded %d nodes, %d visible", g.NodeCount(), len(view.Nodes)))
	if view.Fallback {
		printWarning("filters matched nothing; exporting the full graph")
	}

	dot := export.ToDOT(g, view, opts)

	var data []byte
	switch format {
	case "dot":
		data = []byte(dot)
	case "svg":
		spinner := newSpinner("Rendering SVG...")
		spinner.Start()
		data, err = export.RenderSVG(dot)
		if err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("render svg: %w", err)
		}
		spinner.Stop()
	default:
		return fmt.Errorf("unknown format %q (use svg or dot)", format)
	}

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Exported %s diagram", format)
	printFile(output)
	printStats(model.Summarize(g))
	return nil
}
