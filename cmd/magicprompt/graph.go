package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/magiclab/magicprompt/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Inspect the prompt graph",
	Long:  `Validates and prints the authoring graph: its stages in traversal order, collected fields, and transitions. Loading a custom file with --graph doubles as validation; a broken file fails with the offending stage or edge.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(cmd)
		if err != nil {
			return err
		}

		if export, _ := cmd.Flags().GetString("export"); export != "" {
			return exportGraph(g, export)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "entrypoint: %s\n", g.Entrypoint())
		fmt.Fprintf(out, "stages: %d\n\n", g.Len())

		for _, node := range g.Stages() {
			fmt.Fprintf(out, "%s  (layer %s)\n", node.ID, node.Layer)
			if len(node.Collects) > 0 {
				fmt.Fprintf(out, "  collects: %s\n", strings.Join(node.Collects, ", "))
			}
			if node.SummaryKey != "" {
				fmt.Fprintf(out, "  summary key: %s\n", node.SummaryKey)
			}
			for _, edge := range g.Edges() {
				if edge.From != node.ID {
					continue
				}
				if edge.When == nil {
					fmt.Fprintf(out, "  -> %s\n", edge.To)
				} else {
					fmt.Fprintf(out, "  -> %s  (when %s)\n", edge.To, describeCondition(edge.When))
				}
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().String("graph", "", "Graph definition file (YAML); defaults to the built-in graph")
	graphCmd.Flags().String("export", "", "Write the graph as YAML to the given file")
}

func exportGraph(g *graph.PromptGraph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := graph.Dump(g, f); err != nil {
		return fmt.Errorf("failed to export graph: %w", err)
	}
	return nil
}

func describeCondition(c *graph.Condition) string {
	switch c.Kind {
	case graph.KindStageAnswered:
		return fmt.Sprintf("stage %s answered", c.Stage)
	case graph.KindFieldCollected:
		return fmt.Sprintf("field %s.%s collected", c.Stage, c.Field)
	default:
		return string(c.Kind)
	}
}
