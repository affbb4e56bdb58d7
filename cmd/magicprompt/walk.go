package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/magiclab/magicprompt/graph"
	"github.com/magiclab/magicprompt/graph/emit"
	"github.com/magiclab/magicprompt/locale"
)

// stageLabelKeys maps the built-in stage IDs to their translation keys.
// Unknown stages (from a custom --graph file) fall back to the raw ID.
var stageLabelKeys = map[string]string{
	"idea:seed":             "canvas.idea_seed",
	"story:genre":           "canvas.story_genre",
	"style:visual_language": "canvas.style_visual",
	"technique:camera":      "canvas.technique_camera",
	"delivery:export":       "canvas.delivery_export",
}

var walkCmd = &cobra.Command{
	Use:   "walk",
	Short: "Walk the prompt graph stage by stage",
	Long:  `Walks the authoring graph interactively: each stage asks for its fields, stores the answers, and offers the transitions the answers unlock.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		translator, err := newTranslator(cmd)
		if err != nil {
			return err
		}

		g, err := loadGraph(cmd)
		if err != nil {
			return err
		}

		preset, _ := cmd.Flags().GetString("preset")
		verbose, _ := cmd.Flags().GetBool("verbose")

		opts := []graph.SessionOption{
			graph.WithID(uuid.NewString()),
		}
		if preset != "" {
			opts = append(opts, graph.WithPreset(preset))
		}
		if verbose {
			opts = append(opts, graph.WithEmitter(emit.NewLogEmitter(os.Stderr, false)))
		}

		session := graph.NewSession(g, opts...)
		return runWalk(cmd, session, translator)
	},
}

func init() {
	rootCmd.AddCommand(walkCmd)

	walkCmd.Flags().String("graph", "", "Graph definition file (YAML); defaults to the built-in graph")
	walkCmd.Flags().String("preset", "", "Preset label applied by apply_preset transforms")
	walkCmd.Flags().BoolP("verbose", "v", false, "Log session events to stderr")
}

// loadGraph returns the built-in graph, or the one described by --graph.
func loadGraph(cmd *cobra.Command) (*graph.PromptGraph, error) {
	path, _ := cmd.Flags().GetString("graph")
	if path == "" {
		return graph.DefaultGraph(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph file: %w", err)
	}
	defer f.Close()

	return graph.Load(f)
}

func runWalk(cmd *cobra.Command, session *graph.Session, translator *locale.Translator) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, translator.T("app.title"))
	fmt.Fprintln(out, translator.T("app.tagline"))
	fmt.Fprintln(out)

	for {
		node := session.Current()

		fmt.Fprintln(out, translator.Tf("walk.stage_heading", stageLabel(translator, node.ID)))
		fmt.Fprintln(out, node.PromptTemplate)
		if len(node.Collects) > 0 {
			fmt.Fprintln(out, translator.T("walk.skip_hint"))
		}

		payload := make(map[string]string)
		for _, field := range node.Collects {
			fmt.Fprint(out, translator.Tf("walk.field_prompt", field))
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				return nil
			}
			value := strings.TrimSpace(scanner.Text())
			if value != "" {
				payload[field] = value
			}
		}

		if err := session.Submit(payload); err != nil {
			fmt.Fprintf(out, "An error occurred: %v\n", err)
			continue
		}

		next := session.Next()
		if len(next) == 0 {
			fmt.Fprintln(out, translator.T("walk.no_next"))
			break
		}

		target := next[0]
		if len(next) > 1 {
			labels := make([]string, len(next))
			for i, n := range next {
				labels[i] = fmt.Sprintf("%d) %s", i+1, stageLabel(translator, n.ID))
			}
			fmt.Fprintln(out, translator.Tf("walk.eligible", strings.Join(labels, "  ")))
			target = next[chooseIndex(scanner, out, len(next))]
		}

		if err := session.Advance(target.ID); err != nil {
			fmt.Fprintf(out, "An error occurred: %v\n", err)
			continue
		}
		fmt.Fprintln(out)
	}

	printSummary(out, session, translator)
	fmt.Fprintln(out, translator.T("walk.done"))
	return nil
}

// chooseIndex reads a 1-based choice from the user, defaulting to the first
// option on empty or invalid input.
func chooseIndex(scanner *bufio.Scanner, out io.Writer, n int) int {
	fmt.Fprint(out, "> ")
	if !scanner.Scan() {
		return 0
	}
	var choice int
	if _, err := fmt.Sscanf(strings.TrimSpace(scanner.Text()), "%d", &choice); err != nil {
		return 0
	}
	if choice < 1 || choice > n {
		return 0
	}
	return choice - 1
}

func printSummary(out io.Writer, session *graph.Session, translator *locale.Translator) {
	entries := session.Summary()
	if len(entries) == 0 {
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, translator.T("walk.summary_heading"))
	for _, entry := range entries {
		fmt.Fprintf(out, "  %s: %s\n", stageLabel(translator, entry.StageID), entry.Value)
	}
}

func stageLabel(translator *locale.Translator, stageID string) string {
	if key, ok := stageLabelKeys[stageID]; ok {
		return translator.T(key)
	}
	return stageID
}
