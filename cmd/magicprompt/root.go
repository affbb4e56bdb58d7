package main

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/magiclab/magicprompt/locale"
	"github.com/magiclab/magicprompt/locales"
)

var rootCmd = &cobra.Command{
	Use:   "magicprompt",
	Short: "Magic Prompt is a staged prompt builder for image generation",
	Long:  `Magic Prompt walks you through idea, story, style, technique, and delivery stages to assemble image generation prompts, and can chat with a local LLM server.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("lang", locale.DefaultLang, "Interface language (ru, en)")
	rootCmd.PersistentFlags().String("locales", "", "Directory with translation catalogs (defaults to built-in)")
}

// newTranslator builds a Translator from the persistent flags, using the
// embedded catalogs unless --locales points at a directory.
func newTranslator(cmd *cobra.Command) (*locale.Translator, error) {
	lang, _ := cmd.Flags().GetString("lang")
	dir, _ := cmd.Flags().GetString("locales")

	var fsys fs.FS = locales.FS
	if dir != "" {
		fsys = os.DirFS(dir)
	}
	return locale.NewTranslator(fsys, lang)
}
