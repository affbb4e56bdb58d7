package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/magiclab/magicprompt/chat"
	"github.com/magiclab/magicprompt/chat/store"
	"github.com/magiclab/magicprompt/model"
	"github.com/magiclab/magicprompt/model/anthropic"
	"github.com/magiclab/magicprompt/model/google"
	"github.com/magiclab/magicprompt/model/openai"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with an LLM in single-turn mode",
	Long:  `Starts an interactive loop that sends each question to the model on its own, with no conversation history. By default it talks to a local Ollama server through its OpenAI-compatible endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		chatModel, err := buildChatModel(cmd)
		if err != nil {
			return err
		}

		temperature, _ := cmd.Flags().GetFloat64("temperature")
		topP, _ := cmd.Flags().GetFloat64("top-p")
		maxTokens, _ := cmd.Flags().GetInt("max-tokens")
		system, _ := cmd.Flags().GetString("system")
		historyPath, _ := cmd.Flags().GetString("history")

		genOpts := chat.DefaultOptions()
		genOpts.Temperature = temperature
		genOpts.TopP = topP
		genOpts.MaxTokens = maxTokens

		loopOpts := []chat.LoopOption{
			chat.WithInput(cmd.InOrStdin()),
			chat.WithOutput(cmd.OutOrStdout()),
			chat.WithGenOptions(genOpts),
			chat.WithSystemPrompt(system),
		}

		if historyPath != "" {
			history, err := store.NewSQLiteStore(historyPath)
			if err != nil {
				return fmt.Errorf("failed to open history store: %w", err)
			}
			defer history.Close()
			loopOpts = append(loopOpts, chat.WithStore(history, uuid.NewString()))
		}

		loop := chat.NewLoop(chatModel, loopOpts...)
		return loop.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().String("provider", "openai", "Model provider: openai, anthropic, or google")
	chatCmd.Flags().String("model", "mistral", "Model name")
	chatCmd.Flags().String("base-url", "http://localhost:11434/v1", "Base URL for OpenAI-compatible servers (openai provider only)")
	chatCmd.Flags().Float64("temperature", 0.8, "Sampling temperature")
	chatCmd.Flags().Float64("top-p", 0.7, "Nucleus sampling cutoff")
	chatCmd.Flags().Int("max-tokens", 0, "Maximum tokens per reply (0 = provider default)")
	chatCmd.Flags().String("system", "Responses should be short and clear.", "System prompt sent with every question")
	chatCmd.Flags().String("history", "", "SQLite file to record the transcript to (off by default)")
}

// buildChatModel constructs the provider adapter selected by --provider.
// API keys come from the environment; local servers accept any key.
func buildChatModel(cmd *cobra.Command) (model.ChatModel, error) {
	provider, _ := cmd.Flags().GetString("provider")
	modelName, _ := cmd.Flags().GetString("model")
	baseURL, _ := cmd.Flags().GetString("base-url")

	switch provider {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			// Local servers such as Ollama ignore the key but the SDK
			// requires one.
			apiKey = "ollama"
		}
		var opts []openai.Option
		if baseURL != "" {
			opts = append(opts, openai.WithBaseURL(baseURL))
		}
		return openai.NewChatModel(apiKey, modelName, opts...), nil
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
		}
		return anthropic.NewChatModel(apiKey, modelName), nil
	case "google":
		apiKey := os.Getenv("GOOGLE_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY is not set")
		}
		return google.NewChatModel(apiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}
