package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag string
	rootCmd = &cobra.Command{
		Use:   "analyzerctl",
		Short: "CLI client for the conversation analyzer REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Analyzer service base URL")

	// ask subcommand
	var modelFlag string
	var maxTokensFlag int
	askCmd := &cobra.Command{
		Use:   "ask QUESTION",
		Short: "Ask a question about the loaded conversation data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{"question": args[0]}
			if modelFlag != "" {
				payload["model"] = modelFlag
			}
			if maxTokensFlag > 0 {
				payload["maxTokens"] = maxTokensFlag
			}
			data, err := doPostJSON(apiFlag+"/api/ask", payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	askCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Override the Claude model")
	askCmd.Flags().IntVarP(&maxTokensFlag, "max-tokens", "t", 0, "Answer token budget")
	rootCmd.AddCommand(askCmd)

	// summary subcommand
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show corpus statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(apiFlag + "/api/corpus/summary")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	rootCmd.AddCommand(summaryCmd)

	// refresh subcommand
	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Reload the corpus from the blob store",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPostJSON(apiFlag+"/api/corpus/refresh", map[string]interface{}{})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	rootCmd.AddCommand(refreshCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
