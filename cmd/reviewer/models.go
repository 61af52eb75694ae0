package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xoho/code-reviewer/internal/app"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models available on the inference endpoint",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	a, err := app.NewApp(cfgFile, app.WithLogLevel(logLevel))
	if err != nil {
		return err
	}

	models, err := a.Ollama.ListModels(cmd.Context())
	if err != nil {
		return err
	}
	if len(models) == 0 {
		fmt.Println("No models installed on the endpoint.")
		return nil
	}

	titleColor.Printf("Models on %s:\n", a.Cfg.OllamaURL)
	for _, m := range models {
		marker := " "
		if m.Name == a.Cfg.Model {
			marker = "*"
		}
		fmt.Printf(" %s %-40s %6.1f GB\n", marker, m.Name, float64(m.Size)/(1<<30))
	}
	dimColor.Println("\n* configured model")
	return nil
}
