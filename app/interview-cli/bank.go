package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yoockh/yoointerview/internal/agents/interviewer"
	"github.com/yoockh/yoointerview/internal/models"
)

var (
	bankPath string
	bankRole string
	bankN    int
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Validate a question bank and preview its fallback questions",
	Long: `Loads a question bank (the embedded default when --file is empty) and
prints the first questions and the closing lines for every interview style.
These are what the interviewer falls back to when the model is unavailable.`,
	RunE: runBank,
}

func init() {
	bankCmd.Flags().StringVar(&bankPath, "file", "", "Path to a question bank YAML file")
	bankCmd.Flags().StringVar(&bankRole, "role", "Software Engineer", "Role substituted into the templates")
	bankCmd.Flags().IntVar(&bankN, "n", 3, "Questions to print per style")

	rootCmd.AddCommand(bankCmd)
}

func runBank(cmd *cobra.Command, _ []string) error {
	bank, err := interviewer.LoadBank(bankPath)
	if err != nil {
		return err
	}
	if bankN <= 0 {
		return fmt.Errorf("--n must be positive")
	}

	out := cmd.OutOrStdout()
	for _, style := range []models.InterviewStyle{models.StyleFormal, models.StyleCasual, models.StyleAggressive, models.StyleTechnical} {
		cfg := models.InterviewConfig{JobRole: bankRole, Style: style}
		fmt.Fprintf(out, "%s\n", style)
		for i := 1; i <= bankN; i++ {
			fmt.Fprintf(out, "  %d. %s\n", i, bank.Question(cfg, i))
		}
		fmt.Fprintf(out, "  closing (time):     %s\n", bank.Closing(cfg, interviewer.ReasonTimeBudget))
		fmt.Fprintf(out, "  closing (question): %s\n", bank.Closing(cfg, interviewer.ReasonQuestionCap))
	}
	return nil
}
