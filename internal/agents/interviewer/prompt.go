package interviewer

import (
	"fmt"
	"strings"

	"github.com/yoockh/yoointerview/internal/models"
)

var styleGuidance = map[models.InterviewStyle]string{
	models.StyleFormal:     "Professional and structured. Polite, neutral wording, one clear question at a time.",
	models.StyleCasual:     "Relaxed and conversational. Warm tone, plain language, light follow-ups.",
	models.StyleAggressive: "Demanding stress interview. Challenge vague answers, press for specifics and evidence, stay civil.",
	models.StyleTechnical:  "Technical deep dive. Ask about design, trade-offs, debugging and concrete implementation detail.",
}

var difficultyGuidance = map[models.Difficulty]string{
	models.DifficultyEasy:   "Keep questions approachable, suitable for an early-career candidate.",
	models.DifficultyMedium: "Pitch questions at a solid mid-level candidate.",
	models.DifficultyHard:   "Ask senior-level questions and follow up on weak spots.",
}

const maxPromptField = 4000

func buildTurnPrompt(history []models.Message, cfg models.InterviewConfig, remaining *float64, asked int, forced string) string {
	var sb strings.Builder

	sb.WriteString("You are an experienced interviewer running a mock job interview.\n\n")

	sb.WriteString("ROLE: " + cfg.JobRole + "\n")
	if cfg.Company != "" {
		sb.WriteString("COMPANY: " + cfg.Company + "\n")
	}
	if cfg.JobDescription != "" {
		sb.WriteString("JOB DESCRIPTION:\n" + clip(cfg.JobDescription) + "\n")
	}
	if cfg.Resume != "" {
		sb.WriteString("CANDIDATE RESUME:\n" + clip(cfg.Resume) + "\n")
	}

	sb.WriteString("\nSTYLE: " + styleGuidance[cfg.Style] + "\n")
	sb.WriteString("DIFFICULTY: " + difficultyGuidance[cfg.Difficulty] + "\n")

	sb.WriteString(fmt.Sprintf("\nQuestions asked so far: %d of at most %d.\n", asked, cfg.MaxQuestions))
	if remaining != nil {
		sb.WriteString(fmt.Sprintf("Time remaining: %.1f minutes.\n", *remaining))
	}

	switch forced {
	case ReasonTimeBudget:
		sb.WriteString("\nThe time budget is used up. Respond with a short closing statement that thanks the candidate and ends the interview. response_type MUST be \"closing_statement\".\n")
	case ReasonQuestionCap:
		sb.WriteString("\nAll questions have been asked. Respond with a short closing statement that thanks the candidate and ends the interview. response_type MUST be \"closing_statement\".\n")
	default:
		sb.WriteString("\nAsk the next question. Do not repeat earlier questions. Build on the candidate's last answer where useful. ")
		sb.WriteString("Use response_type \"closing_statement\" only if the interview is genuinely complete.\n")
	}

	sb.WriteString("\nCONVERSATION SO FAR:\n")
	if len(history) == 0 {
		sb.WriteString("(nothing yet)\n")
	}
	for _, m := range history {
		switch m.Role {
		case models.RoleInterviewer:
			sb.WriteString("Interviewer: " + m.Content + "\n")
		case models.RoleCandidate:
			sb.WriteString("Candidate: " + m.Content + "\n")
		}
	}

	return sb.String()
}

func clip(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxPromptField {
		return s
	}
	return s[:maxPromptField] + "..."
}
