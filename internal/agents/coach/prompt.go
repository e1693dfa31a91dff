package coach

import (
	"fmt"
	"strings"

	"github.com/yoockh/yoointerview/internal/models"
)

const maxContextField = 3000

func buildFeedbackPrompt(question, answer string, cfg models.InterviewConfig) string {
	var sb strings.Builder

	sb.WriteString("You are an interview coach silently observing a mock interview. ")
	sb.WriteString("Critique the candidate's last answer. Be specific and actionable; quote the answer where it helps.\n\n")

	writeRoleContext(&sb, cfg)

	sb.WriteString("\nQUESTION:\n" + strings.TrimSpace(question) + "\n")
	sb.WriteString("\nANSWER:\n" + strings.TrimSpace(answer) + "\n")

	sb.WriteString("\nGrade along six dimensions: conciseness, completeness, technical accuracy and depth, ")
	sb.WriteString("alignment with the role context, fixes, and use of the STAR method.\n")
	return sb.String()
}

func buildSummaryPrompt(history []models.Message, cfg models.InterviewConfig) string {
	var sb strings.Builder

	sb.WriteString("You are an interview coach. The mock interview below has finished. ")
	sb.WriteString("Write the final coaching report for the candidate, looking across all answers rather than at any single one.\n\n")

	writeRoleContext(&sb, cfg)

	sb.WriteString("\nTRANSCRIPT:\n")
	for _, m := range history {
		switch m.Role {
		case models.RoleInterviewer:
			sb.WriteString("Interviewer: " + m.Content + "\n")
		case models.RoleCandidate:
			sb.WriteString("Candidate: " + m.Content + "\n")
		case models.RoleCoach:
			if m.Feedback != nil && m.Feedback.Error == "" {
				sb.WriteString(fmt.Sprintf("  [coach note] fixes: %s | STAR: %s\n", m.Feedback.Fixes, m.Feedback.STARSupport))
			}
		}
	}

	sb.WriteString(fmt.Sprintf("\nAlso propose up to %d short web search queries for learning resources that target the weaknesses.\n", MaxSearchTopics))
	return sb.String()
}

func writeRoleContext(sb *strings.Builder, cfg models.InterviewConfig) {
	sb.WriteString("ROLE: " + cfg.JobRole + "\n")
	if cfg.Company != "" {
		sb.WriteString("COMPANY: " + cfg.Company + "\n")
	}
	sb.WriteString(fmt.Sprintf("STYLE: %s, DIFFICULTY: %s\n", cfg.Style, cfg.Difficulty))
	if cfg.JobDescription != "" {
		jd := strings.TrimSpace(cfg.JobDescription)
		if len(jd) > maxContextField {
			jd = jd[:maxContextField] + "..."
		}
		sb.WriteString("JOB DESCRIPTION:\n" + jd + "\n")
	}
}
