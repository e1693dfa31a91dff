package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yoockh/yoointerview/config"
	"github.com/yoockh/yoointerview/internal/agents/coach"
	"github.com/yoockh/yoointerview/internal/agents/interviewer"
	"github.com/yoockh/yoointerview/internal/cache"
	"github.com/yoockh/yoointerview/internal/logger"
	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/providers/llm"
	"github.com/yoockh/yoointerview/internal/providers/search"
	"github.com/yoockh/yoointerview/internal/repositories/memory"
	"github.com/yoockh/yoointerview/internal/services"
)

const endCommand = "/end"

var (
	practiceRole         string
	practiceCompany      string
	practiceJD           string
	practiceResume       string
	practiceStyle        string
	practiceDifficulty   string
	practiceMinutes      int
	practiceTimed        bool
	practiceMaxQuestions int
	practiceHideCoach    bool
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Start an interactive mock interview",
	Long: `Starts a session and reads answers from stdin, one per line.
The coach critique is printed after every answer. Type /end (or send EOF)
to finish; the final coaching summary is printed as JSON.`,
	RunE: runPractice,
}

func init() {
	practiceCmd.Flags().StringVar(&practiceRole, "role", "", "Job role to interview for (required)")
	practiceCmd.Flags().StringVar(&practiceCompany, "company", "", "Company name")
	practiceCmd.Flags().StringVar(&practiceJD, "job-description", "", "Path to a job description text file")
	practiceCmd.Flags().StringVar(&practiceResume, "resume", "", "Path to a resume text file")
	practiceCmd.Flags().StringVar(&practiceStyle, "style", "FORMAL", "FORMAL, CASUAL, AGGRESSIVE or TECHNICAL")
	practiceCmd.Flags().StringVar(&practiceDifficulty, "difficulty", "MEDIUM", "EASY, MEDIUM or HARD")
	practiceCmd.Flags().IntVar(&practiceMinutes, "minutes", 30, "Interview length in minutes")
	practiceCmd.Flags().BoolVar(&practiceTimed, "timed", false, "Close the interview when the time budget is used up")
	practiceCmd.Flags().IntVar(&practiceMaxQuestions, "max-questions", 8, "Maximum number of questions")
	practiceCmd.Flags().BoolVar(&practiceHideCoach, "hide-coach", false, "Do not print per-answer coach feedback")

	if err := practiceCmd.MarkFlagRequired("role"); err != nil {
		panic(fmt.Sprintf("failed to mark role flag as required: %v", err))
	}

	rootCmd.AddCommand(practiceCmd)
}

func runPractice(cmd *cobra.Command, _ []string) error {
	app, err := config.LoadApp()
	if err != nil {
		return err
	}

	cfg := models.InterviewConfig{
		JobRole:               practiceRole,
		Company:               practiceCompany,
		Style:                 models.InterviewStyle(strings.ToUpper(practiceStyle)),
		Difficulty:            models.Difficulty(strings.ToUpper(practiceDifficulty)),
		DurationMinutes:       practiceMinutes,
		UseTimeBasedInterview: practiceTimed,
		MaxQuestions:          practiceMaxQuestions,
	}
	if cfg.JobDescription, err = readOptionalFile(practiceJD); err != nil {
		return err
	}
	if cfg.Resume, err = readOptionalFile(practiceResume); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	log := logger.New()
	log.SetOutput(cmd.ErrOrStderr())
	log.SetLevel(logger.ParseLevel(cliLogLevel(app.LogLevel)))

	model, err := llm.New(ctx, llm.Config{
		Provider:       app.LLMProvider,
		VertexProject:  app.VertexProject,
		VertexLocation: app.VertexLocation,
		VertexModel:    app.VertexModel,
		OpenAIKey:      app.OpenAIAPIKey,
		OpenAIBaseURL:  app.OpenAIBaseURL,
		OpenAIModel:    app.OpenAIModel,
		RequestTimeout: app.LLMTimeout,
		MaxAttempts:    app.LLMMaxAttempts,
	})
	if err != nil {
		return fmt.Errorf("llm init: %w", err)
	}
	defer model.Close()

	bank, err := interviewer.LoadBank(app.QuestionBankPath)
	if err != nil {
		return err
	}

	var enricher search.Enricher
	if app.SearchEnabled() {
		g, err := search.NewGoogle(ctx, app.SearchAPIKey, app.SearchCX)
		if err != nil {
			return err
		}
		enricher = search.NewEnricher(search.WithCache(g, cache.NewMemoryCache(), app.SearchCacheTTL, log))
	}

	svc := services.NewSessionService(services.SessionDeps{
		Sessions:    memory.NewSessionRepo(),
		Interviewer: interviewer.New(model, bank, log),
		Coach:       coach.New(model, log),
		Resources:   enricher,
		Logger:      log,
		Config: services.SessionConfig{
			AgentTimeout:   app.AgentTimeout,
			SummaryTimeout: app.SummaryTimeout,
			EnrichTimeout:  app.EnrichTimeout,
		},
	})

	return practiceLoop(ctx, svc, cfg, cmd.InOrStdin(), cmd.OutOrStdout(), !practiceHideCoach)
}

// practiceLoop runs one session to completion. Turn errors are printed and
// the loop keeps reading; only Start and End failures are returned.
func practiceLoop(ctx context.Context, svc services.SessionService, cfg models.InterviewConfig, in io.Reader, out io.Writer, showCoach bool) error {
	sess, err := svc.Start(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Session %s started. Say hello to begin, %s to finish.\n\n", sess.SessionID, endCommand)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == endCommand {
			break
		}

		turn, err := svc.ProcessMessage(ctx, sess.SessionID, line)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Fprintf(out, "! %v\n", err)
			continue
		}

		if showCoach && turn.CoachFeedback != nil {
			printFeedback(out, turn.CoachFeedback)
		}
		fmt.Fprintf(out, "\nInterviewer: %s\n\n", turn.InterviewerResponse.Content)

		if turn.InterviewerResponse.IsClosing() {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	// the caller may have interrupted; the summary still gets its own budget
	res, err := svc.End(context.WithoutCancel(ctx), sess.SessionID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func printFeedback(out io.Writer, fb *models.CoachAnswerFeedback) {
	if fb.Error != "" {
		fmt.Fprintf(out, "  [coach] %s\n", fb.Error)
		return
	}
	rows := []struct{ label, text string }{
		{"conciseness", fb.Conciseness},
		{"completeness", fb.Completeness},
		{"technical depth", fb.TechnicalDepth},
		{"alignment", fb.ContextualAlignment},
		{"fixes", fb.Fixes},
		{"STAR", fb.STARSupport},
	}
	for _, r := range rows {
		if r.text != "" {
			fmt.Fprintf(out, "  [coach] %s: %s\n", r.label, r.text)
		}
	}
}

func readOptionalFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

// cliLogLevel keeps the terminal quiet unless LOG_LEVEL asks otherwise.
func cliLogLevel(v string) string {
	if os.Getenv("LOG_LEVEL") == "" {
		return "warn"
	}
	return v
}
