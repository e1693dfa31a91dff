package interviewer

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yoockh/yoointerview/internal/models"
)

//go:embed questionbank.yaml
var defaultBank []byte

// Bank holds the fallback questions and closing lines used when the model
// cannot produce a turn.
type Bank struct {
	Questions    map[models.InterviewStyle][]string `yaml:"questions"`
	ClosingLines map[string]string                  `yaml:"closing"`
}

// LoadBank reads a question bank from path, or the embedded default when path
// is empty.
func LoadBank(path string) (*Bank, error) {
	data := defaultBank
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read question bank %s: %w", path, err)
		}
		data = b
	}

	var bank Bank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	if err := bank.validate(); err != nil {
		return nil, err
	}
	return &bank, nil
}

// MustDefaultBank returns the embedded bank and panics if it is malformed.
func MustDefaultBank() *Bank {
	b, err := LoadBank("")
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Bank) validate() error {
	if len(b.Questions[models.StyleFormal]) == 0 {
		return fmt.Errorf("question bank must define FORMAL questions")
	}
	if strings.TrimSpace(b.ClosingLines["default"]) == "" {
		return fmt.Errorf("question bank must define a default closing line")
	}
	return nil
}

// Question returns the fallback for the n-th question (1-based) in style,
// falling back to FORMAL for styles without their own list.
func (b *Bank) Question(cfg models.InterviewConfig, n int) string {
	qs := b.Questions[cfg.Style]
	if len(qs) == 0 {
		qs = b.Questions[models.StyleFormal]
	}
	if n < 1 {
		n = 1
	}
	return render(qs[(n-1)%len(qs)], cfg)
}

// Closing returns the closing line for reason.
func (b *Bank) Closing(cfg models.InterviewConfig, reason string) string {
	line, ok := b.ClosingLines[reason]
	if !ok || strings.TrimSpace(line) == "" {
		line = b.ClosingLines["default"]
	}
	return render(line, cfg)
}

func render(tmpl string, cfg models.InterviewConfig) string {
	company := cfg.Company
	if company == "" {
		company = "our company"
	}
	return strings.NewReplacer("{role}", cfg.JobRole, "{company}", company).Replace(tmpl)
}
