package models

type Resource struct {
	Title   string `bson:"title" json:"title"`
	URL     string `bson:"url" json:"url"`
	Snippet string `bson:"snippet,omitempty" json:"snippet,omitempty"`
	Topic   string `bson:"topic,omitempty" json:"topic,omitempty"`
}

type FinalCoachingSummary struct {
	Patterns             string   `bson:"patterns" json:"patterns"`
	Strengths            string   `bson:"strengths" json:"strengths"`
	Weaknesses           string   `bson:"weaknesses" json:"weaknesses"`
	ImprovementAreas     string   `bson:"improvement_areas" json:"improvement_areas"`
	ResourceSearchTopics []string `bson:"resource_search_topics" json:"resource_search_topics"`

	// nil until enrichment succeeded
	RecommendedResources []Resource `bson:"recommended_resources,omitempty" json:"recommended_resources"`

	Error string `bson:"error,omitempty" json:"error,omitempty"`
}

func SummaryError(msg string) *FinalCoachingSummary {
	return &FinalCoachingSummary{Error: msg}
}

const StatusEnded = "ended"

type EndResult struct {
	Status          string                `json:"status"`
	SessionID       string                `json:"session_id"`
	CoachingSummary *FinalCoachingSummary `json:"coaching_summary"`
}
