package classifier

import (
	"strings"

	"github.com/yukikurage/project-task-api/internal/models"
)

// importantKeywords raise a sentiment-based result to HIGH.
var importantKeywords = []string{
	"urgent", "important", "critical", "asap", "deadline",
	"must", "need", "required", "essential", "priority",
	"immediate", "emergency", "fix", "bug", "error", "blocking",
}

// highPriorityKeywords drive the fallback path.
var highPriorityKeywords = []string{
	"urgent", "important", "critical", "asap", "as soon as possible",
	"deadline", "due", "must", "need", "required", "essential",
	"priority", "immediate", "emergency", "fix", "bug", "error",
	"broken", "issue", "problem", "blocking", "blocker",
}

var lowPriorityKeywords = []string{
	"nice to have", "optional", "later", "someday", "maybe",
	"if possible", "when time", "low priority", "minor",
}

// containsAny does case-insensitive substring matching, so "urgently"
// matches "urgent".
func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// HasImportantKeyword reports whether description mentions any keyword that
// marks a task as important.
func HasImportantKeyword(description string) bool {
	return containsAny(description, importantKeywords)
}

// ClassifyByKeywords is the deterministic fallback used when no sentiment
// result is available.
func ClassifyByKeywords(description string) models.TaskPriority {
	if containsAny(description, highPriorityKeywords) {
		return models.PriorityHigh
	}
	if containsAny(description, lowPriorityKeywords) {
		return models.PriorityLow
	}
	// Length does not move the result either way.
	return models.PriorityMedium
}

// fromSentiment combines a sentiment label with the keyword check.
func fromSentiment(sentiment Sentiment, description string) models.TaskPriority {
	important := HasImportantKeyword(description)
	switch {
	case sentiment == SentimentPositive || important:
		return models.PriorityHigh
	case sentiment == SentimentNeutral:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}
