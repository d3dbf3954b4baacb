// Package classifier infers a task priority from its free-text description.
package classifier

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/yukikurage/project-task-api/internal/constants"
	"github.com/yukikurage/project-task-api/internal/logging"
	"github.com/yukikurage/project-task-api/internal/models"
)

type Sentiment string

const (
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentPositive Sentiment = "positive"
)

// ErrMalformedResponse is returned by analyzers when the remote service
// answers with something that cannot be read as a sentiment.
var ErrMalformedResponse = errors.New("malformed sentiment response")

// SentimentAnalyzer is a remote sentiment service.
type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string) (Sentiment, error)
}

// Classifier resolves priorities. The zero value is not usable; build one
// with New.
type Classifier struct {
	analyzer SentimentAnalyzer
	breaker  *gobreaker.CircuitBreaker
	timeout  time.Duration
	log      *logrus.Logger
}

type Option func(*Classifier)

// WithTimeout bounds every call to the sentiment service.
func WithTimeout(d time.Duration) Option {
	return func(c *Classifier) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger overrides the package logger.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Classifier) {
		c.log = l
	}
}

// New builds a Classifier. A nil analyzer means every call takes the keyword
// path.
func New(analyzer SentimentAnalyzer, opts ...Option) *Classifier {
	c := &Classifier{
		analyzer: analyzer,
		timeout:  constants.DefaultClassifierTimeout,
		log:      logging.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "sentiment-cb",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Info("Circuit breaker state changed")
		},
	})

	return c
}

// Classify never fails. Empty descriptions are MEDIUM; otherwise the
// sentiment service is consulted and any failure there falls back to
// keyword matching.
func (c *Classifier) Classify(ctx context.Context, description string) models.TaskPriority {
	if strings.TrimSpace(description) == "" {
		return models.PriorityMedium
	}

	sentiment, err := c.analyze(ctx, description)
	if err != nil {
		c.log.WithError(err).Warn("Sentiment analysis unavailable, using keyword fallback")
		return ClassifyByKeywords(description)
	}

	return fromSentiment(sentiment, description)
}

func (c *Classifier) analyze(ctx context.Context, description string) (Sentiment, error) {
	if c.analyzer == nil {
		return "", errors.New("no sentiment analyzer configured")
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return c.analyzer.Analyze(callCtx, description)
	})
	if err != nil {
		return "", err
	}

	sentiment, ok := result.(Sentiment)
	if !ok {
		return "", ErrMalformedResponse
	}
	return sentiment, nil
}
