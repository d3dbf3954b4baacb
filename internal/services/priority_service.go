package services

import (
	"context"
	"strings"
	"time"

	"github.com/yukikurage/project-task-api/internal/models"
)

// PriorityService exposes the classifier on its own, without creating a task.
type PriorityService struct {
	classifier PriorityClassifier
}

func NewPriorityService(classifier PriorityClassifier) *PriorityService {
	return &PriorityService{classifier: classifier}
}

// DetectedPriority is the classifier's answer for one description.
type DetectedPriority struct {
	Description    string
	Priority       models.TaskPriority
	ProcessingTime time.Duration
}

// Detect classifies description and reports how long it took.
func (s *PriorityService) Detect(ctx context.Context, description string) (*DetectedPriority, error) {
	if strings.TrimSpace(description) == "" {
		return nil, ErrDescriptionRequired
	}

	start := time.Now()
	priority := s.classifier.Classify(ctx, description)

	return &DetectedPriority{
		Description:    description,
		Priority:       priority,
		ProcessingTime: time.Since(start),
	}, nil
}
