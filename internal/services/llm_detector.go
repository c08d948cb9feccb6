package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Thalavaimanikandan/Karma-Recommendation-System/internal/llm"
)

// LLMDetector adapts a text-generation model into a category detector. It
// prompts for a single category name and trims the answer; the classifier
// decides whether the answer counts.
type LLMDetector struct {
	generator llm.Generator
	logger    *logrus.Logger
}

func NewLLMDetector(generator llm.Generator, logger *logrus.Logger) *LLMDetector {
	return &LLMDetector{generator: generator, logger: logger}
}

func (d *LLMDetector) DetectCategory(ctx context.Context, text string, categories []string) string {
	prompt := fmt.Sprintf(
		"Classify the following text into exactly one of these categories: %s.\n"+
			"Answer with the category name only, nothing else.\n\nText: %s",
		strings.Join(categories, ", "), text)

	answer, err := d.generator.Generate(ctx, prompt)
	if err != nil {
		d.logger.WithError(err).Debug("LLM category detection unavailable")
		return ""
	}

	answer = strings.TrimSpace(answer)
	// Models occasionally wrap the answer in quotes or end with a period.
	answer = strings.Trim(answer, `"'.`)
	if i := strings.IndexAny(answer, "\n"); i >= 0 {
		answer = answer[:i]
	}
	return answer
}
