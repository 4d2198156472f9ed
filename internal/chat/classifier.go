package chat

import (
	"encoding/json"
	"strings"
)

const (
	defaultConfidenceScore = 0.5
	defaultReasoning       = "No reasoning provided"
	defaultTopic           = "General Inquiry"
	parseFailureReasoning  = "Failed to parse structured response; returning raw model output"
)

// Verdict is the structured reading of one model reply.
type Verdict struct {
	Answer           string
	ConfidenceScore  float64
	Reasoning        string
	NeedsHumanReview bool
	ReviewReason     *string
	TopicSummary     string
}

// ClassifyResponse parses the model reply. It never fails: malformed output
// degrades to a medium-confidence verdict carrying the raw text.
func ClassifyResponse(raw string) Verdict {
	text := stripCodeFence(strings.TrimSpace(raw))

	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err != nil || fields == nil {
		return Verdict{
			Answer:          raw,
			ConfidenceScore: defaultConfidenceScore,
			Reasoning:       parseFailureReasoning,
			TopicSummary:    defaultTopic,
		}
	}

	verdict := Verdict{
		Answer:          raw,
		ConfidenceScore: defaultConfidenceScore,
		Reasoning:       defaultReasoning,
		TopicSummary:    defaultTopic,
	}

	if answer, ok := fields["answer"].(string); ok {
		verdict.Answer = answer
	}
	if score, ok := fields["confidenceScore"].(float64); ok {
		verdict.ConfidenceScore = clamp(score, 0, 1)
	}
	if reasoning, ok := fields["reasoning"].(string); ok {
		verdict.Reasoning = reasoning
	}
	if review, ok := fields["needsHumanReview"].(bool); ok {
		verdict.NeedsHumanReview = review
	}
	if reason, ok := fields["reviewReason"].(string); ok {
		verdict.ReviewReason = &reason
	}
	if topic, ok := fields["topicSummary"].(string); ok && strings.TrimSpace(topic) != "" {
		verdict.TopicSummary = topic
	}

	return verdict
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if strings.HasPrefix(strings.ToLower(text), "json") {
		text = text[len("json"):]
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
