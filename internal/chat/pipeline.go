package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"frontdesk-backend/internal/llm"
	"frontdesk-backend/internal/messaging"
	"frontdesk-backend/internal/metrics"
	"frontdesk-backend/pkg/models"
)

var (
	ErrInvalidTurn = errors.New("invalid chat turn")
	ErrUpstream    = errors.New("model request failed")
)

const (
	escalationReason = "Parent asked to speak with a human"
	escalationTopic  = "Human Handoff Request"
	verdictName      = "front_desk_verdict"
)

type TranscriptStore interface {
	Get(ctx context.Context, id string) (models.Inquiry, bool, error)

	Upsert(ctx context.Context, inquiry models.Inquiry) error
}

type KnowledgeSource interface {
	Load(ctx context.Context) (string, error)
}

// Turn is one parent message plus the conversation so far, as sent by the client.
type Turn struct {
	SessionID string
	Messages  []models.ChatMessage
	UserType  models.UserType
	Child     *models.ChildData
}

// Assessment is what a turn contributes to the inquiry besides transcript messages.
type Assessment struct {
	Topic            string
	Score            float64
	Confidence       models.ConfidenceLevel
	Status           string
	NeedsHumanReview bool
	ReviewReason     *string
}

type Pipeline struct {
	store     TranscriptStore
	knowledge KnowledgeSource
	llm       llm.Client
	detector  *EscalationDetector
	publisher messaging.Publisher

	now func() time.Time
}

// NewPipeline wires a pipeline. publisher may be nil, in which case
// escalations are recorded but no event is emitted.
func NewPipeline(store TranscriptStore, knowledge KnowledgeSource, client llm.Client, detector *EscalationDetector, publisher messaging.Publisher) *Pipeline {
	if detector == nil {
		detector = DefaultEscalationDetector()
	}
	return &Pipeline{
		store:     store,
		knowledge: knowledge,
		llm:       client,
		detector:  detector,
		publisher: publisher,
		now:       time.Now,
	}
}

func validateTurn(turn Turn) error {
	if strings.TrimSpace(turn.SessionID) == "" {
		return fmt.Errorf("%w: session id is required", ErrInvalidTurn)
	}
	if len(turn.Messages) == 0 {
		return fmt.Errorf("%w: messages must not be empty", ErrInvalidTurn)
	}
	if last := turn.Messages[len(turn.Messages)-1]; last.Role != models.RoleUser {
		return fmt.Errorf("%w: last message must be from the user", ErrInvalidTurn)
	}
	for _, m := range turn.Messages {
		if m.Role != models.RoleUser && m.Role != models.RoleAssistant {
			return fmt.Errorf("%w: unknown message role %q", ErrInvalidTurn, m.Role)
		}
	}
	return nil
}

func latestMessage(turn Turn) string {
	return turn.Messages[len(turn.Messages)-1].Content
}

// HandleTurn answers the latest parent message and records the exchange in the
// transcript store. Only a model failure returns an error; storage problems are
// logged and the answer is still returned.
func (p *Pipeline) HandleTurn(ctx context.Context, turn Turn) (string, error) {
	if err := validateTurn(turn); err != nil {
		return "", err
	}

	if p.detector.IsEscalation(latestMessage(turn)) {
		p.escalate(ctx, turn)
		metrics.RecordTurn("classified", "escalated")
		return EscalationReply, nil
	}

	prompt := BuildSystemPrompt(turn.UserType, turn.Child, p.loadKnowledge(ctx))

	start := time.Now()
	raw, err := p.llm.Complete(ctx, llm.Request{
		SystemPrompt: prompt,
		Messages:     turn.Messages,
		Schema:       VerdictSchema,
		SchemaName:   verdictName,
	})
	if err != nil {
		metrics.RecordLLMCall("classified", "error", time.Since(start).Seconds())
		metrics.RecordTurn("classified", "upstream_error")
		slog.Error("model call failed", "session_id", turn.SessionID, "error", err)
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	metrics.RecordLLMCall("classified", "ok", time.Since(start).Seconds())

	verdict := ClassifyResponse(raw)
	level, status := MapConfidence(verdict.ConfidenceScore, verdict.NeedsHumanReview)
	metrics.RecordConfidence(string(level))

	slog.Info("classified chat turn", "session_id", turn.SessionID, "confidence", level, "score", verdict.ConfidenceScore, "topic", verdict.TopicSummary)

	p.record(ctx, turn, verdict.Answer, Assessment{
		Topic:            verdict.TopicSummary,
		Score:            verdict.ConfidenceScore,
		Confidence:       level,
		Status:           status,
		NeedsHumanReview: verdict.NeedsHumanReview,
		ReviewReason:     verdict.ReviewReason,
	})

	metrics.RecordTurn("classified", string(level))
	return verdict.Answer, nil
}

// StreamTurn relays the model's reply fragment by fragment. Nothing is
// classified or stored on this path.
func (p *Pipeline) StreamTurn(ctx context.Context, turn Turn) (<-chan llm.Chunk, error) {
	if err := validateTurn(turn); err != nil {
		return nil, err
	}

	if p.detector.IsEscalation(latestMessage(turn)) {
		p.escalate(ctx, turn)
		metrics.RecordTurn("stream", "escalated")

		chunks := make(chan llm.Chunk, 1)
		chunks <- llm.Chunk{Text: EscalationReply}
		close(chunks)
		return chunks, nil
	}

	// The streaming reply is plain text, so no JSON contract is requested.
	prompt := BuildStreamingPrompt(turn.UserType, turn.Child, p.loadKnowledge(ctx))

	start := time.Now()
	upstream, err := p.llm.Stream(ctx, llm.Request{SystemPrompt: prompt, Messages: turn.Messages})
	if err != nil {
		metrics.RecordLLMCall("stream", "error", time.Since(start).Seconds())
		metrics.RecordTurn("stream", "upstream_error")
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	relay := make(chan llm.Chunk)
	go func() {
		defer close(relay)
		status := "ok"
		for chunk := range upstream {
			if chunk.Err != nil {
				status = "error"
				chunk.Err = fmt.Errorf("%w: %w", ErrUpstream, chunk.Err)
			}
			select {
			case relay <- chunk:
			case <-ctx.Done():
				status = "cancelled"
				go drain(upstream)
				metrics.RecordLLMCall("stream", status, time.Since(start).Seconds())
				metrics.RecordTurn("stream", status)
				return
			}
		}
		metrics.RecordLLMCall("stream", status, time.Since(start).Seconds())
		metrics.RecordTurn("stream", status)
	}()

	return relay, nil
}

func drain(chunks <-chan llm.Chunk) {
	for range chunks {
	}
}

func (p *Pipeline) loadKnowledge(ctx context.Context) string {
	if p.knowledge == nil {
		return ""
	}
	knowledge, err := p.knowledge.Load(ctx)
	if err != nil {
		slog.Warn("unable to load knowledge base, continuing without it", "error", err)
		metrics.RecordStoreError("knowledge", "load")
		return ""
	}
	return knowledge
}

func (p *Pipeline) escalate(ctx context.Context, turn Turn) {
	metrics.RecordEscalation("detected")

	reason := escalationReason
	inquiry, ok := p.record(ctx, turn, EscalationReply, Assessment{
		Topic:            escalationTopic,
		Score:            0,
		Confidence:       models.ConfidenceRed,
		Status:           models.StatusNeedsReview,
		NeedsHumanReview: true,
		ReviewReason:     &reason,
	})
	if !ok {
		inquiry = MergeInquiry(nil, turn, EscalationReply, Assessment{}, p.now())
	}

	if p.publisher == nil {
		return
	}

	event := messaging.EscalationEvent{
		Id:        uuid.New(),
		SessionID: turn.SessionID,
		Parent:    inquiry.Parent,
		Child:     inquiry.Child,
		Message:   latestMessage(turn),
		Reason:    reason,
		Timestamp: p.now().UTC(),
	}
	if err := p.publisher.PublishEscalation(ctx, event); err != nil {
		slog.Warn("unable to publish escalation event", "session_id", turn.SessionID, "error", err)
		metrics.RecordEscalation("publish_failed")
		return
	}
	metrics.RecordEscalation("published")
}

// record merges the turn into the stored inquiry. It returns false when the
// write was dropped.
func (p *Pipeline) record(ctx context.Context, turn Turn, answer string, assessment Assessment) (models.Inquiry, bool) {
	existing, found, err := p.store.Get(ctx, turn.SessionID)
	if err != nil {
		// Writing without the stored transcript would drop earlier messages.
		slog.Warn("unable to read transcript, dropping write", "session_id", turn.SessionID, "error", err)
		metrics.RecordStoreError("transcript", "get")
		return models.Inquiry{}, false
	}

	var prev *models.Inquiry
	if found {
		prev = &existing
	}
	inquiry := MergeInquiry(prev, turn, answer, assessment, p.now())

	if err := p.store.Upsert(ctx, inquiry); err != nil {
		slog.Warn("unable to save transcript", "session_id", turn.SessionID, "error", err)
		metrics.RecordStoreError("transcript", "upsert")
		return inquiry, false
	}
	return inquiry, true
}

// MergeInquiry folds a turn into an existing inquiry, or starts a new one when
// existing is nil. Only the part of the client history the store has not seen
// yet is appended, followed by the assistant answer.
func MergeInquiry(existing *models.Inquiry, turn Turn, answer string, assessment Assessment, now time.Time) models.Inquiry {
	stamp := models.DisplayTime(now)

	var inquiry models.Inquiry
	seen := 0
	if existing != nil {
		inquiry = *existing
		inquiry.Transcript = append([]models.Message(nil), existing.Transcript...)
		seen = len(existing.Transcript)
	} else {
		inquiry = models.Inquiry{
			ID:        turn.SessionID,
			Parent:    models.DefaultParentName,
			Child:     models.DefaultChildName,
			Timestamp: now,
		}
	}

	if turn.Child != nil {
		if inquiry.Parent == models.DefaultParentName && turn.Child.ParentName != "" {
			inquiry.Parent = turn.Child.ParentName
		}
		if inquiry.Child == models.DefaultChildName && turn.Child.ChildName != "" {
			inquiry.Child = turn.Child.ChildName
		}
	}

	if seen < len(turn.Messages) {
		for _, m := range turn.Messages[seen:] {
			inquiry.Transcript = append(inquiry.Transcript, models.Message{Role: m.Role, Content: m.Content, Timestamp: stamp})
		}
	}
	inquiry.Transcript = append(inquiry.Transcript, models.Message{Role: models.RoleAssistant, Content: answer, Timestamp: stamp})

	if assessment.Topic != "" {
		inquiry.Topic = assessment.Topic
	}
	// Once flagged, an inquiry stays flagged with its first reason until staff
	// handle it. A reason is only kept on flagged inquiries.
	wasFlagged := existing != nil && existing.NeedsHumanReview
	inquiry.NeedsHumanReview = wasFlagged || assessment.NeedsHumanReview
	switch {
	case wasFlagged && existing.ReviewReason != nil:
		inquiry.ReviewReason = existing.ReviewReason
	case inquiry.NeedsHumanReview:
		inquiry.ReviewReason = assessment.ReviewReason
	default:
		inquiry.ReviewReason = nil
	}

	inquiry.ConfidenceScore = assessment.Score
	inquiry.Confidence = assessment.Confidence
	inquiry.Status = assessment.Status
	if inquiry.NeedsHumanReview && !assessment.NeedsHumanReview {
		inquiry.Confidence, inquiry.Status = MapConfidence(assessment.Score, true)
	}
	inquiry.UserType = turn.UserType
	inquiry.LastUpdated = now

	return inquiry
}
