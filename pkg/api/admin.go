package api

import (
	"encoding/json"
	"time"
)

// KnowledgeUpdate keeps Content raw so a non-string value can be rejected
// instead of silently coerced.
type KnowledgeUpdate struct {
	Content json.RawMessage `json:"content"`
}

type KnowledgeResponse struct {
	Content string `json:"content"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type InquiryFilter struct {
	Limit      int    `schema:"limit"`
	Confidence string `schema:"confidence"`
	Escalated  *bool  `schema:"escalated"`
}

type KnowledgeUploadParams struct {
	Mode string `schema:"mode"`
}

type Alert struct {
	Id        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Parent    string    `json:"parent"`
	Child     string    `json:"child"`
	Message   string    `json:"message"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
