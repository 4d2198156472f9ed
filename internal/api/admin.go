package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"frontdesk-backend/internal/document_parsing"
	"frontdesk-backend/internal/messaging"
	"frontdesk-backend/internal/metrics"
	"frontdesk-backend/internal/storage"
	"frontdesk-backend/pkg/api"
	"frontdesk-backend/pkg/models"
)

const (
	UploadModeReplace = "replace"
	UploadModeAppend  = "append"

	maxUploadMemory = 32 << 20
)

type AdminService struct {
	transcripts storage.TranscriptStore
	knowledge   storage.KnowledgeStore
	alerts      *messaging.AlertFeed
}

func NewAdminService(transcripts storage.TranscriptStore, knowledge storage.KnowledgeStore, alerts *messaging.AlertFeed) *AdminService {
	return &AdminService{transcripts: transcripts, knowledge: knowledge, alerts: alerts}
}

func (s *AdminService) AddRoutes(r chi.Router) {
	r = WithTimeout(r)
	r.Route("/knowledge", func(r chi.Router) {
		r.Get("/", RestHandler(s.GetKnowledge))
		r.Post("/", RestHandler(s.UpdateKnowledge))
		r.Post("/upload", RestHandler(s.UploadKnowledge))
	})
	r.Route("/inquiries", func(r chi.Router) {
		r.Get("/", RestHandler(s.ListInquiries))
		r.Get("/{inquiry_id}", RestHandler(s.GetInquiry))
	})
	r.Get("/alerts", RestHandler(s.ListAlerts))
}

func (s *AdminService) GetKnowledge(r *http.Request) (any, error) {
	content, err := s.knowledge.Load(r.Context())
	if err != nil {
		slog.Error("error reading knowledge base", "error", err)
		metrics.RecordStoreError("knowledge", "load")
		return nil, CodedErrorf(http.StatusInternalServerError, "Failed to read knowledge base")
	}
	return api.KnowledgeResponse{Content: content}, nil
}

func (s *AdminService) UpdateKnowledge(r *http.Request) (any, error) {
	req, err := ParseRequest[api.KnowledgeUpdate](r)
	if err != nil {
		return nil, err
	}

	// null decodes into a nil pointer, so it is rejected along with non-strings.
	var content *string
	if len(req.Content) == 0 || json.Unmarshal(req.Content, &content) != nil || content == nil {
		return nil, CodedErrorf(http.StatusBadRequest, "Invalid content")
	}

	if err := s.knowledge.Save(r.Context(), *content); err != nil {
		slog.Error("error saving knowledge base", "error", err)
		metrics.RecordStoreError("knowledge", "save")
		return nil, CodedErrorf(http.StatusInternalServerError, "Failed to update knowledge base")
	}

	slog.Info("knowledge base updated", "bytes", len(*content))
	return api.SuccessResponse{Success: true, Message: "Knowledge base updated"}, nil
}

func (s *AdminService) UploadKnowledge(r *http.Request) (any, error) {
	params, err := ParseRequestQueryParams[api.KnowledgeUploadParams](r)
	if err != nil {
		return nil, err
	}
	mode := strings.ToLower(params.Mode)
	if mode == "" {
		mode = UploadModeReplace
	}
	if mode != UploadModeReplace && mode != UploadModeAppend {
		return nil, CodedErrorf(http.StatusBadRequest, "invalid mode '%s', expected '%s' or '%s'", params.Mode, UploadModeReplace, UploadModeAppend)
	}

	r.Body = http.MaxBytesReader(nil, r.Body, document_parsing.MaxDocumentSize+maxUploadMemory)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, CodedErrorf(http.StatusBadRequest, "error parsing multipart form: %v", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, CodedErrorf(http.StatusBadRequest, "missing 'file' in upload")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, CodedErrorf(http.StatusBadRequest, "error reading uploaded file: %v", err)
	}

	text, err := document_parsing.ToMarkdown(header.Filename, data)
	if err != nil {
		slog.Warn("unable to convert uploaded document", "file", header.Filename, "error", err)
		return nil, CodedErrorf(http.StatusBadRequest, "unable to read %s: %v", header.Filename, err)
	}

	if mode == UploadModeAppend {
		existing, err := s.knowledge.Load(r.Context())
		if err != nil {
			slog.Error("error reading knowledge base", "error", err)
			metrics.RecordStoreError("knowledge", "load")
			return nil, CodedErrorf(http.StatusInternalServerError, "Failed to read knowledge base")
		}
		if strings.TrimSpace(existing) != "" {
			text = strings.TrimRight(existing, "\n") + "\n\n" + text
		}
	}

	if err := s.knowledge.Save(r.Context(), text); err != nil {
		slog.Error("error saving knowledge base", "error", err)
		metrics.RecordStoreError("knowledge", "save")
		return nil, CodedErrorf(http.StatusInternalServerError, "Failed to update knowledge base")
	}

	slog.Info("knowledge base uploaded", "file", header.Filename, "mode", mode, "bytes", len(text))
	return api.SuccessResponse{
		Success: true,
		Message: fmt.Sprintf("Knowledge base updated from %s", header.Filename),
	}, nil
}

func (s *AdminService) listInquiries(r *http.Request) []models.Inquiry {
	inquiries, err := s.transcripts.List(r.Context())
	if err != nil {
		slog.Warn("unable to read inquiries, returning empty list", "error", err)
		metrics.RecordStoreError("transcript", "list")
		return []models.Inquiry{}
	}
	return inquiries
}

func (s *AdminService) ListInquiries(r *http.Request) (any, error) {
	filter, err := ParseRequestQueryParams[api.InquiryFilter](r)
	if err != nil {
		return nil, err
	}

	if filter.Limit < 0 {
		return nil, CodedErrorf(http.StatusBadRequest, "limit must be non-negative")
	}

	level := models.ConfidenceLevel(strings.ToLower(filter.Confidence))
	switch level {
	case "", models.ConfidenceGreen, models.ConfidenceYellow, models.ConfidenceRed:
	default:
		return nil, CodedErrorf(http.StatusBadRequest, "invalid confidence '%s'", filter.Confidence)
	}

	out := make([]models.Inquiry, 0)
	for _, inquiry := range s.listInquiries(r) {
		if level != "" && inquiry.Confidence != level {
			continue
		}
		if filter.Escalated != nil && inquiry.NeedsHumanReview != *filter.Escalated {
			continue
		}
		out = append(out, inquiry)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}

	return out, nil
}

func (s *AdminService) GetInquiry(r *http.Request) (any, error) {
	id := chi.URLParam(r, "inquiry_id")

	inquiry, found, err := s.transcripts.Get(r.Context(), id)
	if err != nil {
		slog.Error("error reading inquiry", "inquiry_id", id, "error", err)
		metrics.RecordStoreError("transcript", "get")
		return nil, CodedErrorf(http.StatusInternalServerError, "Failed to fetch inquiry")
	}
	if !found {
		return nil, CodedErrorf(http.StatusNotFound, "inquiry '%s' not found", id)
	}

	return inquiry, nil
}

func (s *AdminService) ListAlerts(r *http.Request) (any, error) {
	events := s.alerts.Latest()

	alerts := make([]api.Alert, 0, len(events))
	for _, event := range events {
		alerts = append(alerts, api.Alert{
			Id:        event.Id.String(),
			SessionID: event.SessionID,
			Parent:    event.Parent,
			Child:     event.Child,
			Message:   event.Message,
			Reason:    event.Reason,
			Timestamp: event.Timestamp,
		})
	}

	return alerts, nil
}
