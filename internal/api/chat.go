package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"frontdesk-backend/internal/chat"
	"frontdesk-backend/internal/llm"
	"frontdesk-backend/pkg/api"
	"frontdesk-backend/pkg/models"
)

const (
	SessionHeader = "X-Session-Id"

	chatFailureMessage = "Failed to process chat request. Please try again."
)

type ChatService struct {
	pipeline *chat.Pipeline
}

func NewChatService(pipeline *chat.Pipeline) *ChatService {
	return &ChatService{pipeline: pipeline}
}

func (s *ChatService) AddRoutes(r chi.Router) {
	r.Route("/chat", func(r chi.Router) {
		WithTimeout(r).Post("/", TextHandler(s.Chat))
		r.Post("/stream", TextStreamHandler(s.StreamChat))
	})
}

// parseTurn reads a chat request. A missing session id gets a fresh one, which
// is echoed back so the client can keep using it.
func parseTurn(w http.ResponseWriter, r *http.Request) (chat.Turn, error) {
	req, err := ParseRequest[api.ChatRequest](r)
	if err != nil {
		return chat.Turn{}, err
	}

	if req.UserType == "" {
		req.UserType = models.Prospective
	}
	if !req.UserType.Valid() {
		return chat.Turn{}, CodedErrorf(http.StatusBadRequest, "invalid userType '%s'", req.UserType)
	}

	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	w.Header().Set(SessionHeader, req.SessionID)

	return chat.Turn{
		SessionID: req.SessionID,
		Messages:  req.Messages,
		UserType:  req.UserType,
		Child:     req.ChildData,
	}, nil
}

func chatError(err error) error {
	switch {
	case errors.Is(err, chat.ErrInvalidTurn):
		return CodedError(http.StatusBadRequest, err)
	case errors.Is(err, chat.ErrUpstream):
		return CodedErrorf(http.StatusBadGateway, chatFailureMessage)
	default:
		return CodedErrorf(http.StatusInternalServerError, chatFailureMessage)
	}
}

func (s *ChatService) Chat(w http.ResponseWriter, r *http.Request) (string, error) {
	turn, err := parseTurn(w, r)
	if err != nil {
		return "", err
	}

	answer, err := s.pipeline.HandleTurn(r.Context(), turn)
	if err != nil {
		return "", chatError(err)
	}

	return answer, nil
}

func (s *ChatService) StreamChat(w http.ResponseWriter, r *http.Request) (StreamResponse, error) {
	turn, err := parseTurn(w, r)
	if err != nil {
		return nil, err
	}

	chunks, err := s.pipeline.StreamTurn(r.Context(), turn)
	if err != nil {
		return nil, chatError(err)
	}

	// A failure before the first fragment can still be reported with a status.
	first, ok := <-chunks
	if ok && first.Err != nil {
		go drainChunks(chunks)
		return nil, chatError(first.Err)
	}

	return func(yield func(string, error) bool) {
		if !ok {
			return
		}
		if !yield(first.Text, nil) {
			go drainChunks(chunks)
			return
		}
		for chunk := range chunks {
			if !yield(chunk.Text, chunk.Err) || chunk.Err != nil {
				go drainChunks(chunks)
				return
			}
		}
	}, nil
}

func drainChunks(chunks <-chan llm.Chunk) {
	for range chunks {
	}
}
