package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	backend "frontdesk-backend/internal/api"
	"frontdesk-backend/internal/chat"
	"frontdesk-backend/internal/directory"
	"frontdesk-backend/internal/llm"
	"frontdesk-backend/internal/messaging"
	"frontdesk-backend/internal/storage"
	"frontdesk-backend/pkg/api"
	"frontdesk-backend/pkg/models"
)

type mockLLM struct {
	reply  string
	chunks []llm.Chunk
	err    error
}

func (m *mockLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	return m.reply, m.err
}

func (m *mockLLM) Stream(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(chan llm.Chunk, len(m.chunks))
	for _, c := range m.chunks {
		out <- c
	}
	close(out)
	return out, nil
}

type failingTranscripts struct {
	storage.TranscriptStore
}

func (f *failingTranscripts) List(ctx context.Context) ([]models.Inquiry, error) {
	return nil, errors.New("disk on fire")
}

type testEnv struct {
	router      chi.Router
	transcripts *storage.MemoryTranscriptStore
	knowledge   *storage.MemoryKnowledgeStore
	queue       *messaging.InMemoryQueue
	feed        *messaging.AlertFeed
}

func newTestEnv(t *testing.T, client llm.Client) *testEnv {
	env := &testEnv{
		transcripts: storage.NewMemoryTranscriptStore(storage.DefaultTranscriptCapacity),
		knowledge:   storage.NewMemoryKnowledgeStore("Hours: 7am-6pm"),
		queue:       messaging.NewInMemoryQueue(),
		feed:        messaging.NewAlertFeed(messaging.DefaultAlertFeedSize),
	}
	t.Cleanup(env.queue.Close)

	dir, err := directory.Load()
	require.NoError(t, err)

	pipeline := chat.NewPipeline(env.transcripts, env.knowledge, client, nil, env.queue)

	env.router = chi.NewRouter()
	backend.NewChatService(pipeline).AddRoutes(env.router)
	backend.NewAuthService(dir).AddRoutes(env.router)
	env.router.Route("/admin", backend.NewAdminService(env.transcripts, env.knowledge, env.feed).AddRoutes)

	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	var res api.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res.Error
}

func chatRequest(sessionID string, messages ...string) api.ChatRequest {
	req := api.ChatRequest{SessionID: sessionID, UserType: models.Prospective}
	for i, m := range messages {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		req.Messages = append(req.Messages, models.ChatMessage{Role: role, Content: m})
	}
	return req
}

func TestChat(t *testing.T) {
	env := newTestEnv(t, &mockLLM{
		reply: `{"answer":"We open at 7am.","confidenceScore":0.92,"reasoning":"in handbook","needsHumanReview":false,"reviewReason":null,"topicSummary":"Hours"}`,
	})

	rec := env.do(t, http.MethodPost, "/chat", chatRequest("session-1", "When do you open?"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "We open at 7am.", rec.Body.String())
	assert.Equal(t, "session-1", rec.Header().Get(backend.SessionHeader))

	inquiry, found, err := env.transcripts.Get(context.Background(), "session-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.ConfidenceGreen, inquiry.Confidence)
	assert.Equal(t, "Hours", inquiry.Topic)
	assert.Len(t, inquiry.Transcript, 2)
}

func TestChatGeneratesSessionId(t *testing.T) {
	env := newTestEnv(t, &mockLLM{reply: "plain answer"})

	rec := env.do(t, http.MethodPost, "/chat", chatRequest("", "Hello"))
	require.Equal(t, http.StatusOK, rec.Code)

	sessionID := rec.Header().Get(backend.SessionHeader)
	_, err := uuid.Parse(sessionID)
	require.NoError(t, err)

	inquiry, found, err := env.transcripts.Get(context.Background(), sessionID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.ConfidenceYellow, inquiry.Confidence)
}

func TestChatUpstreamFailure(t *testing.T) {
	env := newTestEnv(t, &mockLLM{err: errors.New("connection refused")})

	rec := env.do(t, http.MethodPost, "/chat", chatRequest("session-1", "When do you open?"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Failed to process chat request. Please try again.", decodeError(t, rec))

	list, err := env.transcripts.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestChatBadRequests(t *testing.T) {
	env := newTestEnv(t, &mockLLM{reply: "unused"})

	rec := env.do(t, http.MethodPost, "/chat", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/chat", api.ChatRequest{SessionID: "s"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := chatRequest("s", "hi")
	req.UserType = "TEACHER"
	rec = env.do(t, http.MethodPost, "/chat", req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "invalid userType")

	rec = env.do(t, http.MethodPost, "/chat", chatRequest("s", "hi", "hello!"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatEscalation(t *testing.T) {
	env := newTestEnv(t, &mockLLM{err: errors.New("model must not be called")})

	rec := env.do(t, http.MethodPost, "/chat", chatRequest("session-9", "I want to talk to a real person"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, chat.EscalationReply, rec.Body.String())

	inquiry, found, err := env.transcripts.Get(context.Background(), "session-9")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.ConfidenceRed, inquiry.Confidence)
	assert.True(t, inquiry.NeedsHumanReview)

	worker := messaging.NewAlertWorker(env.queue, env.feed)
	go worker.Start()
	defer worker.Stop()

	assert.Eventually(t, func() bool { return len(env.feed.Latest()) == 1 }, time.Second, 10*time.Millisecond)

	rec = env.do(t, http.MethodGet, "/admin/alerts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var alerts []api.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, "session-9", alerts[0].SessionID)
	assert.Equal(t, "I want to talk to a real person", alerts[0].Message)
}

func TestChatStream(t *testing.T) {
	env := newTestEnv(t, &mockLLM{chunks: []llm.Chunk{{Text: "We open "}, {Text: "at 7am."}}})

	rec := env.do(t, http.MethodPost, "/chat/stream", chatRequest("stream-1", "When do you open?"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "We open at 7am.", rec.Body.String())
	assert.Equal(t, "stream-1", rec.Header().Get(backend.SessionHeader))

	_, found, err := env.transcripts.Get(context.Background(), "stream-1")
	require.NoError(t, err)
	assert.False(t, found)
}

type deadlineLLM struct {
	mockLLM
	deadlines map[string]bool
}

func (d *deadlineLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	_, d.deadlines["complete"] = ctx.Deadline()
	return d.mockLLM.Complete(ctx, req)
}

func (d *deadlineLLM) Stream(ctx context.Context, req llm.Request) (<-chan llm.Chunk, error) {
	_, d.deadlines["stream"] = ctx.Deadline()
	return d.mockLLM.Stream(ctx, req)
}

func TestRequestTimeoutSkipsStreaming(t *testing.T) {
	client := &deadlineLLM{
		mockLLM: mockLLM{
			reply:  `{"answer":"Hi!","confidenceScore":0.9,"reasoning":"r","needsHumanReview":false,"reviewReason":null,"topicSummary":"Greeting"}`,
			chunks: []llm.Chunk{{Text: "Hi!"}},
		},
		deadlines: map[string]bool{},
	}
	env := newTestEnv(t, client)

	rec := env.do(t, http.MethodPost, "/chat", chatRequest("timeout-1", "Hello"))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, "/chat/stream", chatRequest("timeout-2", "Hello"))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, client.deadlines["complete"])
	assert.False(t, client.deadlines["stream"])
}

func TestChatStreamFailures(t *testing.T) {
	env := newTestEnv(t, &mockLLM{err: errors.New("boom")})
	rec := env.do(t, http.MethodPost, "/chat/stream", chatRequest("s", "hi"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	env = newTestEnv(t, &mockLLM{chunks: []llm.Chunk{{Err: errors.New("reset by peer")}}})
	rec = env.do(t, http.MethodPost, "/chat/stream", chatRequest("s", "hi"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Failed to process chat request. Please try again.", decodeError(t, rec))

	env = newTestEnv(t, &mockLLM{chunks: []llm.Chunk{{Text: "partial "}, {Err: errors.New("reset by peer")}, {Text: "never sent"}}})
	rec = env.do(t, http.MethodPost, "/chat/stream", chatRequest("s", "hi"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "partial ", rec.Body.String())
}

func TestVerify(t *testing.T) {
	env := newTestEnv(t, &mockLLM{})

	rec := env.do(t, http.MethodPost, "/auth/verify", api.VerifyRequest{Phone: "555-0101", Code: "1234"})
	require.Equal(t, http.StatusOK, rec.Code)
	var res api.VerifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, models.LoggedIn, res.UserType)
	require.NotNil(t, res.ChildData)
	assert.Equal(t, "James", res.ChildData.ChildName)
	assert.NotEmpty(t, res.Greeting)

	rec = env.do(t, http.MethodPost, "/auth/verify", api.VerifyRequest{Phone: "555-1234", Code: "9999"})
	require.Equal(t, http.StatusOK, rec.Code)
	res = api.VerifyResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, models.Prospective, res.UserType)
	assert.Nil(t, res.ChildData)

	rec = env.do(t, http.MethodPost, "/auth/verify", api.VerifyRequest{Phone: "555-0101", Code: "12"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/verify", api.VerifyRequest{Phone: "555", Code: "1234"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKnowledge(t *testing.T) {
	env := newTestEnv(t, &mockLLM{})

	rec := env.do(t, http.MethodGet, "/admin/knowledge", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var knowledge api.KnowledgeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &knowledge))
	assert.Equal(t, "Hours: 7am-6pm", knowledge.Content)

	rec = env.do(t, http.MethodPost, "/admin/knowledge", map[string]any{"content": "Hours: 8am-5pm"})
	require.Equal(t, http.StatusOK, rec.Code)
	var success api.SuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &success))
	assert.Equal(t, api.SuccessResponse{Success: true, Message: "Knowledge base updated"}, success)

	content, err := env.knowledge.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hours: 8am-5pm", content)

	for _, body := range []any{
		map[string]any{"content": 42},
		map[string]any{"content": nil},
		map[string]any{"other": "x"},
		map[string]any{"content": []string{"a"}},
	} {
		rec = env.do(t, http.MethodPost, "/admin/knowledge", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid content", decodeError(t, rec))
	}

	content, err = env.knowledge.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hours: 8am-5pm", content)
}

func uploadRequest(t *testing.T, path, filename, content string) *http.Request {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestKnowledgeUpload(t *testing.T) {
	env := newTestEnv(t, &mockLLM{})

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, uploadRequest(t, "/admin/knowledge/upload?mode=append", "sick.md", "Stay home 24 hours after a fever."))
	require.Equal(t, http.StatusOK, rec.Code)

	content, err := env.knowledge.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hours: 7am-6pm\n\nStay home 24 hours after a fever.", content)

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, uploadRequest(t, "/admin/knowledge/upload", "handbook.txt", "Everything new."))
	require.Equal(t, http.StatusOK, rec.Code)

	content, err = env.knowledge.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Everything new.", content)

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, uploadRequest(t, "/admin/knowledge/upload?mode=merge", "a.txt", "x"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, uploadRequest(t, "/admin/knowledge/upload", "a.xlsx", "x"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListInquiries(t *testing.T) {
	env := newTestEnv(t, &mockLLM{})
	ctx := context.Background()
	base := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)

	seed := []models.Inquiry{
		{ID: "a", Confidence: models.ConfidenceGreen, Status: models.StatusResolved, LastUpdated: base},
		{ID: "b", Confidence: models.ConfidenceRed, Status: models.StatusNeedsReview, NeedsHumanReview: true, LastUpdated: base.Add(time.Minute)},
		{ID: "c", Confidence: models.ConfidenceYellow, Status: models.StatusPendingReview, LastUpdated: base.Add(2 * time.Minute)},
		{ID: "d", Confidence: models.ConfidenceRed, Status: models.StatusNeedsAttention, LastUpdated: base.Add(3 * time.Minute)},
	}
	for _, inquiry := range seed {
		require.NoError(t, env.transcripts.Upsert(ctx, inquiry))
	}

	list := func(query string) []string {
		rec := env.do(t, http.MethodGet, "/admin/inquiries"+query, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var inquiries []models.Inquiry
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inquiries))
		ids := make([]string, 0, len(inquiries))
		for _, inq := range inquiries {
			ids = append(ids, inq.ID)
		}
		return ids
	}

	assert.Equal(t, []string{"d", "c", "b", "a"}, list(""))
	assert.Equal(t, []string{"d", "c"}, list("?limit=2"))
	assert.Equal(t, []string{"d", "b"}, list("?confidence=red"))
	assert.Equal(t, []string{"b"}, list("?escalated=true"))
	assert.Equal(t, []string{"d"}, list("?confidence=red&escalated=false"))
	assert.Equal(t, []string{}, list("?confidence=green&escalated=true"))

	rec := env.do(t, http.MethodGet, "/admin/inquiries?confidence=purple", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/admin/inquiries?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListInquiriesEmpty(t *testing.T) {
	env := newTestEnv(t, &mockLLM{})

	rec := env.do(t, http.MethodGet, "/admin/inquiries", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	router := chi.NewRouter()
	router.Route("/admin", backend.NewAdminService(&failingTranscripts{}, env.knowledge, env.feed).AddRoutes)
	req := httptest.NewRequest(http.MethodGet, "/admin/inquiries", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetInquiry(t *testing.T) {
	env := newTestEnv(t, &mockLLM{})
	require.NoError(t, env.transcripts.Upsert(context.Background(), models.Inquiry{ID: "known", Topic: "Tuition"}))

	rec := env.do(t, http.MethodGet, "/admin/inquiries/known", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var inquiry models.Inquiry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inquiry))
	assert.Equal(t, "Tuition", inquiry.Topic)

	rec = env.do(t, http.MethodGet, "/admin/inquiries/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
