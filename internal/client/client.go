package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"frontdesk-backend/pkg/api"
	"frontdesk-backend/pkg/models"
)

const defaultTimeout = 60 * time.Second

// Client talks to the front desk API on behalf of the admin CLI.
type Client struct {
	client *resty.Client
}

func New(baseURL, user, password string) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout)
	if password != "" {
		client.SetBasicAuth(user, password)
	}
	return &Client{client: client}
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

func checkResponse(res *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	if res.IsSuccess() {
		return nil
	}

	message := res.String()
	var body api.ErrorResponse
	if json.Unmarshal(res.Body(), &body) == nil && body.Error != "" {
		message = body.Error
	}
	return &APIError{StatusCode: res.StatusCode(), Message: message}
}

func (c *Client) ListInquiries(ctx context.Context, filter api.InquiryFilter) ([]models.Inquiry, error) {
	req := c.client.R().SetContext(ctx)
	if filter.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Confidence != "" {
		req.SetQueryParam("confidence", filter.Confidence)
	}
	if filter.Escalated != nil {
		req.SetQueryParam("escalated", strconv.FormatBool(*filter.Escalated))
	}

	var inquiries []models.Inquiry
	if err := checkResponse(req.SetResult(&inquiries).Get("/api/v1/admin/inquiries")); err != nil {
		return nil, err
	}
	return inquiries, nil
}

func (c *Client) GetInquiry(ctx context.Context, id string) (models.Inquiry, error) {
	var inquiry models.Inquiry
	res, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&inquiry).
		Get("/api/v1/admin/inquiries/{id}")
	if err := checkResponse(res, err); err != nil {
		return models.Inquiry{}, err
	}
	return inquiry, nil
}

func (c *Client) GetKnowledge(ctx context.Context) (string, error) {
	var knowledge api.KnowledgeResponse
	res, err := c.client.R().
		SetContext(ctx).
		SetResult(&knowledge).
		Get("/api/v1/admin/knowledge")
	if err := checkResponse(res, err); err != nil {
		return "", err
	}
	return knowledge.Content, nil
}

func (c *Client) SetKnowledge(ctx context.Context, content string) error {
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"content": content}).
		Post("/api/v1/admin/knowledge")
	return checkResponse(res, err)
}

func (c *Client) UploadKnowledge(ctx context.Context, filename string, data io.Reader, mode string) (api.SuccessResponse, error) {
	var result api.SuccessResponse
	req := c.client.R().
		SetContext(ctx).
		SetFileReader("file", filename, data).
		SetResult(&result)
	if mode != "" {
		req.SetQueryParam("mode", mode)
	}

	if err := checkResponse(req.Post("/api/v1/admin/knowledge/upload")); err != nil {
		return api.SuccessResponse{}, err
	}
	return result, nil
}

func (c *Client) Alerts(ctx context.Context) ([]api.Alert, error) {
	var alerts []api.Alert
	res, err := c.client.R().
		SetContext(ctx).
		SetResult(&alerts).
		Get("/api/v1/admin/alerts")
	if err := checkResponse(res, err); err != nil {
		return nil, err
	}
	return alerts, nil
}

// Chat sends one turn and returns the answer with the session id the server
// used, which is new when req.SessionID was empty.
func (c *Client) Chat(ctx context.Context, req api.ChatRequest) (string, string, error) {
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/api/v1/chat")
	if err := checkResponse(res, err); err != nil {
		return "", "", err
	}
	return res.String(), res.Header().Get("X-Session-Id"), nil
}

func (c *Client) Verify(ctx context.Context, phone, code string) (api.VerifyResponse, error) {
	var result api.VerifyResponse
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(api.VerifyRequest{Phone: phone, Code: code}).
		SetResult(&result).
		Post("/api/v1/auth/verify")
	if err := checkResponse(res, err); err != nil {
		return api.VerifyResponse{}, err
	}
	return result, nil
}
