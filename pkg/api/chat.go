package api

import "frontdesk-backend/pkg/models"

type ChatRequest struct {
	SessionID string               `json:"sessionId"`
	Messages  []models.ChatMessage `json:"messages"`
	UserType  models.UserType      `json:"userType"`
	ChildData *models.ChildData    `json:"childData,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type VerifyRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type VerifyResponse struct {
	UserType  models.UserType   `json:"userType"`
	ChildData *models.ChildData `json:"childData,omitempty"`
	Greeting  string            `json:"greeting"`
}
