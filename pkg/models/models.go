package models

import (
	"time"
)

type UserType string

const (
	Prospective UserType = "PROSPECTIVE"
	LoggedIn    UserType = "LOGGED_IN"
	Admin       UserType = "ADMIN"
)

func (t UserType) Valid() bool {
	switch t {
	case Prospective, LoggedIn, Admin:
		return true
	}
	return false
}

type ConfidenceLevel string

const (
	ConfidenceGreen  ConfidenceLevel = "green"
	ConfidenceYellow ConfidenceLevel = "yellow"
	ConfidenceRed    ConfidenceLevel = "red"
)

const (
	StatusResolved       = "Resolved"
	StatusPendingReview  = "Pending Review"
	StatusNeedsAttention = "Needs Attention"
	StatusNeedsReview    = "Needs Review"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	DefaultParentName = "Guest Parent"
	DefaultChildName  = "N/A"
)

// ChildData is the mocked child-status record shown to a verified parent.
type ChildData struct {
	ID          string `json:"id,omitempty" yaml:"id"`
	ParentName  string `json:"parentName" yaml:"parentName"`
	ParentPhone string `json:"parentPhone,omitempty" yaml:"parentPhone"`
	ChildName   string `json:"childName" yaml:"childName"`
	Classroom   string `json:"classroom" yaml:"classroom"`
	Teacher     string `json:"teacher" yaml:"teacher"`
	Status      string `json:"status" yaml:"status"`
	LastMeal    string `json:"lastMeal" yaml:"lastMeal"`
	Mood        string `json:"mood" yaml:"mood"`
	Attendance  string `json:"attendance,omitempty" yaml:"attendance"`
}

// ChatMessage is one turn of the history sent by the chat client.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message is a stored transcript entry. Timestamp is a display string only.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type Inquiry struct {
	ID               string          `json:"id"`
	Parent           string          `json:"parent"`
	Child            string          `json:"child"`
	Topic            string          `json:"topic"`
	Transcript       []Message       `json:"transcript"`
	Confidence       ConfidenceLevel `json:"confidence"`
	ConfidenceScore  float64         `json:"confidenceScore"`
	NeedsHumanReview bool            `json:"needsHumanReview"`
	ReviewReason     *string         `json:"reviewReason,omitempty"`
	Status           string          `json:"status"`
	UserType         UserType        `json:"userType,omitempty"`
	Timestamp        time.Time       `json:"timestamp"`
	LastUpdated      time.Time       `json:"lastUpdated"`
}

// DisplayTime formats t the way transcript timestamps are shown in the dashboard.
func DisplayTime(t time.Time) string {
	return t.Format("3:04 PM")
}
