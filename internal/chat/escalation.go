package chat

import (
	"regexp"
)

const EscalationReply = "Absolutely, I'll connect you with a member of our team. 💛 I've flagged this conversation for our Director, Sarah, and someone from the front desk will reach out to you shortly. If it's urgent, you can also call us directly at (555) 010-0000."

var defaultEscalationPatterns = []string{
	`\b(talk|speak|chat)\s+(to|with)\s+(a\s+|an\s+|the\s+|some\s+)?(real\s+|actual\s+|live\s+)?(person|human|someone|somebody|staff|teacher|director|people)\b`,
	`\b(get|give|find)\s+me\s+(a\s+|an\s+)?(real\s+|actual\s+|live\s+)?(human|person|someone)\b`,
	`\breal\s+(person|human)\b`,
	`\bhuman\s+(agent|being|representative|support)\b`,
	`\b(not|no)\s+(a\s+)?(bot|robot|machine|ai)\b`,
	`\bstop\s+(the\s+)?(ai|bot|robot)\b`,
	`\b(representative|operator)\b`,
}

// EscalationDetector flags messages asking for a human instead of the assistant.
type EscalationDetector struct {
	patterns []*regexp.Regexp
}

func NewEscalationDetector(patterns []string) (*EscalationDetector, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return &EscalationDetector{patterns: compiled}, nil
}

func DefaultEscalationDetector() *EscalationDetector {
	detector, err := NewEscalationDetector(defaultEscalationPatterns)
	if err != nil {
		panic(err)
	}
	return detector
}

func (d *EscalationDetector) IsEscalation(text string) bool {
	for _, re := range d.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
