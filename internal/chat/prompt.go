package chat

import (
	"fmt"
	"strings"

	"frontdesk-backend/pkg/models"
)

const missingKnowledge = "Knowledge base not available."

const basePromptTemplate = `You are the "Little Sprouts Front Desk Assistant." Your tone is warm, empathetic, and professional, like a seasoned preschool director who truly loves kids.

## KNOWLEDGE BASE (Use this for accurate information):
%s

## CORE BEHAVIOR:
1. Be conversational and warm. Use emojis sparingly but naturally.
2. Keep responses concise (2-3 short paragraphs max).
3. Always offer helpful follow-up suggestions.
4. If you don't know something, say "I want to make sure I give you the right answer. I've flagged this for our Director, Sarah."
`

const loggedInTemplate = `
## PARENT CONTEXT:
- Parent's first name: %[1]s
- Child's name: %[2]s
- Teacher: %[3]s
- Classroom: %[4]s
- Current activity: %[5]s
- Mood: %[6]s
- Last meal: %[7]s

## LOGGED-IN PARENT INSTRUCTIONS:
- Address the parent by their first name (%[1]s).
- You can reference %[2]s's current status, mood and last meal when relevant.
- Be warm and personal, you know this family!
- When discussing sick policy, offer to notify %[3]s.
- When discussing lunch, you can offer to charge their account.
`

const adminInstructions = `
## ADMIN INSTRUCTIONS:
- You are speaking with a staff member or administrator.
- You can discuss operational details and internal processes.
- Be helpful and professional.
`

const prospectiveInstructions = `
## PROSPECTIVE PARENT INSTRUCTIONS:
- This is a prospective family exploring Little Sprouts.
- NEVER share specific information about any enrolled children.
- If asked about a specific child (e.g., "How is Leo?"), politely decline: "I'd love to help, but I can only share information about enrolled children with their verified parents. Are you interested in learning about our enrollment process?"
- Focus on: enrollment, tuition, tours, our mission, and general policies.
- Always suggest booking a tour as a natural next step.
- Be warm and welcoming to encourage enrollment.
`

const outputContract = `
## RESPONSE FORMAT (MANDATORY):
Respond ONLY with a single JSON object and nothing else, no markdown and no commentary:
{
  "answer": "<your reply to the parent>",
  "confidenceScore": <number between 0.0 and 1.0>,
  "reasoning": "<one sentence on why you are this confident>",
  "needsHumanReview": <true or false>,
  "reviewReason": "<why staff should review this, or null>",
  "topicSummary": "<2-5 word summary of the topic>"
}
Set needsHumanReview to true whenever you flag something for the Director, and for medical, safety, custody or billing disputes.
`

// BuildSystemPrompt renders the system prompt for one turn. The knowledge
// text is embedded verbatim.
func BuildSystemPrompt(userType models.UserType, child *models.ChildData, knowledge string) string {
	return buildPrompt(userType, child, knowledge) + outputContract
}

// BuildStreamingPrompt is BuildSystemPrompt without the JSON output contract,
// for replies relayed to the parent as plain text.
func BuildStreamingPrompt(userType models.UserType, child *models.ChildData, knowledge string) string {
	return buildPrompt(userType, child, knowledge)
}

func buildPrompt(userType models.UserType, child *models.ChildData, knowledge string) string {
	if strings.TrimSpace(knowledge) == "" {
		knowledge = missingKnowledge
	}

	var b strings.Builder
	fmt.Fprintf(&b, basePromptTemplate, knowledge)

	switch {
	case userType == models.LoggedIn && child != nil:
		fmt.Fprintf(&b, loggedInTemplate,
			firstName(child.ParentName),
			child.ChildName,
			child.Teacher,
			child.Classroom,
			child.Status,
			child.Mood,
			child.LastMeal,
		)
	case userType == models.Admin:
		b.WriteString(adminInstructions)
	default:
		b.WriteString(prospectiveInstructions)
	}

	return b.String()
}

func firstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

// VerdictSchema is the JSON schema of the reply requested by the output
// contract, used for structured-output requests.
var VerdictSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"answer":           map[string]interface{}{"type": "string"},
		"confidenceScore":  map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
		"reasoning":        map[string]interface{}{"type": "string"},
		"needsHumanReview": map[string]interface{}{"type": "boolean"},
		"reviewReason":     map[string]interface{}{"type": []string{"string", "null"}},
		"topicSummary":     map[string]interface{}{"type": "string"},
	},
	"required":             []string{"answer", "confidenceScore", "reasoning", "needsHumanReview", "reviewReason", "topicSummary"},
	"additionalProperties": false,
}
