package chat

import "frontdesk-backend/pkg/models"

const (
	greenThreshold  = 0.7
	yellowThreshold = 0.4
)

// MapConfidence turns a verdict score and review flag into a traffic-light
// level and the dashboard status label. A review request is always red.
func MapConfidence(score float64, needsHumanReview bool) (models.ConfidenceLevel, string) {
	switch {
	case needsHumanReview:
		return models.ConfidenceRed, models.StatusNeedsReview
	case score >= greenThreshold:
		return models.ConfidenceGreen, models.StatusResolved
	case score >= yellowThreshold:
		return models.ConfidenceYellow, models.StatusPendingReview
	default:
		return models.ConfidenceRed, models.StatusNeedsAttention
	}
}
