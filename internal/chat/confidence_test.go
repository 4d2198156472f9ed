package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"frontdesk-backend/pkg/models"
)

func TestMapConfidence(t *testing.T) {
	tests := []struct {
		score       float64
		needsReview bool
		level       models.ConfidenceLevel
		status      string
	}{
		{1.0, false, models.ConfidenceGreen, models.StatusResolved},
		{0.7, false, models.ConfidenceGreen, models.StatusResolved},
		{0.699, false, models.ConfidenceYellow, models.StatusPendingReview},
		{0.4, false, models.ConfidenceYellow, models.StatusPendingReview},
		{0.399, false, models.ConfidenceRed, models.StatusNeedsAttention},
		{0.0, false, models.ConfidenceRed, models.StatusNeedsAttention},
		{0.95, true, models.ConfidenceRed, models.StatusNeedsReview},
		{0.1, true, models.ConfidenceRed, models.StatusNeedsReview},
	}

	for _, tt := range tests {
		level, status := MapConfidence(tt.score, tt.needsReview)
		assert.Equal(t, tt.level, level, "score=%v review=%v", tt.score, tt.needsReview)
		assert.Equal(t, tt.status, status, "score=%v review=%v", tt.score, tt.needsReview)
	}
}
