package integrationtests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontdesk-backend/internal/database"
	"frontdesk-backend/internal/storage"
	"frontdesk-backend/pkg/models"
)

var baseTime = time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)

func inquiry(id string, touched int) models.Inquiry {
	return models.Inquiry{
		ID:     id,
		Parent: models.DefaultParentName,
		Child:  models.DefaultChildName,
		Topic:  "Tuition",
		Transcript: []models.Message{
			{Role: models.RoleUser, Content: "How much is tuition?", Timestamp: "9:00 AM"},
			{Role: models.RoleAssistant, Content: "Please contact the office.", Timestamp: "9:00 AM"},
		},
		Confidence:      models.ConfidenceYellow,
		ConfidenceScore: 0.5,
		Status:          models.StatusPendingReview,
		UserType:        models.Prospective,
		Timestamp:       baseTime,
		LastUpdated:     baseTime.Add(time.Duration(touched) * time.Second),
	}
}

func testTranscriptStore(t *testing.T, store storage.TranscriptStore) {
	ctx := context.Background()

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	for i := 0; i <= storage.DefaultTranscriptCapacity; i++ {
		require.NoError(t, store.Upsert(ctx, inquiry(fmt.Sprintf("s%02d", i), i)))
	}

	list, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, storage.DefaultTranscriptCapacity)
	assert.Equal(t, "s50", list[0].ID)
	assert.Equal(t, "s01", list[len(list)-1].ID)

	_, found, err := store.Get(ctx, "s00")
	require.NoError(t, err)
	assert.False(t, found)

	updated := inquiry("s01", 100)
	updated.Confidence = models.ConfidenceRed
	updated.NeedsHumanReview = true
	require.NoError(t, store.Upsert(ctx, updated))

	got, found, err := store.Get(ctx, "s01")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.ConfidenceRed, got.Confidence)
	assert.True(t, got.NeedsHumanReview)
	assert.Equal(t, updated.Transcript, got.Transcript)

	list, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, storage.DefaultTranscriptCapacity)
	assert.Equal(t, "s01", list[0].ID)
}

func TestPostgresTranscriptStore(t *testing.T) {
	ctx := context.Background()
	uri := setupPostgresContainer(t, ctx)

	db, err := database.NewDatabase(uri)
	require.NoError(t, err)

	store := storage.NewDatabaseTranscriptStore(db, storage.DefaultTranscriptCapacity)
	t.Cleanup(func() { _ = store.Close() })

	testTranscriptStore(t, store)
}

func TestRedisTranscriptStore(t *testing.T) {
	ctx := context.Background()
	uri := setupRedisContainer(t, ctx)

	client, err := storage.NewRedisClient(uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	testTranscriptStore(t, storage.NewRedisTranscriptStore(client, "", storage.DefaultTranscriptCapacity))
}

func testKnowledgeStore(t *testing.T, store storage.KnowledgeStore) {
	ctx := context.Background()

	content, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, content)

	require.NoError(t, store.Save(ctx, "# Little Sprouts\nHours: 7am-6pm"))
	content, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "# Little Sprouts\nHours: 7am-6pm", content)

	require.NoError(t, store.Save(ctx, "Closed Friday."))
	content, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Closed Friday.", content)
}

func TestRedisKnowledgeStore(t *testing.T) {
	ctx := context.Background()
	uri := setupRedisContainer(t, ctx)

	client, err := storage.NewRedisClient(uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	testKnowledgeStore(t, storage.NewRedisKnowledgeStore(client, ""))
}

func TestS3KnowledgeStore(t *testing.T) {
	ctx := context.Background()
	endpoint := setupMinioContainer(t, ctx)

	cfg := storage.S3ClientConfig{
		Endpoint:        endpoint,
		Region:          "us-east-1",
		AccessKeyID:     minioUsername,
		SecretAccessKey: minioPassword,
	}

	store, err := storage.NewS3KnowledgeStore(ctx, cfg, "frontdesk-test", "")
	require.NoError(t, err)
	testKnowledgeStore(t, store)

	// Opening the same bucket again must not fail on the existing bucket.
	again, err := storage.NewS3KnowledgeStore(ctx, cfg, "frontdesk-test", "")
	require.NoError(t, err)
	content, err := again.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Closed Friday.", content)
}
