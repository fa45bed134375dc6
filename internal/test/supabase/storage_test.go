package supabase_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fims-backend/internal/supabase"
)

func TestStorageClient_GetPublicURL(t *testing.T) {
	client, err := supabase.NewStorageClient("https://example.supabase.co", "service-key", "inspection-photos")
	require.NoError(t, err)

	url := client.GetPublicURL("BHET/" + uuid.Nil.String() + "/1234_0.jpg")
	assert.Equal(t,
		"https://example.supabase.co/storage/v1/object/public/inspection-photos/BHET/"+uuid.Nil.String()+"/1234_0.jpg",
		url)
}

func TestStorageClient_TrailingSlashNormalized(t *testing.T) {
	client, err := supabase.NewStorageClient("https://example.supabase.co/", "service-key", "inspection-photos")
	require.NoError(t, err)

	url := client.GetPublicURL("GP/abc/1_0.png")
	assert.Equal(t, "https://example.supabase.co/storage/v1/object/public/inspection-photos/GP/abc/1_0.png", url)
}
