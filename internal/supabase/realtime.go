package supabase

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
)

// RealtimeClient notifies listening clients about submission outcomes so
// inspection lists refresh without polling. Supabase Realtime picks changes
// up from the row writes themselves; explicit publishing is a placeholder
// for channels that need more than the row image.
type RealtimeClient struct {
	client *supabase.Client
}

func NewRealtimeClient(client *supabase.Client) *RealtimeClient {
	return &RealtimeClient{
		client: client,
	}
}

func (r *RealtimeClient) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	// Row writes trigger Realtime automatically; nothing extra to send yet.
	return nil
}

func (r *RealtimeClient) PublishInspectionEvent(inspectionID uuid.UUID, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("inspection:%s", inspectionID.String())
	return r.PublishEvent(channel, event, payload)
}
