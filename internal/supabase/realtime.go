package supabase

import (
	"fmt"

	"github.com/supabase-community/supabase-go"
)

// RealtimeClient publishes order and chat events toward Supabase Realtime
// so browser clients can keep their badges live.
type RealtimeClient struct {
	client *supabase.Client
}

func NewRealtimeClient(client *supabase.Client) *RealtimeClient {
	return &RealtimeClient{
		client: client,
	}
}

func (r *RealtimeClient) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	// The Go client has no direct Realtime publish; the documents table is
	// under Realtime replication, so writes already reach subscribed
	// clients. This hook stays for explicit events via the REST API later.
	return nil
}

func (r *RealtimeClient) PublishOrderEvent(orderID string, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("order:%s", orderID)
	return r.PublishEvent(channel, event, payload)
}

func (r *RealtimeClient) PublishChatEvent(chatKey string, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("chat:%s", chatKey)
	return r.PublishEvent(channel, event, payload)
}

// Event payloads
func OrderStartedPayload(orderID string, orderNumber int) map[string]interface{} {
	return map[string]interface{}{
		"order_id":     orderID,
		"order_number": orderNumber,
		"status":       "remaining",
	}
}

func OrderCompletedPayload(orderID string, orderNumber int) map[string]interface{} {
	return map[string]interface{}{
		"order_id":     orderID,
		"order_number": orderNumber,
		"status":       "completed",
	}
}

func SubmissionAppendedPayload(orderID string, fileCount int) map[string]interface{} {
	return map[string]interface{}{
		"order_id":   orderID,
		"file_count": fileCount,
	}
}

func RevisionAppendedPayload(orderID string, revisionCount int) map[string]interface{} {
	return map[string]interface{}{
		"order_id":       orderID,
		"revision_count": revisionCount,
	}
}

func MessageSentPayload(chatKey, messageID string) map[string]interface{} {
	return map[string]interface{}{
		"chat_key":   chatKey,
		"message_id": messageID,
	}
}
