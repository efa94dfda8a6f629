package chatbot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplyEmptyMessage(t *testing.T) {
	b := New("")
	assert.Equal(t, "I need a message to respond to!", b.Reply(context.Background(), "   "))
}

func TestReplyKeywordIntents(t *testing.T) {
	b := New("")

	reply := b.Reply(context.Background(), "What services do you offer?")
	assert.Contains(t, reply, "cybersecurity")

	reply = b.Reply(context.Background(), "Are you hiring right now?")
	assert.Contains(t, reply, "Careers")

	reply = b.Reply(context.Background(), "How can I reach your team?")
	assert.Contains(t, reply, "Contact")
}

func TestReplyOfflineWithoutAPIKey(t *testing.T) {
	b := New("")
	// no intent keyword matches and no client is configured
	assert.Equal(t, OfflineMessage, b.Reply(context.Background(), "tell me a story about mountains"))
}
