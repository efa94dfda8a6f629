// Package chatbot answers visitor questions, first from a small keyword
// intent table and otherwise by proxying to the OpenAI chat API.
package chatbot

import (
	"context"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"vendhansite/constants"
)

const OfflineMessage = "Sorry, the AI Assistant is currently offline."

const systemPrompt = `You are the website assistant for ` + constants.APP_NAME + `, an IT services company.
Answer briefly and helpfully. The company offers AI & machine learning, digital
transformation, software development, and cybersecurity services. For job
applications or detailed inquiries, point visitors to the Careers and Contact pages.`

// Bot holds the OpenAI client; client may be nil when no API key is
// configured, in which case only the intent table answers.
type Bot struct {
	client *openai.Client
	model  string
}

func New(apiKey string) *Bot {
	b := &Bot{model: openai.GPT4oMini}
	if apiKey != "" {
		b.client = openai.NewClient(apiKey)
	}
	return b
}

// intents maps keywords in the visitor's message to canned answers. Checked
// before any API call so common questions cost nothing.
var intents = []struct {
	keywords []string
	answer   string
}{
	{
		keywords: []string{"service", "offer", "what do you do"},
		answer:   "We offer AI & machine learning, digital transformation, software development, and cybersecurity services. See the Services page for details.",
	},
	{
		keywords: []string{"career", "job", "hiring", "apply", "position", "vacancy"},
		answer:   "We're always looking for talent! Check the Careers page for open positions and use the application form to apply.",
	},
	{
		keywords: []string{"contact", "email", "phone", "reach"},
		answer:   "You can reach us through the Contact page. Fill in the form and our team will get back to you.",
	},
	{
		keywords: []string{"hour", "open", "timing"},
		answer:   "Our office hours are Monday to Friday, 9:00 to 18:00.",
	},
	{
		keywords: []string{"where", "location", "address", "office"},
		answer:   "Our office details are listed on the Contact page.",
	},
}

// Reply answers a visitor message. It never returns an error to the caller:
// any upstream failure degrades to the canned offline message.
func (b *Bot) Reply(ctx context.Context, message string) string {
	if strings.TrimSpace(message) == "" {
		return "I need a message to respond to!"
	}

	lower := strings.ToLower(message)
	for _, intent := range intents {
		for _, kw := range intent.keywords {
			if strings.Contains(lower, kw) {
				return intent.answer
			}
		}
	}

	if b.client == nil {
		return OfflineMessage
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil {
		log.Printf("chatbot: completion failed: %v", err)
		return OfflineMessage
	}
	if len(resp.Choices) == 0 {
		return OfflineMessage
	}

	return resp.Choices[0].Message.Content
}
