package ai

import "fmt"

// Message is one chat message in provider wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider generates a reply for a conversation.
type Provider interface {
	Generate(messages []Message) (string, error)
}

// NewProvider returns the provider selected by name.
func NewProvider(name string) (Provider, error) {
	switch name {
	case "pollinations", "":
		return NewPollinationsProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", name)
	}
}
