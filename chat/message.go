// Package chat provides the chat client used by the studio: a fluent request
// builder around a Model, default request settings, and advisors that wrap
// each call (conversation memory being the main one).
package chat

// Role identifies the author of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn in a prompt.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemMessage, UserMessage and AssistantMessage are shorthands for building prompts.
func SystemMessage(content string) Message { return Message{Role: RoleSystem, Content: content} }

func UserMessage(content string) Message { return Message{Role: RoleUser, Content: content} }

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
