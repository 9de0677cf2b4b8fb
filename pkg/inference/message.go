package inference

// Role identifies who authored a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat exchange.
type Message struct {
	Role    Role
	Content string
}

// NewSystemMessage builds a system-instruction message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage builds a user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage builds an assistant reply message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// systemText joins the content of all system messages, for providers
// that carry system instructions outside the message list.
func systemText(msgs []Message) string {
	var system string
	for _, msg := range msgs {
		if msg.Role != RoleSystem {
			continue
		}
		if system != "" {
			system += "\n\n"
		}
		system += msg.Content
	}
	return system
}
