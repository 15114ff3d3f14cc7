package domain

// Message roles understood by completion services.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the narrow request shape sent to a CompletionService.
type CompletionRequest struct {
	SystemInstruction string    `json:"system_instruction"`
	Messages          []Message `json:"messages"`
}

// CompletionResponse carries the generated text.
type CompletionResponse struct {
	Text string `json:"text"`
}

// UserRequest is a convenience for the common single-turn request.
func UserRequest(instruction, content string) CompletionRequest {
	return CompletionRequest{
		SystemInstruction: instruction,
		Messages:          []Message{{Role: RoleUser, Content: content}},
	}
}
