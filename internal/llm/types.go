package llm

// Message is a single chat message sent to or received from the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatParams holds parameters for chat completion requests.
type ChatParams struct {
	// Model overrides the client's model when non-empty.
	Model string

	// MaxTokens limits the generated tokens. 0 means no limit.
	MaxTokens int

	// Temperature is omitted from the request when 0.
	Temperature float32
}
