package types

// ChatMessage is one entry in a project's assistant chat history. The
// pipeline stores and round-trips the history; it does not interpret it.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	SentAt  string `json:"sent_at,omitempty"`
}
