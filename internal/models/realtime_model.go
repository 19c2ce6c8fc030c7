package models

// PetLocation is the last GPS fix of a pet, stored in the Realtime Database.
type PetLocation struct {
	PetID     string  `json:"petId"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"` // epoch milliseconds
}

// ChatMessage is a single message in a Realtime Database chat thread.
type ChatMessage struct {
	ID        string `json:"id,omitempty"`
	SenderID  string `json:"senderId"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
}

// ChatTurn is one entry of an assistant conversation history.
type ChatTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}
