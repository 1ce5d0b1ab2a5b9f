package model

import "time"

// Message is a chat message posted inside a session
type Message struct {
	ID          string      `json:"id" bson:"_id,omitempty"`
	SessionID   string      `json:"sessionId" bson:"sessionId"`
	Kind        SessionKind `json:"kind" bson:"kind"`
	Text        string      `json:"text" bson:"text"`
	UserID      string      `json:"userId" bson:"userId"`
	DisplayName string      `json:"displayName" bson:"displayName"`
	PhotoURL    string      `json:"photoURL" bson:"photoURL"`
	Timestamp   time.Time   `json:"timestamp" bson:"timestamp"`
}

// AssistantParticipant authors messages produced by the recommendation service
var AssistantParticipant = Participant{
	UID:         "hornet-ai",
	DisplayName: "Hornet AI",
}
