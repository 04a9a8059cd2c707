// Package events fans record changes out to websocket subscribers.
package events

import "strings"

const (
	UserCreated     = "user_created"
	UserUpdated     = "user_updated"
	UserDeleted     = "user_deleted"
	QuizCreated     = "quiz_created"
	QuestionCreated = "question_created"
)

// Message is the wire form of every event sent to subscribers.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Topic is the resource an event type belongs to: "user", "quiz" or
// "question".
func Topic(eventType string) string {
	topic, _, _ := strings.Cut(eventType, "_")
	return topic
}

// Publisher is implemented by anything that can announce a change.
type Publisher interface {
	Publish(eventType string, payload interface{})
}

type discard struct{}

func (discard) Publish(string, interface{}) {}

// Discard drops every event.
var Discard Publisher = discard{}
