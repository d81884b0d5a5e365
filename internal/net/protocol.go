// Package net carries the board's sync protocol: the JSON message envelope,
// the websocket client, the relay hub and LAN discovery.
package net

import (
	"encoding/json"
	"errors"
	"fmt"

	"LocalBoard/internal/state"
)

// Kind identifies a protocol message. The numbering is part of the wire
// format.
type Kind int

const (
	UserConnected              Kind = 1
	UserDisconnected           Kind = 2
	UserCommand                Kind = 3
	UserConnectionAcknowledged Kind = 4
	UserMessage                Kind = 5
)

func (k Kind) String() string {
	switch k {
	case UserConnected:
		return "user-connected"
	case UserDisconnected:
		return "user-disconnected"
	case UserCommand:
		return "user-command"
	case UserConnectionAcknowledged:
		return "user-connection-acknowledged"
	case UserMessage:
		return "user-message"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ErrNotConnected is returned when sending on a closed connection.
var ErrNotConnected = errors.New("not connected")

// Message is the envelope of every frame. Which fields are set depends on
// Kind:
//
//	UserConnected               User
//	UserDisconnected            UserID
//	UserCommand                 UserID, Command, Seq
//	UserConnectionAcknowledged  User (the receiver), Users (everyone)
//	UserMessage                 UserID, Text
//
// UserID on relayed frames is always set by the hub.
type Message struct {
	Kind    Kind           `json:"type"`
	User    *state.User    `json:"user,omitempty"`
	Users   []state.User   `json:"users,omitempty"`
	UserID  state.UserID   `json:"userId,omitempty"`
	Command *state.Command `json:"command,omitempty"`
	Text    string         `json:"text,omitempty"`
	Seq     uint64         `json:"seq,omitempty"`
}

// Decode parses one frame.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	return m, nil
}

// Encode serialises one frame.
func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// Handler receives the messages of a connection.
type Handler interface {
	HandleMessage(m Message)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(m Message)

func (f HandlerFunc) HandleMessage(m Message) { f(m) }
