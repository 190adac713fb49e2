package signaling

import "encoding/json"

// Message types for signaling protocol.
const (
	TypeRegister              = "register"
	TypeRegistered            = "registered"
	TypeListPublishers        = "list-publishers"
	TypePublishers            = "publishers"
	TypePublishersUpdated     = "publishers-updated"
	TypeOffer                 = "offer"
	TypeAnswer                = "answer"
	TypeICECandidate          = "ice-candidate"
	TypePing                  = "ping"
	TypePong                  = "pong"
	TypeError                 = "error"
	TypePublisherDisconnected = "publisher-disconnected"
)

// ClientType distinguishes the annotating publisher from remote viewers.
const (
	ClientTypePublisher = "publisher"
	ClientTypeViewer    = "viewer"
)

// Message is the envelope for all signaling messages.
type Message struct {
	Type        string          `json:"type"`
	ID          string          `json:"id,omitempty"`
	ClientType  string          `json:"clientType,omitempty"`
	From        string          `json:"from,omitempty"`
	Target      string          `json:"target,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	List        []PublisherInfo `json:"list,omitempty"`
	PublisherID string          `json:"publisherId,omitempty"`
	Msg         string          `json:"message,omitempty"`
	Timestamp   int64           `json:"timestamp,omitempty"`
}

// PublisherInfo describes a publisher in the publisher list.
type PublisherInfo struct {
	ID     string `json:"id"`
	Online bool   `json:"online"`
}
