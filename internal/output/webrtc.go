package output

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/junsooki/posecast/internal/encoder"
	"github.com/junsooki/posecast/internal/peer"
	"github.com/junsooki/posecast/internal/signaling"
)

// broadcaster fans frames and status out to remote viewers.
type broadcaster interface {
	SendFrame(data []byte) error
	SendStatus(text string) error
	Close()
}

// WebRTCSink publishes JPEG frames to viewers through data channels.
type WebRTCSink struct {
	enc   encoder.Encoder
	peers broadcaster
	done  <-chan struct{}
	stop  func()

	mu     sync.Mutex
	status string
	closed bool
}

// NewWebRTCSink registers publisherID with the signaling server at
// signalingURL and answers viewer offers as they arrive.
func NewWebRTCSink(signalingURL, publisherID string, quality int) (*WebRTCSink, error) {
	var (
		pub *peer.Publisher
		sig *signaling.Client
	)
	sig = signaling.NewClient(signalingURL, publisherID, signaling.ClientTypePublisher, signaling.Handler{
		OnRegistered: func() {
			log.Printf("Registered with signaling server as %s", publisherID)
		},
		OnOffer: func(from string, payload json.RawMessage) {
			log.Printf("Received offer from %s", from)
			if err := pub.HandleOffer(from, payload); err != nil {
				log.Printf("handle offer: %v", err)
			}
		},
		OnICECandidate: func(from string, payload json.RawMessage) {
			if err := pub.HandleICECandidate(from, payload); err != nil {
				log.Printf("handle ICE candidate: %v", err)
			}
		},
		OnError: func(msg string) {
			log.Printf("signaling error: %s", msg)
		},
	})
	pub = peer.NewPublisher(sig)

	if err := sig.Connect(); err != nil {
		return nil, err
	}
	return newWebRTCSink(encoder.NewJPEGEncoder(quality), pub, sig.Done(), sig.Close), nil
}

func newWebRTCSink(enc encoder.Encoder, peers broadcaster, done <-chan struct{}, stop func()) *WebRTCSink {
	return &WebRTCSink{enc: enc, peers: peers, done: done, stop: stop}
}

// Render encodes img and sends it to every connected viewer. Delivery
// failures to individual viewers are logged, not returned.
func (s *WebRTCSink) Render(img *image.RGBA) error {
	data, err := s.enc.Encode(img)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := s.peers.SendFrame(data); err != nil {
		log.Printf("send frame: %v", err)
	}
	return nil
}

// SetStatus forwards text on the status channel when it changes.
func (s *WebRTCSink) SetStatus(text string) {
	s.mu.Lock()
	if text == s.status {
		s.mu.Unlock()
		return
	}
	s.status = text
	s.mu.Unlock()
	if err := s.peers.SendStatus(text); err != nil {
		log.Printf("send status: %v", err)
	}
}

// IsStreaming reports false once the signaling connection ends or the sink
// is closed.
func (s *WebRTCSink) IsStreaming() bool {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (s *WebRTCSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	s.peers.Close()
	if s.stop != nil {
		s.stop()
	}
	return nil
}
