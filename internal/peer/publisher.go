package peer

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/junsooki/posecast/internal/transport"
)

// Signaler is the subset of the signaling client a publisher needs.
type Signaler interface {
	SendAnswer(target string, payload json.RawMessage) error
	SendICECandidate(target string, payload json.RawMessage) error
}

type session struct {
	pc        *webrtc.PeerConnection
	transport *transport.DataChannelTransport
}

// Publisher answers viewer offers and fans annotated frames out to every
// connected viewer.
type Publisher struct {
	sig Signaler

	mu       sync.Mutex
	sessions map[string]*session
	pending  map[string][]webrtc.ICECandidateInit
	closed   bool
}

// NewPublisher creates a Publisher peer manager.
func NewPublisher(sig Signaler) *Publisher {
	return &Publisher{
		sig:      sig,
		sessions: make(map[string]*session),
		pending:  make(map[string][]webrtc.ICECandidateInit),
	}
}

// HandleOffer processes an incoming offer from a viewer. An existing session
// with the same viewer is replaced.
func (p *Publisher) HandleOffer(from string, payload json.RawMessage) error {
	var offer webrtc.SessionDescription
	if err := json.Unmarshal(payload, &offer); err != nil {
		return fmt.Errorf("decode offer: %w", err)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return errors.New("publisher closed")
	}
	old := p.sessions[from]
	delete(p.sessions, from)
	p.mu.Unlock()
	if old != nil {
		old.pc.Close()
	}

	s := &session{transport: transport.NewDataChannelTransport(nil, nil)}
	pc, err := NewPeerConnection(func(state webrtc.PeerConnectionState) {
		if terminal(state) {
			p.dropSession(from, s)
		}
	})
	if err != nil {
		return err
	}
	s.pc = pc

	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		log.Printf("data channel from %s: %s", from, dc.Label())
		if !s.transport.Attach(dc) {
			log.Printf("ignoring unknown data channel %q", dc.Label())
		}
	})

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		data, err := json.Marshal(c.ToJSON())
		if err != nil {
			log.Printf("marshal ICE candidate: %v", err)
			return
		}
		_ = p.sig.SendICECandidate(from, data)
	})

	if err := pc.SetRemoteDescription(offer); err != nil {
		pc.Close()
		return err
	}

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		pc.Close()
		return err
	}
	if err := pc.SetLocalDescription(answer); err != nil {
		pc.Close()
		return err
	}

	p.mu.Lock()
	p.sessions[from] = s
	queued := p.pending[from]
	delete(p.pending, from)
	p.mu.Unlock()

	for _, c := range queued {
		if err := pc.AddICECandidate(c); err != nil {
			log.Printf("add queued ICE candidate: %v", err)
		}
	}

	answerJSON, err := json.Marshal(answer)
	if err != nil {
		return err
	}
	return p.sig.SendAnswer(from, answerJSON)
}

// HandleICECandidate adds a remote ICE candidate from viewer from. Candidates
// that arrive before the viewer's offer are queued.
func (p *Publisher) HandleICECandidate(from string, payload json.RawMessage) error {
	candidate, err := decodeCandidate(payload)
	if err != nil {
		return err
	}
	p.mu.Lock()
	s, ok := p.sessions[from]
	if !ok {
		p.pending[from] = append(p.pending[from], candidate)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()
	return s.pc.AddICECandidate(candidate)
}

// SendFrame sends data to every viewer whose frames channel is open.
func (p *Publisher) SendFrame(data []byte) error {
	var errs []error
	for _, s := range p.snapshot() {
		if !s.transport.Ready() {
			continue
		}
		if err := s.transport.SendFrame(data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SendStatus sends text to every viewer whose status channel is open.
func (p *Publisher) SendStatus(text string) error {
	var errs []error
	for _, s := range p.snapshot() {
		if err := s.transport.SendStatus(text); err != nil && !errors.Is(err, transport.ErrChannelNotReady) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Viewers returns the number of viewers with a session.
func (p *Publisher) Viewers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// RemoveViewer closes the session with viewer id, if any.
func (p *Publisher) RemoveViewer(id string) {
	p.mu.Lock()
	s, ok := p.sessions[id]
	delete(p.sessions, id)
	delete(p.pending, id)
	p.mu.Unlock()
	if ok {
		s.pc.Close()
	}
}

// Close shuts down every viewer session.
func (p *Publisher) Close() {
	p.mu.Lock()
	p.closed = true
	sessions := p.sessions
	p.sessions = make(map[string]*session)
	p.pending = make(map[string][]webrtc.ICECandidateInit)
	p.mu.Unlock()
	for _, s := range sessions {
		s.pc.Close()
	}
}

func (p *Publisher) dropSession(id string, s *session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sessions[id] == s {
		delete(p.sessions, id)
		log.Printf("viewer %s disconnected", id)
	}
}

func (p *Publisher) snapshot() []*session {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*session, 0, len(p.sessions))
	for _, s := range p.sessions {
		out = append(out, s)
	}
	return out
}
