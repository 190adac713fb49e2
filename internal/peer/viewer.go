package peer

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/junsooki/posecast/internal/transport"
)

// OfferSignaler is the subset of the signaling client a viewer needs.
type OfferSignaler interface {
	SendOffer(target string, payload json.RawMessage) error
	SendICECandidate(target string, payload json.RawMessage) error
}

// Viewer manages the viewer side of the WebRTC connection. The viewer
// creates both data channels so they are negotiated in its offer.
type Viewer struct {
	pc          *webrtc.PeerConnection
	sig         OfferSignaler
	transport   *transport.DataChannelTransport
	publisherID string

	done     chan struct{}
	doneOnce sync.Once
}

// NewViewer creates a Viewer peer manager targeting publisherID.
func NewViewer(sig OfferSignaler, publisherID string) (*Viewer, error) {
	v := &Viewer{
		sig:         sig,
		publisherID: publisherID,
		done:        make(chan struct{}),
	}

	pc, err := NewPeerConnection(func(state webrtc.PeerConnectionState) {
		if terminal(state) {
			v.finish()
		}
	})
	if err != nil {
		return nil, err
	}
	v.pc = pc

	framesDC, err := pc.CreateDataChannel(transport.FramesLabel, transport.FramesInit())
	if err != nil {
		pc.Close()
		return nil, err
	}
	framesDC.OnOpen(func() {
		log.Println("frames data channel open")
	})

	statusDC, err := pc.CreateDataChannel(transport.StatusLabel, transport.StatusInit())
	if err != nil {
		pc.Close()
		return nil, err
	}

	v.transport = transport.NewDataChannelTransport(framesDC, statusDC)

	// ICE candidate handling.
	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		data, err := json.Marshal(c.ToJSON())
		if err != nil {
			log.Printf("marshal ICE candidate: %v", err)
			return
		}
		_ = sig.SendICECandidate(publisherID, data)
	})

	return v, nil
}

// Transport returns the DataChannelTransport.
func (v *Viewer) Transport() *transport.DataChannelTransport {
	return v.transport
}

// Done is closed once the connection fails or is closed.
func (v *Viewer) Done() <-chan struct{} {
	return v.done
}

// Connect initiates the WebRTC connection by creating and sending an offer.
func (v *Viewer) Connect() error {
	offer, err := v.pc.CreateOffer(nil)
	if err != nil {
		return err
	}

	if err := v.pc.SetLocalDescription(offer); err != nil {
		return err
	}

	offerJSON, err := json.Marshal(offer)
	if err != nil {
		return err
	}

	return v.sig.SendOffer(v.publisherID, offerJSON)
}

// HandleAnswer processes an incoming SDP answer.
func (v *Viewer) HandleAnswer(payload json.RawMessage) error {
	var answer webrtc.SessionDescription
	if err := json.Unmarshal(payload, &answer); err != nil {
		return err
	}
	return v.pc.SetRemoteDescription(answer)
}

// HandleICECandidate adds a remote ICE candidate.
func (v *Viewer) HandleICECandidate(payload json.RawMessage) error {
	candidate, err := decodeCandidate(payload)
	if err != nil {
		return err
	}
	return v.pc.AddICECandidate(candidate)
}

// Close shuts down the peer connection.
func (v *Viewer) Close() {
	if v.pc != nil {
		v.pc.Close()
	}
	v.finish()
}

func (v *Viewer) finish() {
	v.doneOnce.Do(func() { close(v.done) })
}
