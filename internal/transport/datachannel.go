package transport

import (
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"
)

// Channel labels negotiated between publisher and viewer.
const (
	FramesLabel = "frames"
	StatusLabel = "status"
)

// MaxBufferedAmount bounds how much unsent frame data may queue on the
// frames channel before new frames are dropped.
const MaxBufferedAmount = 4 << 20

// FramesInit is the frames channel configuration: unordered, no retransmits.
func FramesInit() *webrtc.DataChannelInit {
	ordered := false
	maxRetransmits := uint16(0)
	return &webrtc.DataChannelInit{
		Ordered:        &ordered,
		MaxRetransmits: &maxRetransmits,
	}
}

// StatusInit is the status channel configuration: ordered and reliable.
func StatusInit() *webrtc.DataChannelInit {
	ordered := true
	return &webrtc.DataChannelInit{Ordered: &ordered}
}

// DataChannelTransport implements frame and status transport over WebRTC DataChannels.
type DataChannelTransport struct {
	mu       sync.Mutex
	framesDC *webrtc.DataChannel
	statusDC *webrtc.DataChannel

	onFrame  func(data []byte)
	onStatus func(text string)
}

// NewDataChannelTransport wraps two DataChannels (frames + status). Either may be nil
// and set later.
func NewDataChannelTransport(framesDC, statusDC *webrtc.DataChannel) *DataChannelTransport {
	t := &DataChannelTransport{}
	if framesDC != nil {
		t.SetFramesChannel(framesDC)
	}
	if statusDC != nil {
		t.SetStatusChannel(statusDC)
	}
	return t
}

// SendFrame sends one encoded frame. Frames are dropped while the channel is
// congested.
func (t *DataChannelTransport) SendFrame(data []byte) error {
	t.mu.Lock()
	dc := t.framesDC
	t.mu.Unlock()
	if !isOpen(dc) {
		return fmt.Errorf("frames: %w", ErrChannelNotReady)
	}
	if dc.BufferedAmount() > MaxBufferedAmount {
		return nil
	}
	return dc.Send(data)
}

// SendStatus sends one status line.
func (t *DataChannelTransport) SendStatus(text string) error {
	t.mu.Lock()
	dc := t.statusDC
	t.mu.Unlock()
	if !isOpen(dc) {
		return fmt.Errorf("status: %w", ErrChannelNotReady)
	}
	return dc.SendText(text)
}

func (t *DataChannelTransport) OnFrame(cb func(data []byte)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onFrame = cb
}

func (t *DataChannelTransport) OnStatus(cb func(text string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStatus = cb
}

// Ready reports whether the frames channel is open.
func (t *DataChannelTransport) Ready() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return isOpen(t.framesDC)
}

// SetFramesChannel sets or replaces the frames DataChannel (used when receiving negotiated channels).
func (t *DataChannelTransport) SetFramesChannel(dc *webrtc.DataChannel) {
	t.mu.Lock()
	t.framesDC = dc
	t.mu.Unlock()
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		t.mu.Lock()
		cb := t.onFrame
		t.mu.Unlock()
		if cb != nil {
			cb(msg.Data)
		}
	})
}

// SetStatusChannel sets or replaces the status DataChannel.
func (t *DataChannelTransport) SetStatusChannel(dc *webrtc.DataChannel) {
	t.mu.Lock()
	t.statusDC = dc
	t.mu.Unlock()
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		t.mu.Lock()
		cb := t.onStatus
		t.mu.Unlock()
		if cb != nil {
			cb(string(msg.Data))
		}
	})
}

// Attach routes a received DataChannel to the matching slot by label.
// It reports false for unknown labels.
func (t *DataChannelTransport) Attach(dc *webrtc.DataChannel) bool {
	switch dc.Label() {
	case FramesLabel:
		t.SetFramesChannel(dc)
	case StatusLabel:
		t.SetStatusChannel(dc)
	default:
		return false
	}
	return true
}

func isOpen(dc *webrtc.DataChannel) bool {
	return dc != nil && dc.ReadyState() == webrtc.DataChannelStateOpen
}
