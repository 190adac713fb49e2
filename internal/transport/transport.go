package transport

import "errors"

// ErrChannelNotReady is returned when a send is attempted on a channel
// that is missing or not yet open.
var ErrChannelNotReady = errors.New("data channel not ready")

// FrameSender sends encoded video frames.
type FrameSender interface {
	SendFrame(data []byte) error
}

// FrameReceiver receives encoded video frames.
type FrameReceiver interface {
	OnFrame(callback func(data []byte))
}

// StatusSender sends status text.
type StatusSender interface {
	SendStatus(text string) error
}

// StatusReceiver receives status text.
type StatusReceiver interface {
	OnStatus(callback func(text string))
}
