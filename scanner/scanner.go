// Package scanner drives camera-based ticket verification: it polls a
// frame source, looks for a QR symbol in each frame and stops on the
// first payload that parses as a ticket.
package scanner

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"event-portal/ticket"
)

// State of the capture loop. Transitions are Idle -> Scanning -> Stopped;
// a stopped scanner is not restartable.
type State int

const (
	StateIdle State = iota
	StateScanning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

var ErrNotIdle = errors.New("scanner already started")

// FrameSource produces frames from a camera stream. Grab blocks until
// the next frame is available; frames produced while a decode attempt
// is in flight are dropped, not buffered. The scanner owns the source
// for its lifetime and closes it when the loop ends.
type FrameSource interface {
	Grab(ctx context.Context) (image.Image, error)
	Close() error
}

// FrameDecoder extracts a QR payload from a single frame. A frame with
// no locatable symbol reports ok=false.
type FrameDecoder interface {
	DecodeFrame(img image.Image) (string, bool)
}

type Scanner struct {
	source  FrameSource
	decoder FrameDecoder

	mu      sync.Mutex
	state   State
	cancel  context.CancelFunc
	results chan ticket.TicketData
	err     error
}

type Option func(*Scanner)

// WithDecoder overrides the default QR frame decoder.
func WithDecoder(d FrameDecoder) Option {
	return func(s *Scanner) { s.decoder = d }
}

func New(source FrameSource, opts ...Option) *Scanner {
	s := &Scanner{
		source:  source,
		decoder: newQRFrameDecoder(),
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the capture loop and returns the channel on which the
// first structurally valid ticket is delivered. The channel is closed
// when the loop ends, whether by match, Stop or frame-source failure.
func (s *Scanner) Start(ctx context.Context) (<-chan ticket.TicketData, error) {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return nil, ErrNotIdle
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.results = make(chan ticket.TicketData, 1)
	s.state = StateScanning
	results := s.results
	s.mu.Unlock()

	go s.loop(loopCtx)
	return results, nil
}

// Stop ends the loop and releases the camera. Safe to call more than
// once and from any state.
func (s *Scanner) Stop() {
	s.mu.Lock()
	switch s.state {
	case StateStopped:
		s.mu.Unlock()
		return
	case StateIdle:
		s.state = StateStopped
		s.mu.Unlock()
		s.source.Close()
		return
	}
	s.state = StateStopped
	cancel := s.cancel
	s.mu.Unlock()
	cancel()
}

func (s *Scanner) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the frame-source failure that ended the loop, if any.
// A match or an explicit Stop leaves it nil.
func (s *Scanner) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Scanner) loop(ctx context.Context) {
	defer s.finalize()

	for {
		// an in-flight iteration re-checks the flag before continuing
		if s.State() != StateScanning || ctx.Err() != nil {
			return
		}

		img, err := s.source.Grab(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
			}
			return
		}

		payload, ok := s.decoder.DecodeFrame(img)
		if !ok {
			continue // no symbol in this frame
		}

		data, ok := ticket.Decode(payload)
		if !ok {
			continue // foreign or malformed QR, keep scanning
		}

		s.results <- data
		return
	}
}

func (s *Scanner) finalize() {
	s.mu.Lock()
	s.state = StateStopped
	cancel := s.cancel
	results := s.results
	s.mu.Unlock()

	cancel()
	close(results)
	s.source.Close()
}

type qrFrameDecoder struct {
	reader gozxing.Reader
}

func newQRFrameDecoder() *qrFrameDecoder {
	return &qrFrameDecoder{reader: qrcode.NewQRCodeReader()}
}

func (d *qrFrameDecoder) DecodeFrame(img image.Image) (string, bool) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false
	}
	result, err := d.reader.Decode(bmp, nil)
	if err != nil {
		return "", false
	}
	return result.GetText(), true
}
