package capture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/muurk/fmremote/internal/logging"
	"go.uber.org/zap"
)

// Directions recorded in a capture
const (
	DirectionInbound  = "device->client"
	DirectionOutbound = "client->device"
)

// Record is one captured frame, written as a single JSON line
type Record struct {
	Timestamp    time.Time `json:"timestamp"`
	MessageNum   int       `json:"message_num"`
	SessionID    string    `json:"session_id,omitempty"`
	URL          string    `json:"url"`
	Direction    string    `json:"direction"`
	Label        string    `json:"label"` // tag for inbound frames, command id for outbound
	PayloadLen   int       `json:"payload_length"`
	PayloadHex   string    `json:"payload_hex"`
	PayloadAscii string    `json:"payload_ascii"`
}

// Recorder appends frames to a JSONL file. A nil *Recorder records nothing.
type Recorder struct {
	mu         sync.Mutex
	file       *os.File
	path       string
	url        string
	sessionID  string
	messageNum int
	now        func() time.Time
}

// NewRecorder creates capture-<timestamp>.jsonl in dir. An empty dir disables
// capture and returns a nil recorder.
func NewRecorder(dir, url string) (*Recorder, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create capture directory: %w", err)
	}

	timestamp := time.Now()
	path := filepath.Join(dir, fmt.Sprintf("capture-%s.jsonl", timestamp.Format("20060102-150405")))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}

	logging.Info("Capturing frames", zap.String("filename", path))

	return &Recorder{
		file: f,
		path: path,
		url:  url,
		now:  time.Now,
	}, nil
}

// Path returns the capture file path
func (r *Recorder) Path() string {
	if r == nil {
		return ""
	}
	return r.path
}

// SetSessionID tags subsequent records with the transport session id
func (r *Recorder) SetSessionID(id string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.sessionID = id
	r.mu.Unlock()
}

// Inbound records a frame received from the device
func (r *Recorder) Inbound(tag, text string) {
	r.write(DirectionInbound, tag, text)
}

// Outbound records a command sent to the device
func (r *Recorder) Outbound(id, text string) {
	r.write(DirectionOutbound, id, text)
}

func (r *Recorder) write(direction, label, text string) {
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.messageNum++
	rec := Record{
		Timestamp:    r.now(),
		MessageNum:   r.messageNum,
		SessionID:    r.sessionID,
		URL:          r.url,
		Direction:    direction,
		Label:        label,
		PayloadLen:   len(text),
		PayloadHex:   logging.HexDump([]byte(text)),
		PayloadAscii: logging.AsciiDump([]byte(text)),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		logging.Error("Failed to marshal capture record", zap.Error(err))
		return
	}

	if _, err := r.file.Write(append(data, '\n')); err != nil {
		logging.Error("Failed to write to capture file",
			zap.String("filename", r.path),
			zap.Error(err),
		)
		return
	}

	logging.Debug("Saved frame to capture file",
		zap.String("filename", r.path),
		zap.Int("message_num", rec.MessageNum),
	)
}

// Close closes the capture file
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Close()
}
