package stdio

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// AppName is the directory created under the user config dir when no
// recording directory is configured.
const AppName = "midisynth"

// Host writes notifications as JSON lines.
type Host struct {
	mu      sync.Mutex
	enc     *json.Encoder
	dataDir string
}

// NewHost returns a host writing to w. An empty dataDir resolves to the
// user config directory.
func NewHost(w io.Writer, dataDir string) *Host {
	return &Host{enc: json.NewEncoder(w), dataDir: dataDir}
}

// Notify writes one notification line.
func (h *Host) Notify(n contracts.Notification) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.enc.Encode(n)
}

// AppDataPath returns the directory recordings are written to.
func (h *Host) AppDataPath() (string, error) {
	if h.dataDir != "" {
		return h.dataDir, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}
