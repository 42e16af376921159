package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Metadata describes where an imported content inventory came from
type Metadata struct {
	Source    string `json:"source"`             // URL or file path
	Timestamp string `json:"timestamp"`          // RFC3339 format
	Hash      string `json:"hash"`               // SHA256 hex digest of the HTML
	Platform  string `json:"platform,omitempty"` // Detected learning platform
	Rendered  bool   `json:"rendered,omitempty"` // HTML came from the headless browser
	ItemCount int    `json:"item_count"`
	Pages     int    `json:"pages,omitempty"` // Unit pages followed from the index
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(html string, source string) *Metadata {
	return &Metadata{
		Source:    source,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(html),
	}
}

func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
