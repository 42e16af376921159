package ingestion

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetadata(t *testing.T) {
	m := NewMetadata("<html></html>", "https://example.com/course")

	assert.Equal(t, "https://example.com/course", m.Source)
	assert.Len(t, m.Hash, 64)

	_, err := time.Parse(time.RFC3339, m.Timestamp)
	assert.NoError(t, err)
}

func TestNewMetadata_HashIsStable(t *testing.T) {
	a := NewMetadata("<p>Waves</p>", "a.html")
	b := NewMetadata("<p>Waves</p>", "b.html")
	c := NewMetadata("<p>Optics</p>", "a.html")

	assert.Equal(t, a.Hash, b.Hash)
	assert.NotEqual(t, a.Hash, c.Hash)
}

func TestMetadata_ToJSON(t *testing.T) {
	metadata := &Metadata{
		Source:    "https://moodle.example.org/course/view.php?id=3",
		Timestamp: "2024-01-01T00:00:00Z",
		Hash:      "abcd1234",
		Platform:  "moodle",
		ItemCount: 12,
	}

	jsonBytes, err := metadata.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(jsonBytes, &decoded))
	assert.Equal(t, "moodle", decoded["platform"])
	assert.EqualValues(t, 12, decoded["item_count"])
	assert.NotContains(t, decoded, "rendered", "false rendered flag is omitted")
}
