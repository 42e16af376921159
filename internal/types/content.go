package types

import (
	"encoding/json"
	"fmt"
)

// UnknownSubject is the subject assigned to content items without one.
const UnknownSubject = "Unknown"

// ContentDocument is the on-disk content inventory: {"content": [...]}
type ContentDocument struct {
	Content []ContentItem `json:"content"`
}

// ContentItem is one piece of content in the inventory. Subject, Topic and Title
// are all optional; an empty string means the field was absent.
type ContentItem struct {
	Subject string
	Topic   string
	Title   string
	Extra   map[string]json.RawMessage
}

// SubjectOrDefault returns the item's subject, or UnknownSubject when it has none.
func (c ContentItem) SubjectOrDefault() string {
	if c.Subject == "" {
		return UnknownSubject
	}
	return c.Subject
}

// MatchText returns the string compared against curriculum topics:
// the topic when present, otherwise the title.
func (c ContentItem) MatchText() string {
	if c.Topic != "" {
		return c.Topic
	}
	return c.Title
}

var contentKnownFields = []string{"subject", "topic", "title"}

// UnmarshalJSON reads the known string fields and keeps everything else in Extra.
// Known fields holding a non-string value are treated as absent.
func (c *ContentItem) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("content item must be an object: %w", err)
	}

	*c = ContentItem{}
	targets := map[string]*string{
		"subject": &c.Subject,
		"topic":   &c.Topic,
		"title":   &c.Title,
	}
	for _, key := range contentKnownFields {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			*targets[key] = s
		}
		delete(fields, key)
	}
	if len(fields) > 0 {
		c.Extra = fields
	}
	return nil
}

// MarshalJSON writes the known fields that are set plus the preserved extras.
func (c ContentItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+3)
	for k, v := range c.Extra {
		out[k] = v
	}
	if c.Subject != "" {
		out["subject"] = c.Subject
	}
	if c.Topic != "" {
		out["topic"] = c.Topic
	}
	if c.Title != "" {
		out["title"] = c.Title
	}
	return json.Marshal(out)
}

// Subjects returns the distinct subjects of the inventory in first-seen order.
func (d *ContentDocument) Subjects() []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range d.Content {
		s := item.SubjectOrDefault()
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
