// Package types provides type definitions for the documents exchanged by the coverage tools.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"fmt"
	"sort"
)

// CurriculumMap maps a subject name (case-sensitive) to its ordered topic names.
type CurriculumMap map[string][]string

// Subjects returns the subject names of the map in sorted order.
func (m CurriculumMap) Subjects() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CurriculumDocument is the on-disk curriculum:
// {"subjects": {<subject>: {"topics": [{"name": ...}, ...]}}}
type CurriculumDocument struct {
	Subjects map[string]CurriculumSubject `json:"subjects"`
}

// CurriculumSubject holds the ordered topics of one subject.
type CurriculumSubject struct {
	Topics []CurriculumTopic `json:"topics"`
}

// CurriculumTopic is a single curriculum topic. Only Name is used for matching;
// every other field (difficulty, prerequisites, exam weight, ...) is kept in Extra
// so that it survives re-serialization.
type CurriculumTopic struct {
	Name  string
	Extra map[string]json.RawMessage
}

// UnmarshalJSON accepts either a topic object or a bare topic-name string.
func (t *CurriculumTopic) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		t.Name = name
		t.Extra = nil
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("topic must be a string or an object: %w", err)
	}

	t.Name = ""
	if raw, ok := fields["name"]; ok {
		// A non-string name degrades to an empty topic name, which never matches.
		_ = json.Unmarshal(raw, &t.Name)
		delete(fields, "name")
	}
	if len(fields) > 0 {
		t.Extra = fields
	} else {
		t.Extra = nil
	}
	return nil
}

// MarshalJSON writes the topic as an object with name plus the preserved extra fields.
func (t CurriculumTopic) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(t.Extra)+1)
	for k, v := range t.Extra {
		out[k] = v
	}
	name, err := json.Marshal(t.Name)
	if err != nil {
		return nil, err
	}
	out["name"] = name
	return json.Marshal(out)
}

// Map flattens the document into a CurriculumMap, keeping topic order.
// Duplicate topic names are kept as separate topics.
func (d *CurriculumDocument) Map() CurriculumMap {
	m := make(CurriculumMap, len(d.Subjects))
	for subject, s := range d.Subjects {
		names := make([]string, 0, len(s.Topics))
		for _, topic := range s.Topics {
			names = append(names, topic.Name)
		}
		m[subject] = names
	}
	return m
}

// TopicCount returns the total number of topics across all subjects.
func (d *CurriculumDocument) TopicCount() int {
	total := 0
	for _, s := range d.Subjects {
		total += len(s.Topics)
	}
	return total
}
