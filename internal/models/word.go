package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// WordID is a word identifier inside one module. Datasets use both JSON
// numbers and strings for ids, so the value is always kept in string form.
type WordID string

// UnmarshalJSON accepts a JSON number, a JSON string or null
func (id *WordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode word id: %w", err)
		}
		*id = WordID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("failed to decode word id: %w", err)
	}
	// 12 and 12.0 must land on the same key
	if i, err := n.Int64(); err == nil {
		*id = WordID(strconv.FormatInt(i, 10))
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("failed to decode word id: %w", err)
	}
	*id = WordID(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// WordRef identifies one vocabulary item across all modules
type WordRef struct {
	ModuleType string
	WordID     WordID
}

// NewWordRef builds a WordRef from a module type and any id representation
func NewWordRef(moduleType string, id WordID) WordRef {
	return WordRef{ModuleType: moduleType, WordID: id}
}

// Key returns the persisted "moduleType:wordId" form
func (r WordRef) Key() string {
	return r.ModuleType + ":" + string(r.WordID)
}

func (r WordRef) String() string {
	return r.Key()
}

// ParseWordRef parses a persisted key. Only the first colon separates the
// module type from the id.
func ParseWordRef(key string) (WordRef, error) {
	moduleType, id, ok := strings.Cut(key, ":")
	if !ok || moduleType == "" || id == "" {
		return WordRef{}, fmt.Errorf("invalid word key %q", key)
	}
	return WordRef{ModuleType: moduleType, WordID: WordID(id)}, nil
}

// MarshalText lets WordRef be used as a JSON map key
func (r WordRef) MarshalText() ([]byte, error) {
	return []byte(r.Key()), nil
}

// UnmarshalText is the inverse of MarshalText
func (r *WordRef) UnmarshalText(text []byte) error {
	parsed, err := ParseWordRef(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Example is a normalized example sentence
type Example struct {
	JP string `json:"jp"`
	CN string `json:"cn"`
}

// MeaningExample is an example sentence as it appears under meanings[]
type MeaningExample struct {
	Japanese string `json:"japanese"`
	Chinese  string `json:"chinese"`
}

// Meaning is one sense of a word in the meanings[] dataset shape
type Meaning struct {
	Text     string           `json:"text"`
	Examples []MeaningExample `json:"examples,omitempty"`
}

// WordRecord is a normalized dataset entry
type WordRecord struct {
	ID          WordID    `json:"id"`
	Word        string    `json:"word"`
	Kana        string    `json:"kana,omitempty"`
	Meaning     string    `json:"meaning,omitempty"`
	Examples    []Example `json:"examples,omitempty"`
	Meanings    []Meaning `json:"meanings,omitempty"`
	Level       string    `json:"level,omitempty"`
	Placeholder bool      `json:"placeholder,omitempty"`
}

// Normalize fills Meaning and Examples from Meanings when only the
// meanings[] shape is present
func (w *WordRecord) Normalize() {
	w.Word = strings.TrimSpace(w.Word)
	if w.Word == "" {
		w.Word = w.Kana
	}
	if len(w.Meanings) == 0 {
		return
	}

	if w.Meaning == "" {
		texts := make([]string, 0, len(w.Meanings))
		for _, m := range w.Meanings {
			if m.Text != "" {
				texts = append(texts, m.Text)
			}
		}
		w.Meaning = strings.Join(texts, "；")
	}

	if len(w.Examples) == 0 {
		for _, m := range w.Meanings {
			for _, e := range m.Examples {
				w.Examples = append(w.Examples, Example{JP: e.Japanese, CN: e.Chinese})
			}
		}
	}
}

// Ref returns the key used to track this record inside moduleType. A record
// without an id falls back to its word text.
func (w WordRecord) Ref(moduleType string) WordRef {
	if w.ID != "" {
		return WordRef{ModuleType: moduleType, WordID: w.ID}
	}
	return WordRef{ModuleType: moduleType, WordID: WordID(w.Word)}
}

// ModuleConfig describes one part-of-speech dataset
type ModuleConfig struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// ModuleStat summarizes one module's dataset and progress
type ModuleStat struct {
	Name     string `json:"name"`
	Total    int    `json:"total"`
	Studied  int    `json:"studied"`
	Favorite int    `json:"favorite"`
	Path     string `json:"path"`
	Degraded bool   `json:"degraded,omitempty"`
}

// Remaining returns the number of words not yet studied
func (s ModuleStat) Remaining() int {
	return s.Total - s.Studied
}
