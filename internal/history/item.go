package history

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// HistoryItem is one recorded generation event.
// Input and Output are stored verbatim and never validated by the store.
type HistoryItem struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Timestamp   int64           `json:"timestamp"` // milliseconds since epoch
	FeatureType FeatureType     `json:"featureType"`
	Input       json.RawMessage `json:"input"`
	Output      json.RawMessage `json:"output"`
}

// Entry is the caller-supplied part of a new HistoryItem.
type Entry struct {
	FeatureType FeatureType
	Input       json.RawMessage
	Output      json.RawMessage
}

// NewEntry marshals a typed input and an arbitrary output into an Entry.
func NewEntry(in Input, output any) (Entry, error) {
	rawIn, err := json.Marshal(in)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to marshal input: %w", err)
	}
	rawOut, err := json.Marshal(output)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to marshal output: %w", err)
	}
	return Entry{FeatureType: in.Feature(), Input: rawIn, Output: rawOut}, nil
}

// Patch lists the fields Update may change. Nil fields are left alone.
// ID, FeatureType and Timestamp are immutable.
type Patch struct {
	Title  *string
	Input  json.RawMessage
	Output json.RawMessage
}

// DecodedInput decodes the item's input for its feature type.
func (h HistoryItem) DecodedInput() (Input, error) {
	return DecodeInput(h.FeatureType, h.Input)
}

func (h HistoryItem) clone() HistoryItem {
	h.Input = cloneRaw(h.Input)
	h.Output = cloneRaw(h.Output)
	return h
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return bytes.Clone(raw)
}

// normalizeRaw compacts a payload so the in-memory item and its persisted
// encoding are byte-identical. Absent payloads become null; bytes that are
// not JSON are kept as a JSON string.
func normalizeRaw(raw json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		quoted, _ := json.Marshal(string(raw))
		return quoted
	}
	return buf.Bytes()
}
