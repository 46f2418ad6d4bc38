package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record operations carried by a RecordEvent.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpRemoved = "removed"
)

// RecordEvent announces a committed change to one record. It carries the
// record itself for created and updated events so consumers never read
// back from the store.
type RecordEvent struct {
	Kind      string          `json:"kind"`
	Op        string          `json:"op"`
	ID        string          `json:"id"`
	Version   int64           `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Record    json.RawMessage `json:"record,omitempty"`
}

// NewRecordEvent builds an event, marshalling record when it is not nil.
func NewRecordEvent(kind, op, id string, version int64, record any) (*RecordEvent, error) {
	evt := &RecordEvent{
		Kind:      kind,
		Op:        op,
		ID:        id,
		Version:   version,
		Timestamp: time.Now().UTC(),
	}
	if record != nil {
		raw, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s: %w", kind, id, err)
		}
		evt.Record = raw
	}
	return evt, nil
}

// ToJSON converts the event to JSON bytes
func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON creates an event from JSON bytes
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var evt RecordEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, err
	}
	if evt.Kind == "" || evt.ID == "" {
		return nil, fmt.Errorf("record event missing kind or id")
	}
	return &evt, nil
}
