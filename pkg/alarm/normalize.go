/*
Copyright 2025 Alarmstat Contributors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package alarm

import (
	"encoding/json"
)

// Payload is the decoded form of a HistoryData blob. CloudWatch has used
// more than one shape over time; each shape is its own variant and
// anything else decodes to UnrecognizedPayload.
type Payload interface {
	// States returns the previous and new state carried by the payload.
	// Either may be nil.
	States() (previous, next *State)

	isPayload()
}

// NestedPayload is the current shape:
//
//	{"oldState":{"stateValue":"OK"},"newState":{"stateValue":"ALARM"}}
//
// Flat holds any flattened keys found alongside the nested objects; they
// only fill a state the nested objects left out.
type NestedPayload struct {
	Old  *State
	New  *State
	Flat FlatPayload
}

// FlatPayload is the flattened shape using newStateValue, oldStateValue
// or a bare stateValue key.
type FlatPayload struct {
	Old *State
	New *State
}

// UnrecognizedPayload is a payload that is absent, is not a JSON object,
// or has none of the known keys.
type UnrecognizedPayload struct {
	Reason string
}

func (NestedPayload) isPayload()       {}
func (FlatPayload) isPayload()         {}
func (UnrecognizedPayload) isPayload() {}

// States implements Payload.
func (p NestedPayload) States() (*State, *State) {
	previous, next := p.Old, p.New
	if previous == nil {
		previous = p.Flat.Old
	}
	if next == nil {
		next = p.Flat.New
	}
	return previous, next
}

// States implements Payload.
func (p FlatPayload) States() (*State, *State) {
	return p.Old, p.New
}

// States implements Payload.
func (UnrecognizedPayload) States() (*State, *State) {
	return nil, nil
}

// DecodePayload classifies a HistoryData blob into one of the Payload variants.
func DecodePayload(b []byte) Payload {
	if len(b) == 0 {
		return UnrecognizedPayload{Reason: "empty payload"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return UnrecognizedPayload{Reason: err.Error()}
	}
	if fields == nil {
		return UnrecognizedPayload{Reason: "payload is null"}
	}

	// An empty newStateValue defers to stateValue; every other present
	// value counts, even when it is not a known state.
	flat := FlatPayload{
		Old: stateField(fields, "oldStateValue"),
		New: nonEmptyStateField(fields, "newStateValue"),
	}
	if flat.New == nil {
		flat.New = stateField(fields, "stateValue")
	}

	newObj, hasNew := objectField(fields, "newState")
	oldObj, hasOld := objectField(fields, "oldState")
	if hasNew || hasOld {
		return NestedPayload{
			Old:  stateField(oldObj, "stateValue"),
			New:  stateField(newObj, "stateValue"),
			Flat: flat,
		}
	}

	if flat.New != nil || flat.Old != nil {
		return flat
	}
	return UnrecognizedPayload{Reason: "no state keys"}
}

// objectField returns fields[key] decoded as a JSON object.
func objectField(fields map[string]json.RawMessage, key string) (map[string]json.RawMessage, bool) {
	raw, ok := fields[key]
	if !ok {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// stateField returns fields[key] as a State. A missing or null key is
// absent. Any other value outside the known states, including the empty
// string and non-string values, is StateUnknown.
func stateField(fields map[string]json.RawMessage, key string) *State {
	v, ok := jsonValue(fields, key)
	if !ok || v == nil {
		return nil
	}
	s, _ := v.(string)
	return ParseState(s).Ptr()
}

// nonEmptyStateField is stateField with empty values ("", 0, false, [],
// {}) treated as absent.
func nonEmptyStateField(fields map[string]json.RawMessage, key string) *State {
	v, ok := jsonValue(fields, key)
	if !ok || isEmptyValue(v) {
		return nil
	}
	s, _ := v.(string)
	return ParseState(s).Ptr()
}

func jsonValue(fields map[string]json.RawMessage, key string) (any, bool) {
	raw, ok := fields[key]
	if !ok {
		return nil, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return v, true
}

func isEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	default:
		return false
	}
}

// Normalize turns one history record into an Event.
//
// The second return value is false when the record has no timestamp; such
// records are dropped. A record whose payload cannot be read still yields
// an event, with both states nil, so that the episode scan can step over
// it without losing the last known state.
func Normalize(rec RawRecord) (Event, bool) {
	if rec.Timestamp.IsZero() {
		return Event{}, false
	}
	previous, next := DecodePayload(rec.Payload).States()
	return Event{
		Timestamp: rec.Timestamp.UTC(),
		Previous:  previous,
		New:       next,
	}, true
}

// NormalizeAll normalizes every record and returns the events together
// with the number of records dropped for lack of a timestamp.
func NormalizeAll(records []RawRecord) ([]Event, int) {
	events := make([]Event, 0, len(records))
	discarded := 0
	for _, rec := range records {
		ev, ok := Normalize(rec)
		if !ok {
			discarded++
			continue
		}
		events = append(events, ev)
	}
	return events, discarded
}
