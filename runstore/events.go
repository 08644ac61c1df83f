package runstore

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/myopic/ecosim/ecoerr"
)

// Event is one line of streams/events.ndjson: a tick-scoped structured
// record, kind-tagged so readers can filter without parsing the payload.
type Event struct {
	Tick    int         `json:"tick"`
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventWriter appends newline-delimited JSON events to streams/events.ndjson.
type EventWriter struct {
	f *os.File
	w *bufio.Writer
}

// OpenEventWriter creates (or truncates) the run's event log for writing.
func OpenEventWriter(l Layout) (*EventWriter, error) {
	const op = "runstore.OpenEventWriter"
	f, err := os.Create(l.Events())
	if err != nil {
		return nil, ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	return &EventWriter{f: f, w: bufio.NewWriter(f)}, nil
}

// Write appends one event as a single ndjson line.
func (ew *EventWriter) Write(e Event) error {
	const op = "runstore.EventWriter.Write"
	data, err := json.Marshal(e)
	if err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	if _, err := ew.w.Write(data); err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	if err := ew.w.WriteByte('\n'); err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	return nil
}

// Close flushes buffered output and closes the underlying file.
func (ew *EventWriter) Close() error {
	const op = "runstore.EventWriter.Close"
	if err := ew.w.Flush(); err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	if err := ew.f.Close(); err != nil {
		return ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	return nil
}

// ReadEvents loads every event from a run's events.ndjson, in file order.
func ReadEvents(l Layout) ([]Event, error) {
	const op = "runstore.ReadEvents"
	f, err := os.Open(l.Events())
	if err != nil {
		return nil, ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	defer f.Close()

	var events []Event
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, ecoerr.Wrap(ecoerr.IOFailure, op, err)
		}
		events = append(events, e)
	}
	if err := sc.Err(); err != nil {
		return nil, ecoerr.Wrap(ecoerr.IOFailure, op, err)
	}
	return events, nil
}
