package logstore

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ObjectID accepts the two identifier encodings the log store is known to
// emit: a plain string, or Mongo extended JSON `{"$oid": "..."}`. Any other
// shape decodes to the empty value and is caught by RawRecord.Validate, so a
// bad identifier rejects one record instead of the whole batch.
type ObjectID struct {
	Value string
}

func (o *ObjectID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		o.Value = s
		return nil
	}
	var wrapped struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(b, &wrapped); err == nil {
		o.Value = wrapped.OID
		return nil
	}
	o.Value = ""
	return nil
}

func (o ObjectID) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}

// FlexTime accepts an ISO-8601 string, `{"$date": string|epoch-millis}`, or a
// bare epoch-millis number. Unparseable values leave Set false; the
// normalizer substitutes "now" so downstream duration math never sees an
// invalid date.
type FlexTime struct {
	Time time.Time
	Set  bool
}

func (f *FlexTime) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		return nil
	}

	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		f.Time, f.Set = parseTimeString(str)
		return nil
	}

	var millis int64
	if err := json.Unmarshal(b, &millis); err == nil {
		f.Time = time.UnixMilli(millis).UTC()
		f.Set = true
		return nil
	}

	var wrapped struct {
		Date json.RawMessage `json:"$date"`
	}
	if err := json.Unmarshal(b, &wrapped); err == nil && len(wrapped.Date) > 0 {
		var inner FlexTime
		if err := inner.UnmarshalJSON(wrapped.Date); err == nil {
			*f = inner
		}
		return nil
	}
	return nil
}

func parseTimeString(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// RawRecord is one job-event entry as delivered by the log store. It is
// ephemeral: created per pipeline run, never persisted.
type RawRecord struct {
	ID           ObjectID
	URL          string
	StartTime    FlexTime
	FinishedTime FlexTime
}

func (r *RawRecord) UnmarshalJSON(b []byte) error {
	// start_time is a legacy alias some store versions still emit.
	var aux struct {
		ID             ObjectID `json:"_id"`
		URL            string   `json:"url"`
		StartTime      FlexTime `json:"startTime"`
		StartTimeSnake FlexTime `json:"start_time"`
		FinishedTime   FlexTime `json:"finishedTime"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.ID = aux.ID
	r.URL = aux.URL
	r.StartTime = aux.StartTime
	if !r.StartTime.Set && aux.StartTimeSnake.Set {
		r.StartTime = aux.StartTimeSnake
	}
	r.FinishedTime = aux.FinishedTime
	return nil
}

// Validate enforces the required-field invariant: a record without an
// identifier and URL is rejected before enrichment. Timestamps are never a
// reason to reject.
func (r RawRecord) Validate() error {
	if strings.TrimSpace(r.ID.Value) == "" || strings.TrimSpace(r.URL) == "" {
		return fmt.Errorf("raw record missing required fields (_id=%q url=%q)", r.ID.Value, r.URL)
	}
	return nil
}
