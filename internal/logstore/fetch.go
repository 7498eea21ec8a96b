package logstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"jobpost-engine/internal/transport"
)

type FetchErrorKind string

const (
	// KindInvalidShape means the store answered with something that is not
	// a record array. Fatal for the run: there is no list to partially
	// process.
	KindInvalidShape FetchErrorKind = "invalid_shape"
	// KindUnavailable means the store itself could not be reached.
	KindUnavailable FetchErrorKind = "unavailable"
)

type FetchError struct {
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("logstore: %s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher retrieves the full raw record set in a single authenticated call.
type Fetcher struct {
	client *transport.Client
	url    string
	log    zerolog.Logger
}

func NewFetcher(client *transport.Client, url string, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		url:    url,
		log:    log.With().Str("component", "logstore").Logger(),
	}
}

// FetchRawRecords validates only gross shape; per-record defensiveness
// belongs to the normalizer.
func (f *Fetcher) FetchRawRecords(ctx context.Context) ([]RawRecord, error) {
	body, err := f.client.Call(ctx, f.url, transport.Options{})
	if err != nil {
		return nil, &FetchError{Kind: KindUnavailable, Err: err}
	}

	var records []RawRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &FetchError{Kind: KindInvalidShape, Err: fmt.Errorf("expected an array of records: %w", err)}
	}

	f.log.Debug().Int("count", len(records)).Msg("fetched raw records")
	return records, nil
}
