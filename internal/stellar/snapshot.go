package stellar

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/panarchynow/initiation/internal/metrics"
	"github.com/panarchynow/initiation/internal/stellar/retry"
)

// Snapshot is the full manage-data entry set of one account: key to raw
// value bytes. It is a read-only baseline for reconciliation and is never
// mutated after fetch.
type Snapshot map[string][]byte

// AccountSource fetches the raw JSON account record for an address.
type AccountSource interface {
	AccountData(ctx context.Context, address string) ([]byte, error)
}

// HorizonAccountSource reads account records from a horizon server.
type HorizonAccountSource struct {
	client   *resty.Client
	strategy retry.Strategy
}

// NewHorizonAccountSource creates an account source for the given horizon
// URL. The retry strategy guards transient transport failures; pass a
// no-retry strategy to disable it.
func NewHorizonAccountSource(horizonURL string, strategy retry.Strategy) *HorizonAccountSource {
	c := resty.New().
		SetBaseURL(horizonURL).
		SetHeader("Accept", "application/json").
		SetTimeout(30 * time.Second)

	return &HorizonAccountSource{client: c, strategy: strategy}
}

// AccountData fetches the raw account record for the address.
func (s *HorizonAccountSource) AccountData(ctx context.Context, address string) ([]byte, error) {
	var body []byte
	err := s.strategy.Execute(ctx, func() error {
		resp, err := s.client.R().SetContext(ctx).Get("/accounts/" + address)
		if err != nil {
			return err
		}
		if resp.StatusCode() == http.StatusNotFound {
			// Not recoverable, do not burn retries on it.
			return fmt.Errorf("account %s not found", address)
		}
		if resp.IsError() {
			return fmt.Errorf("horizon returned %s for account %s", resp.Status(), address)
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// SnapshotReader fetches and decodes account data entries.
type SnapshotReader struct {
	source AccountSource
}

// NewSnapshotReader creates a reader backed by the given account source.
func NewSnapshotReader(source AccountSource) *SnapshotReader {
	return &SnapshotReader{source: source}
}

// FetchSnapshot returns the account's current data entries. A missing
// account or any transport failure yields an empty snapshot: new accounts
// legitimately have no entries and the reconciliation engine treats "no
// prior state" as a normal case.
func (r *SnapshotReader) FetchSnapshot(ctx context.Context, address string) Snapshot {
	start := time.Now()
	defer func() {
		metrics.SnapshotFetchDuration.Observe(time.Since(start).Seconds())
	}()

	raw, err := r.source.AccountData(ctx, address)
	if err != nil {
		slog.Info("No account data available, using empty snapshot",
			"account", address,
			"reason", err,
		)
		metrics.SnapshotFetchEmpty.Inc()
		return Snapshot{}
	}

	entries, err := parseAccountData(raw)
	if err != nil {
		slog.Warn("Unrecognized account payload shape, using empty snapshot",
			"account", address,
			"error", err,
		)
		metrics.SnapshotFetchEmpty.Inc()
		return Snapshot{}
	}

	return decodeSnapshot(entries)
}

// accountPayload covers the payload shapes horizon clients have produced
// across versions: a direct "data" mapping, the older "data_attr" name,
// or a list of {name, value} records.
type accountPayload struct {
	Data        map[string]string `json:"data"`
	DataAttr    map[string]string `json:"data_attr"`
	DataEntries []dataEntryRecord `json:"data_entries"`
}

type dataEntryRecord struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// parseAccountData normalizes the known account payload shapes into a flat
// key to base64-value mapping. An unrecognized shape yields an empty map,
// not an error for each individual field.
func parseAccountData(raw []byte) (map[string]string, error) {
	var payload accountPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode account payload: %w", err)
	}

	switch {
	case len(payload.Data) > 0:
		return payload.Data, nil
	case len(payload.DataAttr) > 0:
		return payload.DataAttr, nil
	case len(payload.DataEntries) > 0:
		entries := make(map[string]string, len(payload.DataEntries))
		for _, e := range payload.DataEntries {
			if e.Name != "" {
				entries[e.Name] = e.Value
			}
		}
		return entries, nil
	}

	return map[string]string{}, nil
}

// decodeSnapshot base64-decodes stored values. A single corrupt entry is
// logged and dropped; it must not abort the whole fetch.
func decodeSnapshot(entries map[string]string) Snapshot {
	snap := make(Snapshot, len(entries))
	for key, encoded := range entries {
		value, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			slog.Warn("Dropping undecodable data entry",
				"key", key,
				"error", err,
			)
			continue
		}
		snap[key] = value
	}
	return snap
}

// Refs returns the decoded string values stored under the collection's
// numbered keys.
func (s Snapshot) Refs(collection string) map[string]struct{} {
	refs := make(map[string]struct{})
	for key, value := range s {
		if IsCollectionKey(key, collection) {
			refs[string(value)] = struct{}{}
		}
	}
	return refs
}
