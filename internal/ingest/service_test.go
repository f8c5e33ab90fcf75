package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"nregadash/internal/core"
)

type fakeFetcher struct {
	byYear map[string][]map[string]json.RawMessage
	err    error
}

func (f *fakeFetcher) FetchYear(ctx context.Context, stateName, finYear string) ([]map[string]json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byYear[finYear], nil
}

type fakeIngestStore struct {
	mu          sync.Mutex
	districtIDs map[string]int64
	records     []core.PerformanceRecord
	upsertErr   error
}

func (s *fakeIngestStore) UpsertDistrict(ctx context.Context, name, stateName string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.districtIDs == nil {
		s.districtIDs = make(map[string]int64)
	}
	if id, ok := s.districtIDs[name]; ok {
		return id, nil
	}
	id := int64(len(s.districtIDs) + 1)
	s.districtIDs[name] = id
	return id, nil
}

func (s *fakeIngestStore) UpsertPerformance(ctx context.Context, districtID int64, rec core.PerformanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.records = append(s.records, rec)
	return nil
}

type publishedRefresh struct {
	finYear string
	records int
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedRefresh
	err      error
}

func (p *fakePublisher) PublishDataRefresh(ctx context.Context, finYear string, records int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, publishedRefresh{finYear: finYear, records: records})
	return nil
}

func TestIngestor_Run(t *testing.T) {
	fetcher := &fakeFetcher{byYear: map[string][]map[string]json.RawMessage{
		"2023-2024": {
			rawRecord(map[string]any{"district_name": "Alpha", "state_name": "X", "month": "April", "Total_Exp": "100"}),
			rawRecord(map[string]any{"district_name": "Alpha", "state_name": "X", "month": "May", "Total_Exp": "200"}),
			rawRecord(map[string]any{"state_name": "X", "month": "May"}), // no district, skipped
		},
		"2022-2023": {
			rawRecord(map[string]any{"district_name": "Beta", "state_name": "X", "month": "June", "Total_Exp": "50"}),
		},
	}}
	store := &fakeIngestStore{}
	publisher := &fakePublisher{}

	ing := NewIngestor(IngestorConfig{
		Fetcher:     fetcher,
		Store:       store,
		Publisher:   publisher,
		StateName:   "X",
		Concurrency: 2,
	})

	if err := ing.Run(context.Background(), []string{"2023-2024", "2022-2023"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(store.records) != 3 {
		t.Errorf("stored %d records, want 3 (one skipped)", len(store.records))
	}
	if len(store.districtIDs) != 2 {
		t.Errorf("stored %d districts, want 2", len(store.districtIDs))
	}
	if len(publisher.messages) != 2 {
		t.Fatalf("published %d refresh messages, want 2", len(publisher.messages))
	}

	counts := make(map[string]int)
	for _, msg := range publisher.messages {
		counts[msg.finYear] = msg.records
	}
	if counts["2023-2024"] != 2 || counts["2022-2023"] != 1 {
		t.Errorf("refresh record counts = %v, want 2023-2024:2 2022-2023:1", counts)
	}
}

func TestIngestor_FetchErrorAbortsRun(t *testing.T) {
	fetchErr := errors.New("upstream down")
	ing := NewIngestor(IngestorConfig{
		Fetcher:   &fakeFetcher{err: fetchErr},
		Store:     &fakeIngestStore{},
		StateName: "X",
	})

	err := ing.Run(context.Background(), []string{"2023-2024"})
	if !errors.Is(err, fetchErr) {
		t.Errorf("Run() error = %v, want wrapped %v", err, fetchErr)
	}
}

func TestIngestor_StoreErrorAbortsRun(t *testing.T) {
	storeErr := errors.New("disk full")
	fetcher := &fakeFetcher{byYear: map[string][]map[string]json.RawMessage{
		"2023-2024": {rawRecord(map[string]any{"district_name": "Alpha", "month": "April"})},
	}}
	ing := NewIngestor(IngestorConfig{
		Fetcher:   fetcher,
		Store:     &fakeIngestStore{upsertErr: storeErr},
		StateName: "X",
	})

	err := ing.Run(context.Background(), []string{"2023-2024"})
	if !errors.Is(err, storeErr) {
		t.Errorf("Run() error = %v, want wrapped %v", err, storeErr)
	}
}

func TestIngestor_NilPublisherAndEmptyYear(t *testing.T) {
	fetcher := &fakeFetcher{byYear: map[string][]map[string]json.RawMessage{}}
	ing := NewIngestor(IngestorConfig{
		Fetcher:   fetcher,
		Store:     &fakeIngestStore{},
		StateName: "X",
	})

	if err := ing.Run(context.Background(), []string{"2023-2024"}); err != nil {
		t.Errorf("Run() error = %v, want nil for empty year without publisher", err)
	}
}

func TestIngestor_PublishFailureIsNotFatal(t *testing.T) {
	fetcher := &fakeFetcher{byYear: map[string][]map[string]json.RawMessage{
		"2023-2024": {rawRecord(map[string]any{"district_name": "Alpha", "month": "April"})},
	}}
	publisher := &fakePublisher{err: errors.New("broker gone")}
	ing := NewIngestor(IngestorConfig{
		Fetcher:   fetcher,
		Store:     &fakeIngestStore{},
		Publisher: publisher,
		StateName: "X",
	})

	if err := ing.Run(context.Background(), []string{"2023-2024"}); err != nil {
		t.Errorf("Run() error = %v, want nil when only publish fails", err)
	}
}
