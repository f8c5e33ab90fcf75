package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"nregadash/internal/core"
	"nregadash/internal/log"
)

// RecordFetcher retrieves raw feed records for one state and year.
type RecordFetcher interface {
	FetchYear(ctx context.Context, stateName, finYear string) ([]map[string]json.RawMessage, error)
}

// IngestStore persists districts and their monthly records.
type IngestStore interface {
	UpsertDistrict(ctx context.Context, name, stateName string) (int64, error)
	UpsertPerformance(ctx context.Context, districtID int64, rec core.PerformanceRecord) error
}

// RefreshPublisher announces that a year's data changed. Implemented by
// the AMQP client; nil-safe in the Ingestor so the pipeline runs
// without a broker.
type RefreshPublisher interface {
	PublishDataRefresh(ctx context.Context, finYear string, records int) error
}

// Ingestor pulls yearly datasets from the open data platform and
// upserts them into local storage.
type Ingestor struct {
	fetcher     RecordFetcher
	store       IngestStore
	publisher   RefreshPublisher
	stateName   string
	concurrency int
	logger      *log.Logger
}

type IngestorConfig struct {
	Fetcher     RecordFetcher
	Store       IngestStore
	Publisher   RefreshPublisher
	StateName   string
	Concurrency int
	Logger      *log.Logger
}

func NewIngestor(cfg IngestorConfig) *Ingestor {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentIngest)
	}
	return &Ingestor{
		fetcher:     cfg.Fetcher,
		store:       cfg.Store,
		publisher:   cfg.Publisher,
		stateName:   cfg.StateName,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run ingests every requested financial year, a bounded number of
// years in flight at once. A failed year aborts the run.
func (i *Ingestor) Run(ctx context.Context, finYears []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(i.concurrency)

	for _, finYear := range finYears {
		g.Go(func() error {
			return i.ingestYear(ctx, finYear)
		})
	}

	return g.Wait()
}

func (i *Ingestor) ingestYear(ctx context.Context, finYear string) error {
	i.logger.InfoContext(ctx, "ingesting year",
		log.FieldOperation, log.OpFetch,
		log.FieldState, i.stateName,
		log.FieldFinYear, finYear,
	)

	raws, err := i.fetcher.FetchYear(ctx, i.stateName, finYear)
	if err != nil {
		return fmt.Errorf("fetching year %s: %w", finYear, err)
	}

	upserted := 0
	skipped := 0
	for _, raw := range raws {
		rec, ok := MapRecord(raw, finYear)
		if !ok {
			skipped++
			continue
		}

		districtID, err := i.store.UpsertDistrict(ctx, rec.District, rec.StateName)
		if err != nil {
			return fmt.Errorf("upserting district %s: %w", rec.District, err)
		}
		if err := i.store.UpsertPerformance(ctx, districtID, rec); err != nil {
			return fmt.Errorf("upserting record %s/%s: %w", rec.District, rec.Month, err)
		}
		upserted++
	}

	i.logger.InfoContext(ctx, "year ingested",
		log.FieldOperation, log.OpUpsert,
		log.FieldFinYear, finYear,
		log.FieldRecordCount, upserted,
		"skipped", skipped,
	)

	if i.publisher != nil && upserted > 0 {
		if err := i.publisher.PublishDataRefresh(ctx, finYear, upserted); err != nil {
			// Data is durable either way; a missed refresh only delays
			// cache invalidation until TTL expiry.
			i.logger.WarnContext(ctx, "publishing refresh failed",
				log.FieldOperation, log.OpPublish,
				log.FieldFinYear, finYear,
				log.FieldError, err.Error(),
			)
		}
	}

	return nil
}
