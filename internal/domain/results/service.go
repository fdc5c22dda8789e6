package results

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Observer receives dataset lifecycle events. The metrics collector
// implements it; nil disables reporting.
type Observer interface {
	DatasetLoaded(count int, err error)
	ViewDerived()
}

// Service owns the current dataset snapshot. A snapshot is never mutated
// after it is published, so readers derive views without holding the lock.
type Service struct {
	source   Source
	observer Observer
	now      func() time.Time

	mu      sync.RWMutex
	current Dataset
	// gen counts published snapshots. A load whose fetch started before the
	// latest publish drops its result.
	gen uint64
}

func NewService(source Source, observer Observer) *Service {
	return &Service{
		source:   source,
		observer: observer,
		now:      time.Now,
		current:  Dataset{Status: StatusLoading, Source: source.Describe()},
	}
}

// Load fetches the dataset once, without retries. Failing before any
// successful load leaves the service in the failed state, which callers can
// tell apart from a loaded but empty dataset.
func (s *Service) Load(ctx context.Context) error {
	s.mu.RLock()
	startGen := s.gen
	s.mu.RUnlock()

	records, err := s.source.Load(ctx)
	if err != nil {
		s.mu.Lock()
		switch {
		case s.gen != startGen:
			// a newer snapshot landed while fetching; its status stands
		case s.current.Status == StatusLoaded:
			// a failed reload keeps serving the last good snapshot
			s.current.Error = err.Error()
		default:
			s.current = Dataset{Status: StatusFailed, Source: s.source.Describe(), Error: err.Error()}
		}
		s.mu.Unlock()
		s.report(0, err)
		slog.Warn("dataset load failed", "source", s.source.Describe(), "err", err)
		return fmt.Errorf("load dataset: %w", err)
	}
	if !s.publishRecords(records, s.source.Describe(), startGen) {
		slog.Info("dataset load superseded", "source", s.source.Describe(), "count", len(records))
		return nil
	}
	s.report(len(records), nil)
	slog.Info("dataset loaded", "source", s.source.Describe(), "count", len(records))
	return nil
}

// Import replaces the dataset with uploaded CSV. Sources that can persist the
// records do so before the new snapshot is published. An import always wins
// over a load still in flight.
func (s *Service) Import(ctx context.Context, r io.Reader) (Dataset, error) {
	records, err := Parse(r)
	if err != nil {
		return Dataset{}, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	if replacer, ok := s.source.(Replacer); ok {
		if err := replacer.Replace(ctx, records); err != nil {
			return Dataset{}, fmt.Errorf("persist import: %w", err)
		}
	}
	ds := s.publish(records, "import")
	s.report(len(records), nil)
	slog.Info("dataset imported", "count", len(records))
	return ds, nil
}

func (s *Service) Snapshot() Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Records returns the loaded dataset or the reason it is not available.
func (s *Service) Records() ([]Record, error) {
	ds := s.Snapshot()
	switch ds.Status {
	case StatusLoaded:
		return ds.Records, nil
	case StatusFailed:
		return nil, fmt.Errorf("%w: %s", ErrDatasetUnavailable, ds.Error)
	default:
		return nil, ErrDatasetLoading
	}
}

func (s *Service) View(sel Selection) (DerivedView, error) {
	records, err := s.Records()
	if err != nil {
		return DerivedView{}, err
	}
	view := Derive(records, sel)
	if s.observer != nil {
		s.observer.ViewDerived()
	}
	return view, nil
}

// publishRecords swaps in records unless another snapshot was published
// after expectGen was read.
func (s *Service) publishRecords(records []Record, source string, expectGen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != expectGen {
		return false
	}
	s.swapLocked(records, source)
	return true
}

func (s *Service) publish(records []Record, source string) Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.swapLocked(records, source)
	return s.current
}

func (s *Service) swapLocked(records []Record, source string) {
	loadedAt := s.now().UTC()
	if records == nil {
		records = []Record{}
	}
	s.current = Dataset{
		Status:   StatusLoaded,
		Records:  records,
		Count:    len(records),
		Source:   source,
		LoadedAt: &loadedAt,
	}
	s.gen++
}

func (s *Service) report(count int, err error) {
	if s.observer != nil {
		s.observer.DatasetLoaded(count, err)
	}
}
