package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"AstroSignal/internal/domain/models"
	domrepo "AstroSignal/internal/domain/repository"
	domsvc "AstroSignal/internal/domain/service"
	"AstroSignal/internal/services/aspects"
)

// SnapshotUseCase evaluates aspects at a single instant.
type SnapshotUseCase struct {
	provider domrepo.EphemerisProvider
	timeout  time.Duration
}

func NewSnapshotUseCase(provider domrepo.EphemerisProvider) *SnapshotUseCase {
	return &SnapshotUseCase{provider: provider, timeout: 10 * time.Second}
}

type SnapshotParams struct {
	Time        time.Time
	Bodies      []models.Body
	Catalog     models.AspectCatalog
	Orb         float64
	Policy      domsvc.SentimentPolicy
	Conjunction aspects.ConjunctionMode
}

// GetSnapshot queries every body concurrently. Bodies whose lookup fails are
// reported in Errors and left out of detection; it fails only when none succeed
// or when a lookup reports a malformed timestamp.
func (uc *SnapshotUseCase) GetSnapshot(ctx context.Context, p SnapshotParams) (*models.Snapshot, error) {
	if p.Time.IsZero() {
		return nil, fmt.Errorf("%w: time required", models.ErrMalformedTimestamp)
	}
	if err := aspects.ValidateOrb(p.Orb); err != nil {
		return nil, err
	}
	if err := p.Catalog.Validate(); err != nil {
		return nil, err
	}
	if p.Policy == nil {
		return nil, fmt.Errorf("%w: sentiment policy required", models.ErrInvalidParams)
	}
	if len(p.Bodies) == 0 {
		return nil, fmt.Errorf("%w: at least one body required", models.ErrInvalidParams)
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	type item struct {
		lon float64
		err error
	}
	items := make([]item, len(p.Bodies))
	var wg sync.WaitGroup
	for i, b := range p.Bodies {
		wg.Add(1)
		go func(i int, b models.Body) {
			defer wg.Done()
			lon, err := uc.provider.Longitude(ctx, p.Time, b)
			items[i] = item{lon: lon, err: err}
		}(i, b)
	}
	wg.Wait()

	res := &models.Snapshot{Time: p.Time, Policy: p.Policy.Name(), Errors: map[string]string{}}
	lons := make(map[models.Body]float64, len(p.Bodies))
	var firstErr error
	for i, it := range items {
		b := p.Bodies[i]
		if it.err != nil {
			if errors.Is(it.err, models.ErrMalformedTimestamp) {
				return nil, fmt.Errorf("snapshot body %s: %w", b, it.err)
			}
			res.Errors[string(b)] = it.err.Error()
			if firstErr == nil {
				firstErr = it.err
			}
			continue
		}
		lons[b] = aspects.Normalize(it.lon)
	}
	if len(lons) == 0 {
		return nil, fmt.Errorf("snapshot at %s: %w", p.Time.Format(time.RFC3339), firstErr)
	}

	for _, b := range p.Bodies {
		if lon, ok := lons[b]; ok {
			res.Positions = append(res.Positions, models.PositionOf(b, lon))
		}
	}
	res.Aspects = aspects.DetectAspects(lons, p.Catalog, p.Orb, aspects.WithConjunction(p.Conjunction), aspects.WithTime(p.Time))
	res.Sentiment = p.Policy.Resolve(models.Sample{Time: p.Time, Longitudes: lons, Matches: res.Aspects})
	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}
