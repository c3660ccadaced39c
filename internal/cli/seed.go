package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"AstroSignal/internal/di"
	"AstroSignal/internal/domain/models"
	domrepo "AstroSignal/internal/domain/repository"
	"AstroSignal/internal/repository"
	"AstroSignal/internal/services/ephemeris"
	"AstroSignal/pkg/util"
)

// newSeedCmd fills the ClickHouse longitude table from the analytic model.
func newSeedCmd(root *rootOptions) *cobra.Command {
	var (
		start, end, bodies string
		step               time.Duration
		batch              int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Precompute longitudes into the ClickHouse ephemeris table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			cfg.Ephemeris.Backend = "clickhouse"
			cfg.Ephemeris.ClickHouse.CreateSchema = true
			if err := cfg.Validate(); err != nil {
				return err
			}
			ch, err := di.ProvideClickHouseClient(cfg)
			if err != nil {
				return err
			}
			defer ch.Close()

			from, ok := util.ParseTimeIn(start, cfg.Location())
			if !ok {
				return fmt.Errorf("%w: start %q", models.ErrMalformedTimestamp, start)
			}
			to, ok := util.ParseTimeIn(end, cfg.Location())
			if !ok {
				return fmt.Errorf("%w: end %q", models.ErrMalformedTimestamp, end)
			}
			if step <= 0 {
				return fmt.Errorf("%w: step must be positive", models.ErrInvalidParams)
			}
			bs := models.AllBodies()
			if names := util.SplitList(bodies); len(names) > 0 {
				if bs, err = models.ParseBodies(names); err != nil {
					return err
				}
			}

			store := repository.NewCHEphemerisStore(ch, cfg.Ephemeris.ClickHouse.Table, cfg.Ephemeris.ClickHouse.Tolerance)
			rows, err := seedRows(cmd.Context(), ephemeris.NewAnalytic(), bs, from, to, step, batch, store.StoreBatch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d rows into %s\n", rows, cfg.Ephemeris.ClickHouse.Table)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&start, "start", "", "first instant")
	f.StringVar(&end, "end", "", "last instant, inclusive")
	f.DurationVar(&step, "step", time.Hour, "row spacing")
	f.StringVar(&bodies, "bodies", "", "comma separated bodies (default all)")
	f.IntVar(&batch, "batch", 10_000, "rows per insert call")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

type namedProvider interface {
	domrepo.EphemerisProvider
	Name() string
}

// seedRows evaluates p on the grid from..to and hands rows to store in
// batches. Stored longitudes are tropical; the sidereal shift is applied on
// read.
func seedRows(
	ctx context.Context,
	p namedProvider,
	bodies []models.Body,
	from, to time.Time,
	step time.Duration,
	batch int,
	store func(context.Context, []models.EphemerisRow) error,
) (int, error) {
	if batch <= 0 {
		batch = 10_000
	}
	buf := make([]models.EphemerisRow, 0, batch)
	total := 0
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if err := store(ctx, buf); err != nil {
			return err
		}
		total += len(buf)
		buf = buf[:0]
		return nil
	}
	for t := from.UTC(); !t.After(to); t = t.Add(step) {
		for _, b := range bodies {
			lon, err := p.Longitude(ctx, t, b)
			if err != nil {
				return total, fmt.Errorf("%s at %s: %w", b, t.Format(time.RFC3339), err)
			}
			buf = append(buf, models.EphemerisRow{Body: b, Time: t, Longitude: lon, Source: p.Name()})
			if len(buf) == batch {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
	return total, flush()
}
