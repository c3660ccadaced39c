package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"AstroSignal/internal/domain/models"
	"AstroSignal/internal/usecase"
	"AstroSignal/pkg/util"
)

type timelineOptions struct {
	req    usecase.TimelineRequest
	bodies string
	orb    float64
	asJSON bool
}

func newTimelineCmd(root *rootOptions) *cobra.Command {
	o := &timelineOptions{}
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Print sentiment change points over a window",
		Example: `  astrosignal timeline --date 2024-03-01 --tz Asia/Kolkata
  astrosignal timeline --start 2024-03-01T09:15 --end 2024-03-01T15:30 --policy moon-quadrant --symbol NIFTY`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, eng, err := root.engine()
			if err != nil {
				return err
			}
			defer eng.Close()

			o.req.Bodies = util.SplitList(o.bodies)
			if cmd.Flags().Changed("orb") {
				o.req.Orb = &o.orb
			}
			p, loc, err := eng.Builder.Timeline(o.req)
			if err != nil {
				return err
			}
			tl, err := eng.Timeline.ComputeTimeline(cmd.Context(), p)
			if err != nil {
				return err
			}
			tl = usecase.Localize(tl, loc)
			if o.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(tl)
			}
			return printTimeline(cmd.OutOrStdout(), o.req.Symbol, p.Reference, loc, tl)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.req.Symbol, "symbol", "", "label printed above the table")
	f.StringVar(&o.req.Date, "date", "", "whole local day, YYYY-MM-DD (default today)")
	f.StringVar(&o.req.Start, "start", "", "window start")
	f.StringVar(&o.req.End, "end", "", "window end, inclusive")
	f.StringVar(&o.req.Step, "step", "", "sampling step, e.g. 5m")
	f.Float64Var(&o.orb, "orb", 0, "orb in degrees")
	f.StringVar(&o.bodies, "bodies", "", "comma separated bodies")
	f.StringVar(&o.req.Policy, "policy", "", "bearish-first, bullish-first, trigger-bodies, moon-quadrant")
	f.StringVar(&o.req.Key, "key", "", "change key: sentiment, nakshatra, sign")
	f.StringVar(&o.req.Reference, "reference", "", "body shown in the degree column")
	f.StringVar(&o.req.Timezone, "tz", "", "IANA time zone for input and output")
	f.StringVar(&o.req.Conjunction, "conjunction", "", "include or exclude")
	f.IntVar(&o.req.Workers, "workers", 0, "parallel sampling workers")
	f.BoolVar(&o.asJSON, "json", false, "print the full timeline as JSON")
	return cmd
}

func printTimeline(w io.Writer, symbol string, ref models.Body, loc *time.Location, tl *models.Timeline) error {
	if symbol != "" {
		fmt.Fprintf(w, "Symbol: %s\n", symbol)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "TIME\t%s DEGREE\tSIGNAL\tSIGN\tNAKSHATRA\n", ref.Title())
	for _, r := range usecase.TimelineTable(tl, ref, loc) {
		fmt.Fprintf(tw, "%s\t%.2f\t%s\t%s\t%s\n", r.Time.Format("2006-01-02 15:04"), r.Degree, r.Signal, r.Sign, r.Nakshatra)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Best long (Bullish) start:  %s\n", startOrDash(tl.Summary.FirstBullish))
	fmt.Fprintf(w, "Best short (Bearish) start: %s\n", startOrDash(tl.Summary.FirstBearish))
	fmt.Fprintf(w, "Samples: %d  Events: %d  Skipped: %d\n", tl.Evaluated, len(tl.Events), len(tl.Skipped))
	if tl.Cancelled {
		fmt.Fprintln(w, "Cancelled: results cover the completed prefix only")
	}
	for _, warn := range tl.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warn)
	}
	return nil
}

func startOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
