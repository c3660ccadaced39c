package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"AstroSignal/internal/domain/models"
	"AstroSignal/internal/usecase"
	"AstroSignal/pkg/util"
)

func newAspectsCmd(root *rootOptions) *cobra.Command {
	var (
		req    usecase.SnapshotRequest
		bodies string
		orb    float64
	)
	cmd := &cobra.Command{
		Use:   "aspects",
		Short: "Show positions, aspects and sentiment at one instant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, eng, err := root.engine()
			if err != nil {
				return err
			}
			defer eng.Close()

			req.Bodies = util.SplitList(bodies)
			if cmd.Flags().Changed("orb") {
				req.Orb = &orb
			}
			p, err := eng.Builder.Snapshot(req)
			if err != nil {
				return err
			}
			snap, err := eng.Snapshot.GetSnapshot(cmd.Context(), p)
			if err != nil {
				return err
			}
			return printSnapshot(cmd.OutOrStdout(), snap)
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Time, "time", "", "instant (default now)")
	f.StringVar(&bodies, "bodies", "", "comma separated bodies")
	f.Float64Var(&orb, "orb", 0, "orb in degrees")
	f.StringVar(&req.Policy, "policy", "", "sentiment policy")
	f.StringVar(&req.Reference, "reference", "", "reference body for moon-quadrant")
	f.StringVar(&req.Timezone, "tz", "", "IANA time zone")
	f.StringVar(&req.Conjunction, "conjunction", "", "include or exclude")
	return cmd
}

func printSnapshot(w io.Writer, s *models.Snapshot) error {
	fmt.Fprintf(w, "%s  %s (%s)\n\n", s.Time.Format("2006-01-02 15:04 MST"), s.Sentiment, s.Policy)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BODY\tLONGITUDE\tSIGN\tNAKSHATRA\tLORD")
	for _, p := range s.Positions {
		fmt.Fprintf(tw, "%s\t%.2f\t%s\t%s\t%s\n", p.Body.Title(), p.Longitude, p.Sign, p.Nakshatra, p.NakshatraLord.Title())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	if len(s.Aspects) == 0 {
		fmt.Fprintln(w, "No aspects within orb")
	}
	for _, m := range s.Aspects {
		fmt.Fprintf(w, "%s -> %s\n", m, m.Aspect.Sentiment)
	}
	for body, reason := range s.Errors {
		fmt.Fprintf(w, "Unavailable: %s: %s\n", body, reason)
	}
	return nil
}
