package cli

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/okian/stride/internal/domain/model"
)

const podiumSize = 3

var (
	heading = color.New(color.FgCyan, color.Bold)
	podium  = color.New(color.FgYellow)
	muted   = color.New(color.Faint)
)

func rankingsCmd(e *env) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "rankings",
		Short: "Print the best-time leaderboards",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			lb, err := svc.Leaderboards(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range svc.Categories() {
				if category != "" && model.NormalizeCategory(category) != c {
					continue
				}
				heading.Fprintf(out, "%s\n", c.Label())
				rows := lb[c]
				if len(rows) == 0 {
					muted.Fprintln(out, "  no results yet")
					fmt.Fprintln(out)
					continue
				}
				var buf bytes.Buffer
				w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "RANK\tATHLETE\tGRADE\tBEST\tMEET")
				for _, r := range rows {
					fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", r.Rank, r.Athlete.Name, r.Athlete.Grade, r.BestTime, r.MeetName)
				}
				_ = w.Flush()
				// colour after tabwriter: escape bytes count toward cell width
				for i, line := range strings.SplitAfter(buf.String(), "\n") {
					if i >= 1 && i <= podiumSize && line != "" {
						podium.Fprint(out, line)
						continue
					}
					fmt.Fprint(out, line)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only print this category (e.g. M, F)")
	return cmd
}

func meetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "meet <id>",
		Short: "Print one meet's results by category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			meet, tables, err := svc.MeetDetail(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			heading.Fprintf(out, "%s  %s\n", meet.Name, meet.Date)
			if meet.Location != "" {
				muted.Fprintln(out, meet.Location)
			}
			fmt.Fprintln(out)
			if tables.Empty() {
				fmt.Fprintln(out, "No results recorded for this meet.")
				return nil
			}
			for _, c := range svc.Categories() {
				rows := tables[c]
				if len(rows) == 0 {
					continue
				}
				heading.Fprintf(out, "%s\n", c.Label())
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "PLACE\tATHLETE\tGRADE\tTIME")
				for _, r := range rows {
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", placeLabel(r.Place), r.Athlete.Name, r.Athlete.Grade, r.Time)
				}
				_ = w.Flush()
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func historyCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "history <athlete-id>",
		Short: "Print an athlete's results and personal best",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			svc, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			h, err := svc.AthleteHistory(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			heading.Fprintf(out, "%s (%s, grade %d)\n", h.Athlete.Name, h.Athlete.Category.Label(), h.Athlete.Grade)
			if h.HasBest {
				fmt.Fprintf(out, "Personal best: %s\n", h.Best.Time)
			}
			fmt.Fprintln(out)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tMEET\tTIME\tPLACE\t")
			for _, r := range h.Rows {
				mark := ""
				if r.PersonalBest {
					mark = "PB"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.MeetDate, r.MeetName, r.Time, placeLabel(r.Place), mark)
			}
			return w.Flush()
		},
	}
}

func statsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print roster counts and data anomalies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := e.open(cmd.Context())
			if err != nil {
				return err
			}
			s, err := svc.GetStats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "athletes\t%d\n", s.Athletes)
			fmt.Fprintf(w, "meets\t%d\n", s.Meets)
			fmt.Fprintf(w, "results\t%d\n", s.Results)
			fmt.Fprintf(w, "coaches\t%d\n", s.Coaches)
			fmt.Fprintf(w, "unparseable times\t%d\n", s.Anomalies.UnparseableTimes)
			fmt.Fprintf(w, "unresolved athletes\t%d\n", s.Anomalies.UnresolvedAthletes)
			fmt.Fprintf(w, "unresolved meets\t%d\n", s.Anomalies.UnresolvedMeets)
			fmt.Fprintf(w, "uncategorized\t%d\n", s.Anomalies.Uncategorized)
			return w.Flush()
		},
	}
}

func placeLabel(p int) string {
	if p <= 0 {
		return "-"
	}
	return strconv.Itoa(p)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
