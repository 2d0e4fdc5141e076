package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mo-tomi/nowtask5/pkg/gauge"
	"github.com/mo-tomi/nowtask5/pkg/util"
	"github.com/spf13/cobra"
)

func daysToDuration(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}

const barWidth = 48

// bar draws elapsed (#) and scheduled (=) time over a 24-hour track.
func bar(g gauge.Result) string {
	cell := func(minutes int) int {
		n := minutes * barWidth / gauge.MinutesPerDay
		if n < 0 {
			return 0
		}
		return n
	}
	elapsed := cell(g.CurrentMinutes)
	scheduled := cell(g.ScheduledMinutes)
	if elapsed+scheduled > barWidth {
		scheduled = barWidth - elapsed
	}
	return "[" + strings.Repeat("#", elapsed) + strings.Repeat("=", scheduled) + strings.Repeat(".", barWidth-elapsed-scheduled) + "]"
}

func writeGauge(w io.Writer, g gauge.Result) {
	day := g.Date
	if g.IsToday {
		day += " (today)"
	}
	fmt.Fprintf(w, "%s  %s  %s\n", day, bar(g), g.Label)
	fmt.Fprintf(w, "  elapsed %.1f%%  scheduled %s (%.1f%%)", g.ElapsedPercent, gauge.FormatMinutes(g.ScheduledMinutes), g.ScheduledPercent)
	if g.CarryIn > 0 {
		fmt.Fprintf(w, "  carried in %s", gauge.FormatMinutes(g.CarryIn))
	}
	fmt.Fprintln(w)
}

func gaugeCmd(o *options) *cobra.Command {
	var (
		date string
		days int
	)
	cmd := &cobra.Command{
		Use:   "gauge",
		Short: "Show elapsed, scheduled and free time of a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			var day *time.Time
			if date != "" {
				d, err := parseDay(date, s.app.Clock().Now())
				if err != nil {
					return err
				}
				day = &d
			}
			w := cmd.OutOrStdout()
			if days > 1 {
				for _, g := range s.app.Week(day, days) {
					writeGauge(w, g)
				}
				return nil
			}
			writeGauge(w, s.app.Gauge(day))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to show: YYYY-MM-DD, today or tomorrow")
	cmd.Flags().IntVarP(&days, "days", "n", 1, "number of consecutive days")
	return cmd
}

func calendarCmd(o *options) *cobra.Command {
	var year, month int
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show a month with task counts per day",
		RunE: func(cmd *cobra.Command, args []string) error {
			if month < 0 || month > 12 {
				return fmt.Errorf("month %d out of range", month)
			}
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			m := s.app.Calendar(year, time.Month(month))
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s    < %s | %s >\n", m.Title, m.Prev, m.Next)
			fmt.Fprintln(w, " Sun  Mon  Tue  Wed  Thu  Fri  Sat")
			col := 0
			for ; col < m.Leading; col++ {
				fmt.Fprint(w, "     ")
			}
			for _, d := range m.Days {
				mark := " "
				switch {
				case d.IsToday:
					mark = "*"
				case d.Incomplete > 0:
					mark = "+"
				case d.Total > 0:
					mark = "."
				}
				fmt.Fprintf(w, " %2d%s ", d.Day, mark)
				col++
				if col%7 == 0 {
					fmt.Fprintln(w)
				}
			}
			if col%7 != 0 {
				fmt.Fprintln(w)
			}
			for _, d := range m.Days {
				if d.Total > 0 {
					fmt.Fprintf(w, "%s  %d tasks, %d done\n", d.Date, d.Total, d.Completed)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "year (default current)")
	cmd.Flags().IntVar(&month, "month", 0, "month 1-12 (default current)")
	return cmd
}

func statsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show time ranking and free time averages",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err := s.app.RecordFreeTime(); err != nil {
				return err
			}
			rep := s.app.Analytics()
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Most time spent:")
			if len(rep.Ranking) == 0 {
				fmt.Fprintln(w, "  no completed tasks with tracked time")
			}
			for i, r := range rep.Ranking {
				fmt.Fprintf(w, "  %d. %s  %s\n", i+1, r.Title, util.FormatSeconds(r.Seconds))
			}
			ft := rep.FreeTime
			fmt.Fprintln(w, "Free time:")
			fmt.Fprintf(w, "  today       %s\n", gauge.FormatMinutes(ft.Today))
			fmt.Fprintf(w, "  7-day avg   %s\n", gauge.FormatMinutes(ft.Avg7))
			fmt.Fprintf(w, "  30-day avg  %s\n", gauge.FormatMinutes(ft.Avg30))
			fmt.Fprintf(w, "  all time    %s (%d days)\n", gauge.FormatMinutes(ft.AvgAll), ft.Recorded)
			return nil
		},
	}
}
