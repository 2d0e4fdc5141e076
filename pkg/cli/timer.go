package cli

import (
	"fmt"

	"github.com/mo-tomi/nowtask5/pkg/model"
	"github.com/mo-tomi/nowtask5/pkg/util"
	"github.com/spf13/cobra"
)

func timerCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Track time spent on a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			running := s.app.Running()
			w := cmd.OutOrStdout()
			if len(running) == 0 {
				fmt.Fprintln(w, "No timer running.")
				return nil
			}
			now := s.app.Clock().Now()
			for _, t := range running {
				fmt.Fprintf(w, "%s  %s  %s\n", short(t.ID), util.FormatSeconds(t.DisplaySeconds(now)), t.Title)
			}
			return nil
		},
	}

	toggle := func(use, desc string, start bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: desc,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := o.open(cmd.Context())
				if err != nil {
					return err
				}
				defer s.Close()

				id, err := resolveID(s.app.Tasks(), args[0])
				if err != nil {
					return err
				}
				var t model.Task
				if start {
					t, err = s.app.StartTimer(id)
				} else {
					t, err = s.app.StopTimer(id)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", util.FormatSeconds(t.DisplaySeconds(s.app.Clock().Now())), t.Title)
				return nil
			},
		}
	}
	cmd.AddCommand(toggle("start", "Start the timer of a task", true))
	cmd.AddCommand(toggle("stop", "Stop the timer of a task", false))
	return cmd
}
