package cli

import (
	"fmt"

	"github.com/mo-tomi/nowtask5/pkg/model"
	"github.com/mo-tomi/nowtask5/pkg/tasks"
	"github.com/spf13/cobra"
)

func routineCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routine",
		Short: "Show daily routines",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			routines := s.app.Routines()
			w := cmd.OutOrStdout()
			for _, typ := range model.RoutineTypes {
				r := routines[typ]
				state := "off"
				if r.Enabled {
					state = "on"
				}
				fmt.Fprintf(w, "%-10s %-3s  %d min\n", typ, state, r.Duration)
			}
			return nil
		},
	}

	var (
		enabled  bool
		duration int
	)
	set := &cobra.Command{
		Use:   "set <type>",
		Short: "Enable, disable or resize a routine",
		Long:  "Routine types: breakfast, lunch, dinner, brush, sleep.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ := model.RoutineType(args[0])
			if !typ.Valid() {
				return fmt.Errorf("%w: unknown routine %q", tasks.ErrInvalid, args[0])
			}
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			routines := s.app.Routines()
			r := routines[typ]
			r.Enabled = enabled
			if cmd.Flags().Changed("duration") {
				r.Duration = duration
			}
			routines[typ] = r
			n, err := s.app.SetRoutines(routines)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s", typ)
			if n > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), ", added %d task for today", n)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	set.Flags().BoolVar(&enabled, "enabled", true, "create the routine task every day, --enabled=false to turn it off")
	set.Flags().IntVar(&duration, "duration", 0, "planned minutes")
	cmd.AddCommand(set)
	return cmd
}
