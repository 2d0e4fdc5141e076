package cli

import (
	"fmt"
	"strings"

	"github.com/mo-tomi/nowtask5/pkg/model"
	"github.com/mo-tomi/nowtask5/pkg/tasks"
	"github.com/spf13/cobra"
)

func addCmd(o *options) *cobra.Command {
	var (
		due, start, end, memo, parent, priority string
		duration                                int
		urgent                                  bool
	)
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a task",
		Long: `Add a task. The title is remembered in the entry history.

Examples:
  nowtask add Buy milk --due today
  nowtask add Standup --due tomorrow --start 10:00 --end 10:15
  nowtask add Pack --parent 3f2a`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			d := tasks.Draft{
				Title:     strings.Join(args, " "),
				Memo:      memo,
				StartTime: start,
				EndTime:   end,
				Urgent:    urgent,
				Priority:  model.Priority(priority),
			}
			if due != "" {
				day, err := parseDay(due, s.app.Clock().Now())
				if err != nil {
					return err
				}
				d.DueDate = &day
			}
			if cmd.Flags().Changed("duration") {
				d.Duration = &duration
			}
			if parent != "" {
				if d.ParentID, err = resolveID(s.app.Tasks(), parent); err != nil {
					return err
				}
			}

			t, err := s.app.QuickAdd(d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", short(t.ID), t.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&due, "due", "d", "", "due day: YYYY-MM-DD, today or tomorrow")
	cmd.Flags().StringVar(&start, "start", "", "start time HH:MM")
	cmd.Flags().StringVar(&end, "end", "", "end time HH:MM")
	cmd.Flags().IntVar(&duration, "duration", 0, "planned minutes")
	cmd.Flags().StringVarP(&memo, "memo", "m", "", "memo")
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "parent task id or prefix")
	cmd.Flags().StringVar(&priority, "priority", "", "high, medium or low")
	cmd.Flags().BoolVarP(&urgent, "urgent", "u", false, "mark urgent")
	return cmd
}

func listCmd(o *options) *cobra.Command {
	var (
		filter, date string
		completed    bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show active tasks grouped by due day",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.app.SetFilter(model.Filter(filter)); err != nil {
				return err
			}
			if date != "" {
				day, err := parseDay(date, s.app.Clock().Now())
				if err != nil {
					return err
				}
				s.app.SetReference(&day)
			}

			v := s.app.View()
			w := cmd.OutOrStdout()
			if len(v.Buckets) == 0 {
				fmt.Fprintln(w, "No active tasks.")
			}
			for _, b := range v.Buckets {
				fmt.Fprintf(w, "%s\n", b.Label)
				for _, r := range b.Rows {
					writeRow(w, r)
				}
			}
			if v.CompletedCount > 0 {
				fmt.Fprintf(w, "Completed (%d)\n", v.CompletedCount)
				if completed {
					for _, r := range v.Completed {
						writeRow(w, r)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "urgent or high-priority")
	cmd.Flags().StringVar(&date, "date", "", "reference day for the buckets")
	cmd.Flags().BoolVarP(&completed, "completed", "a", false, "also list completed tasks")
	return cmd
}

func showCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task and its subtasks",
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
			t, err := s.app.Get(id)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			secs, err := s.app.DisplayTime(id)
			if err != nil {
				return err
			}
			writeTask(w, t, secs, s.app.Clock().Now())
			subs, err := s.app.Subtasks(id)
			if err != nil {
				return err
			}
			if len(subs) > 0 {
				fmt.Fprintln(w, "Subtasks:")
				for _, sub := range subs {
					box := "[ ]"
					if sub.IsCompleted {
						box = "[x]"
					}
					fmt.Fprintf(w, "  %s %s  %s\n", box, short(sub.ID), sub.Title)
				}
			}
			if s.app.CanHaveSubtask(id) {
				fmt.Fprintln(w, "Can have subtasks: yes")
			} else {
				fmt.Fprintln(w, "Can have subtasks: no (maximum depth)")
			}
			return nil
		},
	}
}

func editCmd(o *options) *cobra.Command {
	var (
		title, memo, due, start, end, priority string
		duration                               int
		urgent, noDue, noDuration              bool
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
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
			flags := cmd.Flags()
			var p tasks.Patch
			if flags.Changed("title") {
				p.Title = &title
			}
			if flags.Changed("memo") {
				p.Memo = &memo
			}
			if flags.Changed("start") {
				p.StartTime = &start
			}
			if flags.Changed("end") {
				p.EndTime = &end
			}
			if flags.Changed("urgent") {
				p.Urgent = &urgent
			}
			if flags.Changed("priority") {
				pr := model.Priority(priority)
				p.Priority = &pr
			}
			if flags.Changed("duration") {
				p.Duration = &duration
			}
			p.ClearDuration = noDuration
			p.ClearDueDate = noDue
			if due != "" {
				day, err := parseDay(due, s.app.Clock().Now())
				if err != nil {
					return err
				}
				p.DueDate = &day
			}

			t, err := s.app.Update(id, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s\n", short(t.ID), t.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "title")
	cmd.Flags().StringVarP(&memo, "memo", "m", "", "memo")
	cmd.Flags().StringVarP(&due, "due", "d", "", "due day: YYYY-MM-DD, today or tomorrow")
	cmd.Flags().BoolVar(&noDue, "no-due", false, "remove the due day")
	cmd.Flags().StringVar(&start, "start", "", "start time HH:MM, empty to clear")
	cmd.Flags().StringVar(&end, "end", "", "end time HH:MM, empty to clear")
	cmd.Flags().IntVar(&duration, "duration", 0, "planned minutes")
	cmd.Flags().BoolVar(&noDuration, "no-duration", false, "remove the planned duration")
	cmd.Flags().StringVar(&priority, "priority", "", "high, medium, low or empty")
	cmd.Flags().BoolVarP(&urgent, "urgent", "u", false, "urgent flag")
	return cmd
}

func doneCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task's completion",
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
			t, err := s.app.ToggleComplete(id)
			if err != nil {
				return err
			}
			state := "reopened"
			if t.IsCompleted {
				state = "completed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", strings.ToUpper(state[:1])+state[1:], short(t.ID), t.Title)
			return nil
		},
	}
}

func rmCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Move a task and its subtasks to the trash",
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
			if err := s.app.Delete(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to trash\n", short(id))
			return nil
		},
	}
}

func subtasksCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "subtasks <id> [title...]",
		Short: "Replace the subtask list of a task",
		Long: `Replace the subtask list of a task. Each argument is one subtask; use
"<id>=<title>" to keep and rename an existing subtask. Subtasks that are not
listed go to the trash.`,
		Args: cobra.MinimumNArgs(1),
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
			current, err := s.app.Subtasks(id)
			if err != nil {
				return err
			}
			edits := make([]tasks.SubtaskEdit, 0, len(args)-1)
			for _, arg := range args[1:] {
				if prefix, title, ok := strings.Cut(arg, "="); ok {
					subID, err := resolveID(current, prefix)
					if err != nil {
						return err
					}
					edits = append(edits, tasks.SubtaskEdit{ID: subID, Title: title})
					continue
				}
				edits = append(edits, tasks.SubtaskEdit{Title: arg})
			}
			subs, err := s.app.SaveSubtasks(id, edits)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d subtasks\n", len(subs))
			return nil
		},
	}
}

func sortCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:       "sort [time|created|priority]",
		Short:     "Show or set the order within each day",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(model.SortTime), string(model.SortCreated), string(model.SortPriority)},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if len(args) == 1 {
				if err := s.app.SetSort(model.SortMode(args[0])); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.app.State().Sort)
			return nil
		},
	}
}

func historyCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently entered task titles",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			h := s.app.History()
			w := cmd.OutOrStdout()
			if len(h) == 0 {
				fmt.Fprintln(w, "No history yet.")
				return nil
			}
			for i, e := range h {
				line := fmt.Sprintf("%2d  %s", i, e.Title)
				if e.StartTime != "" {
					line += "  " + e.StartTime
					if e.EndTime != "" {
						line += "-" + e.EndTime
					}
				}
				fmt.Fprintln(w, line)
			}
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "use <n>",
		Short: "Add a task again from history entry n",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var i int
			if _, err := fmt.Sscanf(args[0], "%d", &i); err != nil {
				return fmt.Errorf("%w: history index %q", tasks.ErrInvalid, args[0])
			}
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			t, err := s.app.CreateFromHistory(i)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", short(t.ID), t.Title)
			return nil
		},
	})
	return cmd
}
