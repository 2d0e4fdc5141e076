package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func trashCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash",
		Short: "Manage deleted tasks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List trashed tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			trash := s.app.Trash()
			w := cmd.OutOrStdout()
			if len(trash) == 0 {
				fmt.Fprintln(w, "Trash is empty.")
				return nil
			}
			loc := s.app.Clock().Now().Location()
			for _, e := range trash {
				fmt.Fprintf(w, "%s  %s  %s\n", short(e.ID), e.DeletedAt.In(loc).Format("2006-01-02 15:04"), e.Title)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a task with its trashed subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			id, err := resolveID(trashTasks(s.app.Trash()), args[0])
			if err != nil {
				return err
			}
			t, err := s.app.Restore(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s %s\n", short(t.ID), t.Title)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "purge <id>",
		Short: "Delete a trashed task permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			id, err := resolveID(trashTasks(s.app.Trash()), args[0])
			if err != nil {
				return err
			}
			if err := s.app.PermanentDelete(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s permanently\n", short(id))
			return nil
		},
	})

	var days int
	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Purge trash older than the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.app.CleanupTrash(daysToDuration(days))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d entries\n", n)
			return nil
		},
	}
	cleanup.Flags().IntVar(&days, "days", 0, "retention in days (default from config)")
	cmd.AddCommand(cleanup)
	return cmd
}
