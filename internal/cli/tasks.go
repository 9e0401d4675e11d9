package cli

import (
	"context"
	"strings"

	"github.com/tino-q/ssonsoles-tasks/internal/api"
	"github.com/tino-q/ssonsoles-tasks/internal/kvstore"
	"github.com/tino-q/ssonsoles-tasks/internal/model"
	"github.com/tino-q/ssonsoles-tasks/internal/session"
	"github.com/tino-q/ssonsoles-tasks/internal/tasklist"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and respond to cleaning tasks",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksRespondCmd(app))
	cmd.AddCommand(newTasksRejectCmd(app))
	cmd.AddCommand(newTasksProposeCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksAssignCmd(app))
	cmd.AddCommand(newTasksTimingsCmd(app))
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the logged-in cleaner's tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, client, err := openStoreAndClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			cleanerID, err := currentCleanerID(app, store)
			if err != nil {
				return writeErr(cmd, err)
			}

			f := tasklist.Filter(filter)
			switch f {
			case tasklist.FilterPending, tasklist.FilterConfirmed, tasklist.FilterAll:
			default:
				return writeErr(cmd, errBadArgument("filter", "must be one of pending, confirmed, all"))
			}

			tracked := trackActivity(store)
			defer tracked()

			tasks, err := client.GetTasks(cmd.Context(), api.TaskFilters{CleanerID: cleanerID})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": tasklist.FilterTasks(tasks, f)})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", string(tasklist.FilterPending), "pending|confirmed|all")
	return cmd
}

func newTasksRespondCmd(app *App) *cobra.Command {
	var status, comments string
	cmd := &cobra.Command{
		Use:   "respond <task-id>",
		Short: "Accept or update a task's status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := model.TaskStatus(strings.ToUpper(strings.TrimSpace(status)))
			if !st.Known() {
				return writeErr(cmd, errBadArgument("status", "unknown task status"))
			}

			store, client, err := openStoreAndClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			tracked := trackActivity(store)
			defer tracked()

			if err := client.UpdateTaskStatus(cmd.Context(), args[0], st, comments); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": "ok"})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "New status (e.g. CONFIRMED)")
	cmd.Flags().StringVar(&comments, "comments", "", "Optional comment sent with the status change")
	cmd.MarkFlagRequired("status")
	return cmd
}

func newTasksRejectCmd(app *App) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "reject <task-id>",
		Short: "Reject a task, optionally recording a reason",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, client, err := openStoreAndClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			cleanerID, err := currentCleanerID(app, store)
			if err != nil {
				return writeErr(cmd, err)
			}

			tracked := trackActivity(store)
			defer tracked()

			ctx := cmd.Context()
			if err := client.UpdateTaskStatus(ctx, args[0], model.StatusRejected, reason); err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(reason) != "" {
				if err := client.LogRejection(ctx, args[0], cleanerID, reason); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": "ok"})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Why the task is being rejected")
	return cmd
}

func newTasksProposeCmd(app *App) *cobra.Command {
	var proposedTime, comments string
	cmd := &cobra.Command{
		Use:   "propose <task-id>",
		Short: "Propose an alternative time for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, client, err := openStoreAndClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			cleanerID, err := currentCleanerID(app, store)
			if err != nil {
				return writeErr(cmd, err)
			}

			tracked := trackActivity(store)
			defer tracked()

			if err := client.CreateProposal(cmd.Context(), args[0], cleanerID, proposedTime, comments); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": "ok"})
		},
	}
	cmd.Flags().StringVar(&proposedTime, "time", "", "Suggested alternative time")
	cmd.Flags().StringVar(&comments, "comments", "", "Context for the proposal")
	cmd.MarkFlagRequired("time")
	return cmd
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var property, date, typ, notes string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, client, err := openStoreAndClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			raw, err := client.CreateTask(cmd.Context(), model.Task{
				Property: property,
				Date:     date,
				Type:     typ,
				Notes:    notes,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": raw})
		},
	}
	cmd.Flags().StringVar(&property, "property", "", "Property name")
	cmd.Flags().StringVar(&date, "date", "", "Task date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&typ, "type", "", "Task type")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.MarkFlagRequired("property")
	cmd.MarkFlagRequired("date")
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var set []string
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update arbitrary task fields (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := map[string]any{}
			for _, kv := range set {
				k, v, ok := strings.Cut(kv, "=")
				if !ok || k == "" {
					return writeErr(cmd, errBadArgument("set", "expected key=value, got "+kv))
				}
				fields[k] = v
			}
			if len(fields) == 0 {
				return writeErr(cmd, errBadArgument("set", "at least one key=value required"))
			}

			store, client, err := openStoreAndClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			raw, err := client.UpdateTask(cmd.Context(), args[0], fields)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": raw})
		},
	}
	cmd.Flags().StringArrayVar(&set, "set", nil, "Field to update, key=value (repeatable)")
	return cmd
}

func newTasksAssignCmd(app *App) *cobra.Command {
	var cleanerID string
	cmd := &cobra.Command{
		Use:   "assign <task-id>",
		Short: "Assign a task to a cleaner (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, client, err := openStoreAndClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			if err := client.AssignTask(cmd.Context(), args[0], cleanerID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": "ok"})
		},
	}
	cmd.Flags().StringVar(&cleanerID, "to", "", "Cleaner id to assign the task to")
	cmd.MarkFlagRequired("to")
	return cmd
}

func newTasksTimingsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "timings <task-id>",
		Short: "Show entry/exit logs for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, client, err := openStoreAndClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			timings, err := client.GetTaskTimings(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": timings})
		},
	}
}

// trackActivity best-effort bumps the session's lastActivity stamp when the
// command finishes. The write itself is throttled inside the session manager,
// and failures never block a command.
func trackActivity(store *kvstore.Store) func() {
	return func() {
		session.NewManager(store).TouchActivity(context.Background())
	}
}
