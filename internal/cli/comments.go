package cli

import (
	"strings"

	"github.com/tino-q/ssonsoles-tasks/internal/comments"
	"github.com/tino-q/ssonsoles-tasks/internal/model"

	"github.com/spf13/cobra"
)

func newCommentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Read and add task comments",
	}
	cmd.AddCommand(newCommentsListCmd(app))
	cmd.AddCommand(newCommentsAddCmd(app))
	return cmd
}

func newCommentsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <task-id>",
		Short: "List a task's comments, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, client, err := openStoreAndClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer store.Close()

			list, err := client.GetComments(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": comments.SortDescending(list)})
		},
	}
}

func newCommentsAddCmd(app *App) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "add <task-id> <text>",
		Short: "Add a comment to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(args[1])
			if text == "" {
				return writeErr(cmd, errBadArgument("text", "must not be empty"))
			}

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

			ct := model.CommentType(strings.ToUpper(strings.TrimSpace(typ)))
			if err := client.AddComment(cmd.Context(), args[0], cleanerID, text, ct); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": "ok"})
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "Comment type (defaults to GENERAL)")
	return cmd
}
