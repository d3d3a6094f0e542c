package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Tomlord1122/lofi-playground/internal/query"
	"github.com/Tomlord1122/lofi-playground/internal/todolist"
)

func newTodoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Manage todos",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your todos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, _, _, err := a.controller(printNotifier{out: cmd.OutOrStdout()})
			if err != nil {
				return err
			}
			if err := ctrl.Refresh(cmd.Context(), true); err != nil {
				return err
			}
			return printTodos(cmd.OutOrStdout(), ctrl)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: runMutation(a, func(ctx context.Context, ctrl *todolist.Controller, args []string) *query.Pending {
			return ctrl.Create(ctx, strings.Join(args, " "))
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "done <id>",
		Short: "Mark a todo as completed",
		Args:  cobra.ExactArgs(1),
		RunE: runMutation(a, func(ctx context.Context, ctrl *todolist.Controller, args []string) *query.Pending {
			return ctrl.SetCompleted(ctx, args[0], true)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "undo <id>",
		Short: "Mark a todo as not completed",
		Args:  cobra.ExactArgs(1),
		RunE: runMutation(a, func(ctx context.Context, ctrl *todolist.Controller, args []string) *query.Pending {
			return ctrl.SetCompleted(ctx, args[0], false)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a todo",
		Args:  cobra.MinimumNArgs(2),
		RunE: runMutation(a, func(ctx context.Context, ctrl *todolist.Controller, args []string) *query.Pending {
			return ctrl.Rename(ctx, args[0], strings.Join(args[1:], " "))
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a todo",
		Args:    cobra.ExactArgs(1),
		RunE: runMutation(a, func(ctx context.Context, ctrl *todolist.Controller, args []string) *query.Pending {
			return ctrl.Delete(ctx, args[0])
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all completed todos",
		Args:  cobra.NoArgs,
		RunE: runMutation(a, func(ctx context.Context, ctrl *todolist.Controller, args []string) *query.Pending {
			return ctrl.ClearCompleted(ctx)
		}),
	})

	return cmd
}

// runMutation loads the list, runs one mutation through the controller and
// waits for it and the following reconciliation to finish.
func runMutation(a *app, mutate func(ctx context.Context, ctrl *todolist.Controller, args []string) *query.Pending) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctrl, _, _, err := a.controller(printNotifier{out: cmd.OutOrStdout()})
		if err != nil {
			return err
		}
		if err := ctrl.Refresh(cmd.Context(), true); err != nil {
			return err
		}
		return mutate(cmd.Context(), ctrl, args).Wait()
	}
}

func printTodos(out io.Writer, ctrl *todolist.Controller) error {
	todos := ctrl.Todos()
	if len(todos) == 0 {
		_, err := fmt.Fprintln(out, "No todos yet")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, t := range todos {
		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", check, t.Name, t.ID)
	}
	return w.Flush()
}
