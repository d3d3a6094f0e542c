package commands

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Tomlord1122/lofi-playground/internal/todolist"
	"github.com/Tomlord1122/lofi-playground/internal/tui"
)

func newUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			toasts := todolist.NewToastQueue(8)
			ctrl, c, _, err := a.controller(toasts)
			if err != nil {
				return err
			}

			model := tui.New(cmd.Context(), ctrl, tui.Options{
				Sounds: c.Sounds,
				Toasts: toasts,
			})
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}
