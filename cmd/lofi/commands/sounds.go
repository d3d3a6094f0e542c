package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSoundsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sounds",
		Short: "List the ambient sound catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, _, err := a.client()
			if err != nil {
				return err
			}

			sounds, err := c.Sounds(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list sounds: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, s := range sounds {
				fmt.Fprintf(out, "  - %s\n    %s\n", s.Title, s.Href)
			}
			return nil
		},
	}
}
