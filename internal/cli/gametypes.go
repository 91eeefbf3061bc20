package cli

import (
	"github.com/spf13/cobra"
)

func newGameTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gametypes",
		Short: "List registered game types",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameTypeList

			if err := client.Get("/api/v1/gametypes", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
