package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/herbwise/basil/internal/cli"
	"github.com/herbwise/basil/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply any pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Database is at schema version %d", storage.ExpectedSchemaVersion)))
			return nil
		},
	}
}
