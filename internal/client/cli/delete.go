package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// deleter is the soft-delete operation shared by every entity service.
type deleter interface {
	SoftDelete(ctx context.Context, id string) error
}

// newDeleteCommand builds "<kind> delete <id>". The row stays in the local
// store as a tombstone and is pushed like any other change.
func newDeleteCommand(opts *RootOptions, kind string, svc func(*App) deleter) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + kind,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.App(cmd.Context())
			if err != nil {
				return err
			}
			return svc(a).SoftDelete(cmd.Context(), args[0])
		},
	}
}
