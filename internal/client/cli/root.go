package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/dmitrijs2005/offsync/internal/buildinfo"
	"github.com/dmitrijs2005/offsync/internal/client/config"
	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/spf13/cobra"
)

// Exit codes returned by Execute.
const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitCommandError = 2
)

// RootOptions is shared by every command.
type RootOptions struct {
	Config *config.Config
	Format string

	out    io.Writer
	errOut io.Writer
	app    *App
}

// App builds the application on first use. Commands that never touch the
// store (version, help) do not open it.
func (o *RootOptions) App(ctx context.Context) (*App, error) {
	if o.app != nil {
		return o.app, nil
	}
	a, err := NewApp(ctx, o.Config, o.errOut)
	if err != nil {
		return nil, err
	}
	o.app = a
	return a, nil
}

func (o *RootOptions) printer() (*printer, error) {
	f, err := resolveFormat(o.Format, o.out)
	if err != nil {
		return nil, err
	}
	return &printer{format: f, w: o.out}, nil
}

func (o *RootOptions) close() error {
	if o.app == nil {
		return nil
	}
	err := o.app.Close()
	o.app = nil
	return err
}

// NewRootCommand creates the offsync command tree. Flags default to the
// values already in cfg.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offsync",
		Short: "Offline-first albums, songs and messages",
		Long: `offsync keeps albums, songs and messages in a local database and
replicates them with a remote store when it is reachable.

Every change is written locally together with an outbox entry. "offsync sync"
pushes the outbox and pulls remote changes; "offsync daemon" does so in the
background.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != "" && !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}
	cmd.SetOut(opts.out)
	cmd.SetErr(opts.errOut)

	opts.Config.BindFlags(cmd.PersistentFlags())
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "", "output format (table|json), default depends on the terminal")

	cmd.AddCommand(NewAlbumCommand(opts))
	cmd.AddCommand(NewSongCommand(opts))
	cmd.AddCommand(NewMessageCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewOutboxCommand(opts))
	cmd.AddCommand(NewDaemonCommand(opts))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	})

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintln(stderr, "config:", err)
		return ExitCommandError
	}

	opts := &RootOptions{Config: cfg, out: stdout, errOut: stderr}
	cmd := NewRootCommand(opts)
	cmd.SetIn(stdin)
	cmd.SetArgs(args)

	err = cmd.ExecuteContext(ctx)
	if cerr := opts.close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(stderr, "error:", describe(err))
		return exitCode(err)
	}
	return ExitSuccess
}

// describe adds a hint to errors a user can fix.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		return err.Error() + " (set --owner or OFFSYNC_OWNER, and --token for the remote)"
	case errors.Is(err, common.ErrUnreachable):
		return err.Error() + " (changes stay in the outbox until the next sync)"
	}
	return err.Error()
}

func exitCode(err error) int {
	if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrUnknownCollection) || errors.Is(err, common.ErrInvalidRow) {
		return ExitCommandError
	}
	return ExitFailure
}
