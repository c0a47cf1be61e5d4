package cli

import (
	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/services"
	"github.com/spf13/cobra"
)

// NewAlbumCommand creates "album" and its subcommands.
func NewAlbumCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "album",
		Short: "Manage albums",
	}
	cmd.AddCommand(newAlbumCreateCommand(opts))
	cmd.AddCommand(newAlbumUpdateCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts, "album", func(a *App) deleter { return a.albums }))
	cmd.AddCommand(newAlbumGetCommand(opts))
	cmd.AddCommand(newAlbumListCommand(opts))
	return cmd
}

func newAlbumCreateCommand(opts *RootOptions) *cobra.Command {
	var (
		f    services.AlbumFields
		desc string
		tags []string
	)
	cmd := &cobra.Command{
		Use:   "create --name <name>",
		Short: "Create an album",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.App(cmd.Context())
			if err != nil {
				return err
			}
			p, err := opts.printer()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("description") {
				f.Description = &desc
			}
			f.Tags = splitTags(tags)
			id, err := a.albums.Create(cmd.Context(), f)
			if err != nil {
				return err
			}
			return p.printID(id)
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "album name")
	cmd.Flags().StringVar(&desc, "description", "", "album description")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "tag, repeatable or comma separated")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newAlbumUpdateCommand(opts *RootOptions) *cobra.Command {
	var (
		name, desc string
		tags       []string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change album fields; only the flags given are applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.App(cmd.Context())
			if err != nil {
				return err
			}
			var patch models.AlbumPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &desc
			}
			if cmd.Flags().Changed("tag") {
				t := splitTags(tags)
				patch.Tags = &t
			}
			return a.albums.Update(cmd.Context(), args[0], patch)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&desc, "description", "", "new description")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "replacement tags, repeatable or comma separated")
	return cmd
}

func newAlbumGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one album",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.App(cmd.Context())
			if err != nil {
				return err
			}
			p, err := opts.printer()
			if err != nil {
				return err
			}
			al, err := a.albums.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return p.print(al, albumTable(al))
		},
	}
}

func newAlbumListCommand(opts *RootOptions) *cobra.Command {
	var filter models.AlbumFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List albums",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.App(cmd.Context())
			if err != nil {
				return err
			}
			p, err := opts.printer()
			if err != nil {
				return err
			}
			list, err := a.albums.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if list == nil {
				list = []*models.Album{}
			}
			return p.print(list, albumTable(list...))
		},
	}
	cmd.Flags().StringVar(&filter.NameContains, "name", "", "only albums whose name contains this text")
	cmd.Flags().StringVar(&filter.Tag, "tag", "", "only albums with this tag")
	return cmd
}

func albumTable(albums ...*models.Album) *table {
	t := &table{header: []string{"ID", "NAME", "TAGS", "VERSION", "UPDATED"}}
	for _, a := range albums {
		t.add(a.ID, shorten(a.Name, 40), joinTags(a.Tags), itoa(a.Version), millis(a.UpdatedAt))
	}
	return t
}
