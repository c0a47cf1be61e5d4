package cli

import (
	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/services"
	"github.com/spf13/cobra"
)

// NewSongCommand creates "song" and its subcommands.
func NewSongCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "song",
		Short: "Manage songs",
	}
	cmd.AddCommand(newSongCreateCommand(opts))
	cmd.AddCommand(newSongUpdateCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts, "song", func(a *App) deleter { return a.songs }))
	cmd.AddCommand(newSongGetCommand(opts))
	cmd.AddCommand(newSongListCommand(opts))
	return cmd
}

func newSongCreateCommand(opts *RootOptions) *cobra.Command {
	var (
		f    services.SongFields
		desc string
		tags []string
	)
	cmd := &cobra.Command{
		Use:   "create --album <id> --name <name>",
		Short: "Create a song",
		Long:  "Create a song. The album does not have to exist locally; it may arrive with a later pull.",
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
			id, err := a.songs.Create(cmd.Context(), f)
			if err != nil {
				return err
			}
			return p.printID(id)
		},
	}
	cmd.Flags().StringVar(&f.AlbumID, "album", "", "parent album id")
	cmd.Flags().StringVar(&f.Name, "name", "", "song name")
	cmd.Flags().StringVar(&desc, "description", "", "song description")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "tag, repeatable or comma separated")
	_ = cmd.MarkFlagRequired("album")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newSongUpdateCommand(opts *RootOptions) *cobra.Command {
	var (
		album, name, desc string
		tags              []string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change song fields; only the flags given are applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.App(cmd.Context())
			if err != nil {
				return err
			}
			var patch models.SongPatch
			if cmd.Flags().Changed("album") {
				patch.AlbumID = &album
			}
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
			return a.songs.Update(cmd.Context(), args[0], patch)
		},
	}
	cmd.Flags().StringVar(&album, "album", "", "move to this album")
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&desc, "description", "", "new description")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "replacement tags, repeatable or comma separated")
	return cmd
}

func newSongGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one song",
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
			s, err := a.songs.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return p.print(s, songTable(s))
		},
	}
}

func newSongListCommand(opts *RootOptions) *cobra.Command {
	var filter models.SongFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List songs",
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
			list, err := a.songs.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if list == nil {
				list = []*models.Song{}
			}
			return p.print(list, songTable(list...))
		},
	}
	cmd.Flags().StringVar(&filter.AlbumID, "album", "", "only songs of this album")
	cmd.Flags().StringVar(&filter.Tag, "tag", "", "only songs with this tag")
	return cmd
}

func songTable(songs ...*models.Song) *table {
	t := &table{header: []string{"ID", "ALBUM", "NAME", "TAGS", "VERSION", "UPDATED"}}
	for _, s := range songs {
		t.add(s.ID, s.AlbumID, shorten(s.Name, 40), joinTags(s.Tags), itoa(s.Version), millis(s.UpdatedAt))
	}
	return t
}
