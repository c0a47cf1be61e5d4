package cli

import (
	"fmt"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/services"
	"github.com/dmitrijs2005/offsync/internal/filex"
	"github.com/spf13/cobra"
)

// NewMessageCommand creates "message" and its subcommands.
func NewMessageCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Manage song messages",
	}
	cmd.AddCommand(newMessageCreateCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts, "message", func(a *App) deleter { return a.messages }))
	cmd.AddCommand(newMessageListCommand(opts))
	return cmd
}

func newMessageCreateCommand(opts *RootOptions) *cobra.Command {
	var (
		f         services.MessageFields
		typ       string
		mediaPath string
	)
	cmd := &cobra.Command{
		Use:   "create --song <id> [--content text | --media file]",
		Short: "Post a message to a song",
		Long: `Post a message to a song and mark the song as changed.

Without --content the text is read from stdin until an empty line. An audio
message keeps the local file path until the next push uploads it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.App(cmd.Context())
			if err != nil {
				return err
			}
			p, err := opts.printer()
			if err != nil {
				return err
			}

			f.Type = models.MessageType(typ)
			if mediaPath != "" {
				abs, err := filex.RegularFile(mediaPath)
				if err != nil {
					return fmt.Errorf("media: %w", err)
				}
				f.MediaURI = &abs
				if !cmd.Flags().Changed("type") {
					f.Type = models.MessageAudio
				}
			}
			if !cmd.Flags().Changed("content") && f.Type != models.MessageAudio {
				f.Content, err = GetMultiline(cmd.InOrStdin(), "Message text", cmd.ErrOrStderr())
				if err != nil {
					return fmt.Errorf("read message: %w", err)
				}
			}

			id, err := a.messages.Create(cmd.Context(), f)
			if err != nil {
				return err
			}
			return p.printID(id)
		},
	}
	cmd.Flags().StringVar(&f.SongID, "song", "", "parent song id")
	cmd.Flags().StringVar(&f.Content, "content", "", "message text")
	cmd.Flags().StringVar(&typ, "type", string(models.MessageText), "text or audio")
	cmd.Flags().StringVar(&mediaPath, "media", "", "local audio file for a voice note")
	_ = cmd.MarkFlagRequired("song")
	return cmd
}

func newMessageListCommand(opts *RootOptions) *cobra.Command {
	var filter models.MessageFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List messages",
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
			list, err := a.messages.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if list == nil {
				list = []*models.Message{}
			}
			return p.print(list, messageTable(list...))
		},
	}
	cmd.Flags().StringVar(&filter.SongID, "song", "", "only messages of this song")
	return cmd
}

func messageTable(msgs ...*models.Message) *table {
	t := &table{header: []string{"ID", "SONG", "TYPE", "CONTENT", "MEDIA", "UPDATED"}}
	for _, m := range msgs {
		t.add(m.ID, m.SongID, string(m.Type), shorten(m.Content, 48), deref(m.MediaURI), millis(m.UpdatedAt))
	}
	return t
}
