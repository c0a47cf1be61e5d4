package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/offsync/internal/client/client"
	"github.com/dmitrijs2005/offsync/internal/client/config"
	"github.com/dmitrijs2005/offsync/internal/client/media"
	"github.com/dmitrijs2005/offsync/internal/client/reachability"
	"github.com/dmitrijs2005/offsync/internal/client/replication"
	"github.com/dmitrijs2005/offsync/internal/client/services"
	"github.com/dmitrijs2005/offsync/internal/client/store"
	"github.com/dmitrijs2005/offsync/internal/logging"
	"github.com/dmitrijs2005/offsync/internal/remote"
	"go.uber.org/multierr"
)

// remoteClient is what the CLI needs from the transport.
type remoteClient interface {
	remote.Store
	Ping(ctx context.Context) error
	Close() error
}

// Construction seams, replaced in tests.
var (
	dialRemote = func(addr, token, deviceID string) (remoteClient, error) {
		return client.NewGRPCClient(addr, token, deviceID)
	}
	newUploader = func(ctx context.Context, c media.Config) (replication.MediaUploader, error) {
		return media.NewS3Uploader(ctx, c)
	}
)

// App holds everything a command needs. It is built once per invocation.
type App struct {
	config   *config.Config
	logger   logging.Logger
	store    *store.Store
	remote   remoteClient
	identity services.Identity

	albums   services.AlbumService
	songs    services.SongService
	messages services.MessageService
	engine   *replication.Engine
	watcher  *reachability.Watcher
}

// NewApp opens the local store and prepares the remote client. The gRPC
// connection is lazy, so building an App never needs the network.
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	l := logging.New(logOut, "text", c.LogLevel)

	st, err := store.Open(ctx, c.DatabasePath)
	if err != nil {
		return nil, err
	}

	deviceID, err := st.DeviceID(ctx, c.DeviceID)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("device id: %w", err)
	}

	rc, err := dialRemote(c.ServerEndpointAddr, c.AccessToken, deviceID)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("remote client: %w", err)
	}

	a := &App{
		config:   c,
		logger:   l,
		store:    st,
		remote:   rc,
		identity: services.Identity{Owner: c.Owner, DeviceID: deviceID},
	}

	opts := services.Options{Store: st, Identity: a.identity, Logger: l}
	a.albums = services.NewAlbumService(opts)
	a.songs = services.NewSongService(opts)
	a.messages = services.NewMessageService(opts, a.songs)

	a.watcher = reachability.NewWatcher(rc, c.OnlineCheckInterval, l)

	engineOpts := []replication.Option{replication.WithLogger(l)}
	if c.S3.Bucket != "" {
		up, err := newUploader(ctx, c.S3)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("media uploader: %w", err)
		}
		engineOpts = append(engineOpts, replication.WithMediaUploader(up))
	}
	a.engine = replication.NewEngine(st, rc, a.watcher, engineOpts...)

	return a, nil
}

func (a *App) Close() error {
	return multierr.Combine(a.remote.Close(), a.store.Close())
}
