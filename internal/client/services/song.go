package services

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/store"
	"github.com/google/uuid"
)

type SongFields struct {
	AlbumID     string
	Name        string
	Description *string
	Tags        []string
}

type SongService interface {
	Create(ctx context.Context, f SongFields) (string, error)
	Update(ctx context.Context, id string, p models.SongPatch) error
	SoftDelete(ctx context.Context, id string) error
	// Touch records activity on a song without changing its fields. It is
	// an ordinary update, so the new version and updatedAt replicate.
	Touch(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Song, error)
	List(ctx context.Context, f models.SongFilter) ([]*models.Song, error)
}

type songService struct {
	base
}

func NewSongService(o Options) SongService {
	return &songService{base: newBase(o, "songs")}
}

func (s *songService) Create(ctx context.Context, f SongFields) (string, error) {
	e, err := s.mutate(ctx, models.OpInsert, func(ctx context.Context, r *store.Repos, owner string, now int64) (models.Entity, error) {
		song := &models.Song{
			Meta:        s.newMeta(uuid.NewString(), owner, now),
			AlbumID:     f.AlbumID,
			Name:        f.Name,
			Description: f.Description,
			Tags:        slices.Clone(f.Tags),
		}
		if song.Tags == nil {
			song.Tags = []string{}
		}
		if err := checkSong(song); err != nil {
			return nil, err
		}
		return song, r.Songs.Insert(ctx, song)
	})
	if err != nil {
		return "", err
	}
	return e.Header().ID, nil
}

func (s *songService) Update(ctx context.Context, id string, p models.SongPatch) error {
	_, err := s.mutate(ctx, models.OpUpdate, func(ctx context.Context, r *store.Repos, owner string, now int64) (models.Entity, error) {
		song, err := r.Songs.GetByID(ctx, owner, id)
		if err != nil {
			return nil, err
		}
		p.Apply(song)
		if err := checkSong(song); err != nil {
			return nil, err
		}
		song.Bump(now, s.id.DeviceID)
		return song, r.Songs.Update(ctx, song)
	})
	return err
}

func (s *songService) Touch(ctx context.Context, id string) error {
	return s.Update(ctx, id, models.SongPatch{})
}

func (s *songService) SoftDelete(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, models.OpDelete, func(ctx context.Context, r *store.Repos, owner string, now int64) (models.Entity, error) {
		song, err := r.Songs.GetByID(ctx, owner, id)
		if err != nil {
			return nil, err
		}
		at := song.Bump(now, s.id.DeviceID)
		song.DeletedAt = &at
		return song, r.Songs.Update(ctx, song)
	})
	return err
}

func (s *songService) Get(ctx context.Context, id string) (*models.Song, error) {
	var song *models.Song
	err := s.view(ctx, func(ctx context.Context, r *store.Repos, owner string) (err error) {
		song, err = r.Songs.GetByID(ctx, owner, id)
		return err
	})
	return song, err
}

func (s *songService) List(ctx context.Context, f models.SongFilter) ([]*models.Song, error) {
	var list []*models.Song
	err := s.view(ctx, func(ctx context.Context, r *store.Repos, owner string) (err error) {
		list, err = r.Songs.List(ctx, owner, f)
		return err
	})
	return list, err
}
