package services

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/store"
	"github.com/google/uuid"
)

// AlbumFields are the user-editable fields of a new album.
type AlbumFields struct {
	Name        string
	Description *string
	Tags        []string
}

type AlbumService interface {
	Create(ctx context.Context, f AlbumFields) (string, error)
	Update(ctx context.Context, id string, p models.AlbumPatch) error
	SoftDelete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Album, error)
	List(ctx context.Context, f models.AlbumFilter) ([]*models.Album, error)
}

type albumService struct {
	base
}

func NewAlbumService(o Options) AlbumService {
	return &albumService{base: newBase(o, "albums")}
}

func (s *albumService) Create(ctx context.Context, f AlbumFields) (string, error) {
	e, err := s.mutate(ctx, models.OpInsert, func(ctx context.Context, r *store.Repos, owner string, now int64) (models.Entity, error) {
		a := &models.Album{
			Meta:        s.newMeta(uuid.NewString(), owner, now),
			Name:        f.Name,
			Description: f.Description,
			Tags:        slices.Clone(f.Tags),
		}
		if a.Tags == nil {
			a.Tags = []string{}
		}
		if err := checkAlbum(a); err != nil {
			return nil, err
		}
		return a, r.Albums.Insert(ctx, a)
	})
	if err != nil {
		return "", err
	}
	return e.Header().ID, nil
}

func (s *albumService) Update(ctx context.Context, id string, p models.AlbumPatch) error {
	_, err := s.mutate(ctx, models.OpUpdate, func(ctx context.Context, r *store.Repos, owner string, now int64) (models.Entity, error) {
		a, err := r.Albums.GetByID(ctx, owner, id)
		if err != nil {
			return nil, err
		}
		p.Apply(a)
		if err := checkAlbum(a); err != nil {
			return nil, err
		}
		a.Bump(now, s.id.DeviceID)
		return a, r.Albums.Update(ctx, a)
	})
	return err
}

func (s *albumService) SoftDelete(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, models.OpDelete, func(ctx context.Context, r *store.Repos, owner string, now int64) (models.Entity, error) {
		a, err := r.Albums.GetByID(ctx, owner, id)
		if err != nil {
			return nil, err
		}
		at := a.Bump(now, s.id.DeviceID)
		a.DeletedAt = &at
		return a, r.Albums.Update(ctx, a)
	})
	return err
}

func (s *albumService) Get(ctx context.Context, id string) (*models.Album, error) {
	var a *models.Album
	err := s.view(ctx, func(ctx context.Context, r *store.Repos, owner string) (err error) {
		a, err = r.Albums.GetByID(ctx, owner, id)
		return err
	})
	return a, err
}

func (s *albumService) List(ctx context.Context, f models.AlbumFilter) ([]*models.Album, error) {
	var list []*models.Album
	err := s.view(ctx, func(ctx context.Context, r *store.Repos, owner string) (err error) {
		list, err = r.Albums.List(ctx, owner, f)
		return err
	})
	return list, err
}
