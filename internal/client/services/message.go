package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/client/store"
	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/google/uuid"
)

type MessageFields struct {
	SongID   string
	Content  string
	Type     models.MessageType
	MediaURI *string
}

type MessageService interface {
	// Create stores the message and then touches its parent song. The two
	// steps commit separately; a parent that is not present locally yet is
	// skipped.
	Create(ctx context.Context, f MessageFields) (string, error)
	Update(ctx context.Context, id string, p models.MessagePatch) error
	SoftDelete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Message, error)
	List(ctx context.Context, f models.MessageFilter) ([]*models.Message, error)
}

type messageService struct {
	base
	songs SongService
}

func NewMessageService(o Options, songs SongService) MessageService {
	return &messageService{base: newBase(o, "messages"), songs: songs}
}

func (s *messageService) Create(ctx context.Context, f MessageFields) (string, error) {
	typ := f.Type
	if typ == "" {
		typ = models.MessageText
	}

	e, err := s.mutate(ctx, models.OpInsert, func(ctx context.Context, r *store.Repos, owner string, now int64) (models.Entity, error) {
		m := &models.Message{
			Meta:     s.newMeta(uuid.NewString(), owner, now),
			SongID:   f.SongID,
			Content:  f.Content,
			Type:     typ,
			MediaURI: f.MediaURI,
		}
		if err := checkMessage(m); err != nil {
			return nil, err
		}
		return m, r.Messages.Insert(ctx, m)
	})
	if err != nil {
		return "", err
	}
	id := e.Header().ID

	if err := s.songs.Touch(ctx, f.SongID); err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return id, fmt.Errorf("touch song %s: %w", f.SongID, err)
		}
		s.log.Warn(ctx, "parent song not present locally, touch skipped", "song_id", f.SongID, "message_id", id)
	}
	return id, nil
}

func (s *messageService) Update(ctx context.Context, id string, p models.MessagePatch) error {
	_, err := s.mutate(ctx, models.OpUpdate, func(ctx context.Context, r *store.Repos, owner string, now int64) (models.Entity, error) {
		m, err := r.Messages.GetByID(ctx, owner, id)
		if err != nil {
			return nil, err
		}
		p.Apply(m)
		if err := checkMessage(m); err != nil {
			return nil, err
		}
		m.Bump(now, s.id.DeviceID)
		return m, r.Messages.Update(ctx, m)
	})
	return err
}

func (s *messageService) SoftDelete(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, models.OpDelete, func(ctx context.Context, r *store.Repos, owner string, now int64) (models.Entity, error) {
		m, err := r.Messages.GetByID(ctx, owner, id)
		if err != nil {
			return nil, err
		}
		at := m.Bump(now, s.id.DeviceID)
		m.DeletedAt = &at
		return m, r.Messages.Update(ctx, m)
	})
	return err
}

func (s *messageService) Get(ctx context.Context, id string) (*models.Message, error) {
	var m *models.Message
	err := s.view(ctx, func(ctx context.Context, r *store.Repos, owner string) (err error) {
		m, err = r.Messages.GetByID(ctx, owner, id)
		return err
	})
	return m, err
}

func (s *messageService) List(ctx context.Context, f models.MessageFilter) ([]*models.Message, error) {
	var list []*models.Message
	err := s.view(ctx, func(ctx context.Context, r *store.Repos, owner string) (err error) {
		list, err = r.Messages.List(ctx, owner, f)
		return err
	})
	return list, err
}
