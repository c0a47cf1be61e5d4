// Package models defines the client-side entity rows, the outbox entry and
// its snapshot envelope, and the per-collection sync cursor.
package models

import (
	"slices"

	"github.com/dmitrijs2005/offsync/internal/wire"
)

// Meta holds the replication columns every entity row carries.
// Timestamps are epoch milliseconds.
type Meta struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
	DeviceID  string `json:"deviceId"`
	Version   int64  `json:"version"`
	DeletedAt *int64 `json:"deletedAt"`
}

// Header gives generic code access to the replication columns.
func (m *Meta) Header() *Meta { return m }

// IsDeleted reports whether the row is a tombstone.
func (m *Meta) IsDeleted() bool { return m.DeletedAt != nil }

// Bump records a local mutation at now: version+1 and updatedAt=now. A
// clock that stepped back never moves updatedAt below its current value.
// Bump returns the updatedAt it recorded.
func (m *Meta) Bump(now int64, deviceID string) int64 {
	m.Version++
	m.UpdatedAt = max(now, m.UpdatedAt)
	m.DeviceID = deviceID
	return m.UpdatedAt
}

// Entity is implemented by every row type.
type Entity interface {
	Collection() string
	Header() *Meta
}

type Album struct {
	Meta
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
}

func (*Album) Collection() string { return wire.Albums }

// Song belongs to an album. The album may not exist locally yet.
type Song struct {
	Meta
	AlbumID     string   `json:"albumId"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
}

func (*Song) Collection() string { return wire.Songs }

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageAudio MessageType = "audio"
)

// Message is a chat entry attached to a song.
type Message struct {
	Meta
	SongID   string      `json:"songId"`
	Content  string      `json:"content"`
	Type     MessageType `json:"type"`
	MediaURI *string     `json:"mediaUri"`
}

func (*Message) Collection() string { return wire.Messages }

// AlbumPatch lists the fields to change; nil fields are left untouched.
type AlbumPatch struct {
	Name        *string
	Description *string
	Tags        *[]string
}

func (p AlbumPatch) Apply(a *Album) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Description != nil {
		a.Description = ptr(*p.Description)
	}
	if p.Tags != nil {
		a.Tags = slices.Clone(*p.Tags)
	}
}

type SongPatch struct {
	AlbumID     *string
	Name        *string
	Description *string
	Tags        *[]string
}

func (p SongPatch) Apply(s *Song) {
	if p.AlbumID != nil {
		s.AlbumID = *p.AlbumID
	}
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Description != nil {
		s.Description = ptr(*p.Description)
	}
	if p.Tags != nil {
		s.Tags = slices.Clone(*p.Tags)
	}
}

type MessagePatch struct {
	Content  *string
	MediaURI *string
}

func (p MessagePatch) Apply(m *Message) {
	if p.Content != nil {
		m.Content = *p.Content
	}
	if p.MediaURI != nil {
		m.MediaURI = ptr(*p.MediaURI)
	}
}

// AlbumFilter narrows List results. Zero values match everything.
type AlbumFilter struct {
	NameContains string
	Tag          string
}

type SongFilter struct {
	AlbumID string
	Tag     string
}

type MessageFilter struct {
	SongID string
}

func ptr[T any](v T) *T { return &v }
