package services

import (
	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/wire"
)

// validate checks user-editable fields against the wire row tags, the same
// rules the server applies on upsert.
var validate = wire.NewValidator()

func check(collection, id string, row any, fields ...string) error {
	if err := validate.StructPartial(row, fields...); err != nil {
		return &common.ValidationError{Collection: collection, ID: id, Err: err}
	}
	return nil
}

func checkAlbum(a *models.Album) error {
	return check(wire.Albums, a.ID, &wire.Album{Name: a.Name}, "Name")
}

func checkSong(s *models.Song) error {
	return check(wire.Songs, s.ID, &wire.Song{AlbumID: s.AlbumID, Name: s.Name}, "AlbumID", "Name")
}

func checkMessage(m *models.Message) error {
	return check(wire.Messages, m.ID, &wire.Message{SongID: m.SongID, Type: string(m.Type)}, "SongID", "Type")
}
