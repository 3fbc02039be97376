package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/npkumar/social-coder/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestTranslateMongoError(t *testing.T) {
	assert.NoError(t, translateMongoError(nil))
	assert.ErrorIs(t, translateMongoError(mongo.ErrNoDocuments), ErrNotFound)
	assert.ErrorIs(t, translateMongoError(errInvalidID), ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, translateMongoError(dup), ErrDuplicate)

	other := errors.New("server selection timeout")
	err := translateMongoError(other)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, other)
}

func TestPostDocument_KeepsOrderAndIDs(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	post := &models.Post{
		ID:            models.NewID(),
		Text:          "hello there",
		User:          models.NewID(),
		Likes:         []models.Like{{User: models.NewID()}, {User: models.NewID()}},
		Comments:      []models.Comment{{ID: models.NewID(), Text: "second", User: models.NewID(), Date: now}},
		Date:          now,
		SchemaVersion: models.PostSchemaVersion,
		Revision:      7,
	}

	doc, err := newPostDocument(post)
	require.NoError(t, err)
	back := doc.toModel()
	assert.Equal(t, post, back)
}

func TestPostDocument_RejectsForeignIDs(t *testing.T) {
	post := &models.Post{ID: "not-an-object-id", User: models.NewID(), SchemaVersion: 1}
	_, err := newPostDocument(post)
	assert.ErrorIs(t, err, errInvalidID)

	post = &models.Post{ID: models.NewID(), User: models.NewID(), SchemaVersion: 1, Likes: []models.Like{{User: "x"}}}
	_, err = newPostDocument(post)
	assert.ErrorIs(t, err, errInvalidID)
}
