package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/npkumar/social-coder/internal/models"

	"gorm.io/gorm"
)

const systemSQL = "sql"

// postRepository implements PostRepository on GORM
type postRepository struct {
	db   *gorm.DB
	inst instrument
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, inst: newInstrument(systemSQL, "posts")}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, finish := r.inst.start(ctx, "create")
	defer func() { finish(err) }()

	if err = checkPost(post); err != nil {
		return err
	}
	if err = r.db.WithContext(ctx).Create(post).Error; err != nil {
		return translateGormError(err)
	}
	r.inst.log.LogCreate(ctx, map[string]interface{}{"post_id": post.ID})
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (_ *models.Post, err error) {
	ctx, finish := r.inst.start(ctx, "get")
	defer func() { finish(err) }()

	var post models.Post
	if err = r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, translateGormError(err)
	}
	if err = checkPost(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context) (_ []*models.Post, err error) {
	ctx, finish := r.inst.start(ctx, "list")
	defer func() { finish(err) }()

	var posts []*models.Post
	if err = r.db.WithContext(ctx).Order("date DESC").Order("id DESC").Find(&posts).Error; err != nil {
		return nil, translateGormError(err)
	}
	for _, p := range posts {
		if err = checkPost(p); err != nil {
			return nil, err
		}
	}
	r.inst.log.LogRead(ctx, map[string]interface{}{"count": len(posts)})
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) (err error) {
	ctx, finish := r.inst.start(ctx, "update")
	defer func() { finish(err) }()

	if err = checkPost(post); err != nil {
		return err
	}

	expected := post.Revision
	next := *post
	next.Revision = expected + 1

	res := r.db.WithContext(ctx).
		Model(&models.Post{ID: post.ID}).
		Where("revision = ?", expected).
		Select("text", "name", "avatar", "likes", "comments", "schema_version", "revision").
		Updates(&next)
	if res.Error != nil {
		return translateGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return r.missOrConflict(ctx, post.ID)
	}

	post.Revision = next.Revision
	r.inst.log.LogUpdate(ctx, map[string]interface{}{"post_id": post.ID, "revision": post.Revision})
	return nil
}

// missOrConflict tells a vanished row apart from a stale revision.
func (r *postRepository) missOrConflict(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return translateGormError(err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func (r *postRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, finish := r.inst.start(ctx, "delete")
	defer func() { finish(err) }()

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{})
	if res.Error != nil {
		return translateGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	r.inst.log.LogDelete(ctx, map[string]interface{}{"post_id": id})
	return nil
}

// translateGormError maps driver errors onto the package sentinels.
func translateGormError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return ErrDuplicate
	default:
		return unavailable(err)
	}
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
