package repository

import (
	"context"
	"strings"

	"github.com/npkumar/social-coder/internal/models"

	"gorm.io/gorm"
)

type userRepository struct {
	db   *gorm.DB
	inst instrument
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, inst: newInstrument(systemSQL, "users")}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, finish := r.inst.start(ctx, "create")
	defer func() { finish(err) }()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.ID == "" {
		user.ID = models.NewID()
	}
	if err = r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translateGormError(err)
	}
	r.inst.log.LogCreate(ctx, map[string]interface{}{"user_id": user.ID})
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (_ *models.User, err error) {
	ctx, finish := r.inst.start(ctx, "get")
	defer func() { finish(err) }()

	var user models.User
	if err = r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (_ *models.User, err error) {
	ctx, finish := r.inst.start(ctx, "get_by_email")
	defer func() { finish(err) }()

	var user models.User
	err = r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return &user, nil
}

func (r *userRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, finish := r.inst.start(ctx, "delete")
	defer func() { finish(err) }()

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return translateGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	r.inst.log.LogDelete(ctx, map[string]interface{}{"user_id": id})
	return nil
}

// NewGormRepositories wires the GORM implementations onto db.
func NewGormRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Posts:    NewPostRepository(db),
		Profiles: NewProfileRepository(db),
		Users:    NewUserRepository(db),
	}
}
