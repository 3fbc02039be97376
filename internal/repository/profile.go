package repository

import (
	"context"
	"errors"

	"github.com/npkumar/social-coder/internal/models"

	"gorm.io/gorm"
)

type profileRepository struct {
	db   *gorm.DB
	inst instrument
}

// NewProfileRepository returns a GORM-backed ProfileRepository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db, inst: newInstrument(systemSQL, "profiles")}
}

func (r *profileRepository) first(ctx context.Context, op, query string, arg string) (_ *models.Profile, err error) {
	ctx, finish := r.inst.start(ctx, op)
	defer func() { finish(err) }()

	var profile models.Profile
	if err = r.db.WithContext(ctx).Where(query, arg).First(&profile).Error; err != nil {
		return nil, translateGormError(err)
	}
	normalizeProfile(&profile)
	return &profile, nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	return r.first(ctx, "get_by_user", "user_id = ?", userID)
}

func (r *profileRepository) GetByHandle(ctx context.Context, handle string) (*models.Profile, error) {
	return r.first(ctx, "get_by_handle", "handle = ?", handle)
}

func (r *profileRepository) List(ctx context.Context) (_ []*models.Profile, err error) {
	ctx, finish := r.inst.start(ctx, "list")
	defer func() { finish(err) }()

	var profiles []*models.Profile
	if err = r.db.WithContext(ctx).Order("date DESC").Find(&profiles).Error; err != nil {
		return nil, translateGormError(err)
	}
	for _, p := range profiles {
		normalizeProfile(p)
	}
	return profiles, nil
}

func (r *profileRepository) Upsert(ctx context.Context, profile *models.Profile) (err error) {
	ctx, finish := r.inst.start(ctx, "upsert")
	defer func() { finish(err) }()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Profile
		findErr := tx.Where("user_id = ?", profile.User).First(&existing).Error
		switch {
		case findErr == nil:
			profile.ID = existing.ID
			return tx.Save(profile).Error
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			if profile.ID == "" {
				profile.ID = models.NewID()
			}
			return tx.Create(profile).Error
		default:
			return findErr
		}
	})
	if err != nil {
		return translateGormError(err)
	}
	r.inst.log.LogUpdate(ctx, map[string]interface{}{"profile_id": profile.ID, "user_id": profile.User})
	return nil
}

func (r *profileRepository) DeleteByUserID(ctx context.Context, userID string) (err error) {
	ctx, finish := r.inst.start(ctx, "delete")
	defer func() { finish(err) }()

	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Profile{})
	if res.Error != nil {
		return translateGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	r.inst.log.LogDelete(ctx, map[string]interface{}{"user_id": userID})
	return nil
}

func normalizeProfile(p *models.Profile) {
	if p.Skills == nil {
		p.Skills = []string{}
	}
}
