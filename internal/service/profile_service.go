package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/npkumar/social-coder/internal/models"
	"github.com/npkumar/social-coder/internal/repository"
	"github.com/npkumar/social-coder/internal/validation"
)

const (
	profileServiceName = "ProfileService"
	noProfileMessage   = "There is no profile for this user"
)

// ProfileService manages developer profiles.
type ProfileService struct {
	profiles repository.ProfileRepository
	users    repository.UserRepository
	now      func() time.Time
}

// ProfileForm is the body of a create-or-update profile request. Skills is
// a comma separated list.
type ProfileForm struct {
	Handle         string `json:"handle"`
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Status         string `json:"status"`
	Skills         string `json:"skills"`
	Bio            string `json:"bio"`
	GithubUsername string `json:"githubusername"`
	YouTube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	LinkedIn       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

func NewProfileService(profiles repository.ProfileRepository, users repository.UserRepository) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		users:    users,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Current returns the requester's profile.
func (s *ProfileService) Current(ctx context.Context, identity models.Identity) (_ *models.Profile, err error) {
	ctx, finish := traced(ctx, profileServiceName, "Current")
	defer func() { finish(err) }()

	profile, err := s.profiles.GetByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, storeError(err, noProfileMessage)
	}
	return profile, nil
}

// Upsert creates or replaces the requester's profile.
func (s *ProfileService) Upsert(ctx context.Context, identity models.Identity, form ProfileForm) (_ *models.Profile, err error) {
	ctx, finish := traced(ctx, profileServiceName, "Upsert")
	defer func() { finish(err) }()

	if fields := validation.ValidateProfile(validation.ProfileInput{
		Handle:    form.Handle,
		Status:    form.Status,
		Skills:    form.Skills,
		Website:   form.Website,
		YouTube:   form.YouTube,
		Twitter:   form.Twitter,
		Facebook:  form.Facebook,
		LinkedIn:  form.LinkedIn,
		Instagram: form.Instagram,
	}); len(fields) > 0 {
		return nil, models.NewValidationError(fields)
	}

	handle := strings.TrimSpace(form.Handle)
	owner, err := s.profiles.GetByHandle(ctx, handle)
	switch {
	case err == nil && owner.User != identity.UserID:
		return nil, handleTaken()
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, storeError(err, noProfileMessage)
	}

	profile := &models.Profile{
		User:           identity.UserID,
		Handle:         handle,
		Company:        strings.TrimSpace(form.Company),
		Website:        strings.TrimSpace(form.Website),
		Location:       strings.TrimSpace(form.Location),
		Status:         strings.TrimSpace(form.Status),
		Skills:         splitSkills(form.Skills),
		Bio:            strings.TrimSpace(form.Bio),
		GithubUsername: strings.TrimSpace(form.GithubUsername),
		Social: models.Social{
			YouTube:   strings.TrimSpace(form.YouTube),
			Twitter:   strings.TrimSpace(form.Twitter),
			Facebook:  strings.TrimSpace(form.Facebook),
			LinkedIn:  strings.TrimSpace(form.LinkedIn),
			Instagram: strings.TrimSpace(form.Instagram),
		},
		Date: s.now(),
	}

	existing, err := s.profiles.GetByUserID(ctx, identity.UserID)
	switch {
	case err == nil:
		profile.ID = existing.ID
		profile.Date = existing.Date
	case !errors.Is(err, repository.ErrNotFound):
		return nil, storeError(err, noProfileMessage)
	}

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, handleTaken()
		}
		return nil, storeError(err, noProfileMessage)
	}
	return profile, nil
}

// All lists every profile.
func (s *ProfileService) All(ctx context.Context) (_ []*models.Profile, err error) {
	ctx, finish := traced(ctx, profileServiceName, "All")
	defer func() { finish(err) }()

	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, storeError(err, "There are no profiles")
	}
	if len(profiles) == 0 {
		return nil, models.NewNotFoundError("There are no profiles")
	}
	return profiles, nil
}

// ByHandle returns the profile with the given handle.
func (s *ProfileService) ByHandle(ctx context.Context, handle string) (_ *models.Profile, err error) {
	ctx, finish := traced(ctx, profileServiceName, "ByHandle")
	defer func() { finish(err) }()

	profile, err := s.profiles.GetByHandle(ctx, strings.TrimSpace(handle))
	if err != nil {
		return nil, storeError(err, noProfileMessage)
	}
	return profile, nil
}

// ByUserID returns the profile owned by userID.
func (s *ProfileService) ByUserID(ctx context.Context, userID string) (_ *models.Profile, err error) {
	ctx, finish := traced(ctx, profileServiceName, "ByUserID")
	defer func() { finish(err) }()

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeError(err, noProfileMessage)
	}
	return profile, nil
}

// Delete removes the requester's profile and then the account itself.
func (s *ProfileService) Delete(ctx context.Context, identity models.Identity) (err error) {
	ctx, finish := traced(ctx, profileServiceName, "Delete")
	defer func() { finish(err) }()

	if err := s.profiles.DeleteByUserID(ctx, identity.UserID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return storeError(err, noProfileMessage)
	}
	if err := s.users.Delete(ctx, identity.UserID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return storeError(err, "User not found")
	}
	return nil
}

func handleTaken() error {
	return models.NewFieldError("handle", "That handle already exists")
}

func splitSkills(raw string) []string {
	skills := []string{}
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}
