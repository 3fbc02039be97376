package server

import (
	"github.com/npkumar/social-coder/internal/middleware"
	"github.com/npkumar/social-coder/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ProfileTest handles GET /api/profile/test
func (s *Server) ProfileTest(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Profile Works"})
}

// GetCurrentProfile handles GET /api/profile
// @Summary Current user's profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /profile [get]
func (s *Server) GetCurrentProfile(c *fiber.Ctx) error {
	identity, ok := requester(c)
	if !ok {
		return nil
	}
	profile, err := s.profileService.Current(c.UserContext(), identity)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}

// UpsertProfile handles POST /api/profile
// @Summary Create or update the current user's profile
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ProfileForm true "Profile form"
// @Success 200 {object} models.Profile
// @Failure 400 {object} map[string]string
// @Router /profile [post]
func (s *Server) UpsertProfile(c *fiber.Ctx) error {
	identity, ok := requester(c)
	if !ok {
		return nil
	}
	var req service.ProfileForm
	if !parseBody(c, &req) {
		return nil
	}
	profile, err := s.profileService.Upsert(c.UserContext(), identity, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}

// DeleteProfile handles DELETE /api/profile
// @Summary Delete the current user's profile and account
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool}
// @Router /profile [delete]
func (s *Server) DeleteProfile(c *fiber.Ctx) error {
	identity, ok := requester(c)
	if !ok {
		return nil
	}
	if err := s.profileService.Delete(c.UserContext(), identity); err != nil {
		return fail(c, err)
	}
	// Without Redis, requireAccount alone rejects the token from here on.
	if err := s.userService.Logout(c.UserContext(), identity); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "token not revoked after account deletion", "error", err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// GetAllProfiles handles GET /api/profile/all
// @Summary List all profiles
// @Tags profile
// @Produce json
// @Success 200 {array} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/all [get]
func (s *Server) GetAllProfiles(c *fiber.Ctx) error {
	profiles, err := s.profileService.All(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profiles)
}

// GetProfileByHandle handles GET /api/profile/handle/:handle
// @Summary Profile by handle
// @Tags profile
// @Produce json
// @Param handle path string true "Profile handle"
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/handle/{handle} [get]
func (s *Server) GetProfileByHandle(c *fiber.Ctx) error {
	profile, err := s.profileService.ByHandle(c.UserContext(), c.Params("handle"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}

// GetProfileByUserID handles GET /api/profile/user/:user_id
// @Summary Profile by user id
// @Tags profile
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /profile/user/{user_id} [get]
func (s *Server) GetProfileByUserID(c *fiber.Ctx) error {
	profile, err := s.profileService.ByUserID(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(profile)
}
