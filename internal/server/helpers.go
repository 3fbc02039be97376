package server

import (
	"github.com/npkumar/social-coder/internal/middleware"
	"github.com/npkumar/social-coder/internal/models"

	"github.com/gofiber/fiber/v2"
)

// requester returns the identity set by AuthRequired. The second return is
// false when the route was mounted without authentication; a 401 has then
// already been written.
func requester(c *fiber.Ctx) (models.Identity, bool) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		_ = models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError("Unauthorized"))
	}
	return identity, ok
}

// requireAccount runs after AuthRequired and rejects tokens whose subject
// has since been deleted.
func (s *Server) requireAccount(c *fiber.Ctx) error {
	identity, ok := requester(c)
	if !ok {
		return nil
	}
	if err := s.userService.Authenticate(c.UserContext(), identity); err != nil {
		return fail(c, err)
	}
	return c.Next()
}

// parseBody decodes the request body into v, writing a 400 on failure. An
// empty body leaves v at its zero value so field validation reports what is
// missing.
func parseBody(c *fiber.Ctx, v interface{}) bool {
	if len(c.Body()) == 0 {
		return true
	}
	if err := c.BodyParser(v); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewFieldError("body", "Invalid request body"))
		return false
	}
	return true
}

// fail writes err with the status derived from its code.
func fail(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error", "path", c.Path(), "error", err)
	}
	return models.Respond(c, err)
}
