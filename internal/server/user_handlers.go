package server

import (
	"github.com/npkumar/social-coder/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UsersTest handles GET /api/users/test
func (s *Server) UsersTest(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Users Works"})
}

// Register handles POST /api/users/register
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration form"
// @Success 200 {object} object{id=string,name=string,email=string,avatar=string,date=string}
// @Failure 400 {object} map[string]string
// @Router /users/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if !parseBody(c, &req) {
		return nil
	}
	user, err := s.userService.Register(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// Login handles POST /api/users/login
// @Summary Log in and receive a bearer token
// @Tags users
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "Credentials"
// @Success 200 {object} object{success=bool,token=string}
// @Failure 400 {object} map[string]string
// @Router /users/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if !parseBody(c, &req) {
		return nil
	}
	token, err := s.userService.Login(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "token": token})
}

// CurrentUser handles GET /api/users/current
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{id=string,name=string,email=string,avatar=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /users/current [get]
func (s *Server) CurrentUser(c *fiber.Ctx) error {
	identity, ok := requester(c)
	if !ok {
		return nil
	}
	user, err := s.userService.Current(c.UserContext(), identity)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"id":     user.ID,
		"name":   user.Name,
		"email":  user.Email,
		"avatar": user.Avatar,
	})
}

// Logout handles POST /api/users/logout
// @Summary Revoke the current token
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool}
// @Failure 500 {object} models.ErrorResponse
// @Router /users/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	identity, ok := requester(c)
	if !ok {
		return nil
	}
	if err := s.userService.Logout(c.UserContext(), identity); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
