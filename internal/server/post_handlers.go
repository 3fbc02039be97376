package server

import (
	"strconv"

	"github.com/npkumar/social-coder/internal/middleware"
	"github.com/npkumar/social-coder/internal/service"

	"github.com/gofiber/fiber/v2"
)

// PostsTest handles GET /api/posts/test
func (s *Server) PostsTest(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Posts!"})
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.PostInput true "Post text, optional name and avatar"
// @Success 200 {object} models.Post
// @Failure 400 {object} map[string]string
// @Failure 401 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	identity, ok := requester(c)
	if !ok {
		return nil
	}
	var req service.PostInput
	if !parseBody(c, &req) {
		return nil
	}

	post, err := s.postService.Create(c.UserContext(), identity, req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(post)
}

// GetPosts handles GET /api/posts
// @Summary List posts, newest first
// @Tags posts
// @Produce json
// @Success 200 {array} models.Post
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.List(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete own post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} object{success=bool}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	identity, ok := requester(c)
	if !ok {
		return nil
	}
	if err := s.postService.Delete(c.UserContext(), identity, c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// LikePost handles POST /api/posts/:id/like
// @Summary Like a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	identity, ok := requester(c)
	if !ok {
		return nil
	}
	post, err := s.postService.Like(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(post)
}

// UnlikePost handles POST /api/posts/:id/unlike
// @Summary Remove a like
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/unlike [post]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	identity, ok := requester(c)
	if !ok {
		return nil
	}
	post, err := s.postService.Unlike(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(post)
}

// AddComment handles POST /api/posts/:id/comment
// @Summary Comment on a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body service.PostInput true "Comment text"
// @Success 200 {object} models.Post
// @Failure 400 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comment [post]
func (s *Server) AddComment(c *fiber.Ctx) error {
	identity, ok := requester(c)
	if !ok {
		return nil
	}
	var req service.PostInput
	if !parseBody(c, &req) {
		return nil
	}
	post, err := s.postService.AddComment(c.UserContext(), identity, c.Params("id"), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(post)
}

// DeleteComment handles DELETE /api/posts/:id/comment/:comment_id
// The X-Comment-Removed header is false when no comment of the requester matched.
// @Summary Delete own comment
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param comment_id path string true "Comment ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comment/{comment_id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	identity, ok := requester(c)
	if !ok {
		return nil
	}
	commentID := c.Params("comment_id")
	post, removed, err := s.postService.DeleteComment(c.UserContext(), identity, c.Params("id"), commentID)
	if err != nil {
		return fail(c, err)
	}
	if !removed {
		middleware.Logger.WarnContext(c.UserContext(), "comment not removed",
			"post_id", post.ID, "comment_id", commentID)
	}
	c.Set("X-Comment-Removed", strconv.FormatBool(removed))
	return c.JSON(post)
}
