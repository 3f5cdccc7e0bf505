package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"studiodesk/internal/middleware"
	"studiodesk/internal/models"
	"studiodesk/internal/services"
	"studiodesk/pkg/auth"
)

// UserHandler is the admin surface for account management. Accounts live in
// SQLite; after every mutation the store's read-only user mirror is rebuilt
// so assignments and task ownership resolve names without touching the
// database.
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) mirror(c *fiber.Ctx) {
	all, err := h.users.List()
	if err != nil {
		log.Printf("⚠️  Failed to refresh user mirror: %v", err)
		return
	}
	middleware.AppData(c).ReplaceUsers(all)
}

// List returns all accounts
// GET /api/admin/users
func (h *UserHandler) List(c *fiber.Ctx) error {
	all, err := h.users.List()
	if err != nil {
		log.Printf("❌ Failed to list users: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list users",
		})
	}

	out := make([]models.UserResponse, 0, len(all))
	for i := range all {
		out = append(out, all[i].ToResponse())
	}
	return c.JSON(fiber.Map{"data": out})
}

// Create adds an account
// POST /api/admin/users
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req models.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Email == "" || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and email are required",
		})
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if req.Role != "admin" {
		req.Role = "user"
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("❌ Failed to hash password: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create user",
		})
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := h.users.Create(&user); err != nil {
		log.Printf("❌ Failed to create user: %v", err)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Email already in use",
		})
	}

	h.mirror(c)
	log.Printf("✅ User %d (%s) created", user.ID, user.Email)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": user.ToResponse()})
}

// Update changes an account's profile fields
// PUT /api/admin/users/:id
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}

	var req models.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Role != "admin" {
		req.Role = "user"
	}

	user, err := h.users.Update(int64(id), &req)
	if errors.Is(err, services.ErrUserNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}
	if err != nil {
		log.Printf("❌ Failed to update user %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update user",
		})
	}

	h.mirror(c)
	return c.JSON(fiber.Map{"data": user.ToResponse()})
}

// Delete removes an account. Assignments pointing at it keep their user id
// and render a placeholder name.
// DELETE /api/admin/users/:id
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}

	err = h.users.Delete(int64(id))
	if errors.Is(err, services.ErrUserNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}
	if err != nil {
		log.Printf("❌ Failed to delete user %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete user",
		})
	}

	h.mirror(c)
	log.Printf("🗑️  User %d deleted", id)
	return c.JSON(fiber.Map{"deleted": id})
}
