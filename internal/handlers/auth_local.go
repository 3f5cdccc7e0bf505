package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"studiodesk/internal/middleware"
	"studiodesk/internal/models"
	"studiodesk/internal/services"
	"studiodesk/pkg/auth"
)

// LocalAuthHandler handles registration and login for the local account
// system. The first account ever registered becomes the admin.
type LocalAuthHandler struct {
	users   *services.UserService
	jwtAuth *auth.LocalJWTAuth
}

// NewLocalAuthHandler creates a new auth handler
func NewLocalAuthHandler(users *services.UserService, jwtAuth *auth.LocalJWTAuth) *LocalAuthHandler {
	return &LocalAuthHandler{users: users, jwtAuth: jwtAuth}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account
// POST /api/auth/register
func (h *LocalAuthHandler) Register(c *fiber.Ctx) error {
	// Development mode runs without a secret and bypasses auth entirely;
	// issuing tokens is impossible then.
	if h.jwtAuth == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Authentication not configured",
		})
	}

	var req registerRequest
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

	count, err := h.users.Count()
	if err != nil {
		log.Printf("❌ Failed to count users: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Registration failed",
		})
	}
	role := "user"
	if count == 0 {
		role = "admin"
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("❌ Failed to hash password: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Registration failed",
		})
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := h.users.Create(&user); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Email already in use",
		})
	}

	all, err := h.users.List()
	if err == nil {
		middleware.AppData(c).ReplaceUsers(all)
	}

	accessToken, refreshToken, err := h.jwtAuth.GenerateTokens(
		strconv.FormatInt(user.ID, 10), user.Email, user.Role)
	if err != nil {
		log.Printf("❌ Failed to generate tokens: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Registration failed",
		})
	}

	log.Printf("✅ Registered %s (%s)", user.Email, user.Role)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":          user.ToResponse(),
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// Login verifies credentials and issues tokens
// POST /api/auth/login
func (h *LocalAuthHandler) Login(c *fiber.Ctx) error {
	if h.jwtAuth == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Authentication not configured",
		})
	}

	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	user, err := h.users.GetByEmail(req.Email)
	if errors.Is(err, services.ErrUserNotFound) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid email or password",
		})
	}
	if err != nil {
		log.Printf("❌ Login lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Login failed",
		})
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil || !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid email or password",
		})
	}

	if err := h.users.TouchLogin(user.ID); err != nil {
		log.Printf("⚠️  Failed to record login for user %d: %v", user.ID, err)
	}

	accessToken, refreshToken, err := h.jwtAuth.GenerateTokens(
		strconv.FormatInt(user.ID, 10), user.Email, user.Role)
	if err != nil {
		log.Printf("❌ Failed to generate tokens: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Login failed",
		})
	}

	log.Printf("🔑 Login: %s", user.Email)
	return c.JSON(fiber.Map{
		"user":          user.ToResponse(),
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// Me returns the authenticated account
// GET /api/auth/me
func (h *LocalAuthHandler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		// Development bypass puts a non-numeric id in scope.
		return c.JSON(fiber.Map{
			"user": fiber.Map{
				"id":    userID,
				"email": c.Locals("user_email"),
				"role":  c.Locals("user_role"),
			},
		})
	}

	user, err := h.users.GetByID(id)
	if errors.Is(err, services.ErrUserNotFound) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Account no longer exists",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load account",
		})
	}

	return c.JSON(fiber.Map{"user": user.ToResponse()})
}

// Logout acknowledges a logout. Tokens are stateless, so the client simply
// discards them; there is no server-side session to tear down.
// POST /api/auth/logout
func (h *LocalAuthHandler) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Logged out"})
}
