package controllers

import (
	"github.com/jcorner/storefront/app/models"
	"github.com/jcorner/storefront/app/services"
	"github.com/jcorner/storefront/pkg/ctx"
	"github.com/jcorner/storefront/pkg/logger"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// Register handles POST /users/register.
func (h *UserController) Register(c *ctx.Context) {
	var in services.Registration
	if !c.BindJSON(&in) {
		return
	}
	if _, err := h.users.Register(c.Context(), in); err != nil {
		c.Fail(err)
		return
	}
	c.Created(map[string]string{"message": "Registered Successfully"})
}

// Login handles POST /users/login.
func (h *UserController) Login(c *ctx.Context) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !c.BindJSON(&in) {
		return
	}
	token, err := h.users.Login(c.Context(), in.Email, in.Password)
	if err != nil {
		logger.WithCtx(c.Context()).Info("login rejected", "ip", c.ClientIP(), "error", err)
		c.Fail(err)
		return
	}
	c.OK(map[string]string{"access": token})
}

func (h *UserController) Details(c *ctx.Context) {
	u, err := h.users.Profile(c.Context(), c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(map[string]any{"user": u})
}

func (h *UserController) All(c *ctx.Context) {
	users, err := h.users.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(map[string]any{"users": users})
}

func (h *UserController) SetAdmin(c *ctx.Context)   { h.setAdmin(c, true) }
func (h *UserController) UnsetAdmin(c *ctx.Context) { h.setAdmin(c, false) }

func (h *UserController) setAdmin(c *ctx.Context, admin bool) {
	u, err := h.users.SetAdmin(c.Context(), c.Param("id"), admin)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(map[string]any{"updatedUser": u})
}

func (h *UserController) UpdatePassword(c *ctx.Context) {
	var in struct {
		NewPassword string `json:"newPassword"`
	}
	if !c.BindJSON(&in) {
		return
	}
	if err := h.users.UpdatePassword(c.Context(), c.UserID(), in.NewPassword); err != nil {
		c.Fail(err)
		return
	}
	c.OK(map[string]string{"message": "Password reset successfully"})
}

func (h *UserController) UpdateProfile(c *ctx.Context) {
	var in models.ProfileUpdate
	if !c.BindJSON(&in) {
		return
	}
	u, err := h.users.UpdateProfile(c.Context(), c.UserID(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(map[string]any{"user": u})
}
