package controllers

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/services"
	"github.com/shashiranjanraj/rigparts/pkg/ctx"
	"github.com/shashiranjanraj/rigparts/pkg/resource"
)

type AdminAuthController struct {
	auth *services.AdminAuthService
}

func NewAdminAuthController(db *gorm.DB) *AdminAuthController {
	return &AdminAuthController{auth: services.NewAdminAuthService(db)}
}

func (ac *AdminAuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}
	token, user, err := ac.auth.Login(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resource.Map{"token": token, "user": user})
}

type createUserRequest struct {
	Name     string `json:"name"     validate:"required,max=255"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role"     validate:"required,in=admin|staff"`
}

// CreateUser adds a back-office account. Admin only.
func (ac *AdminAuthController) CreateUser(c *ctx.Context) {
	var req createUserRequest
	if !c.BindJSON(&req) {
		return
	}
	user, err := ac.auth.CreateUser(c.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(user)
}
