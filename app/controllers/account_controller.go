package controllers

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/rigparts/app/resources"
	"github.com/shashiranjanraj/rigparts/app/services"
	"github.com/shashiranjanraj/rigparts/pkg/ctx"
	"github.com/shashiranjanraj/rigparts/pkg/resource"
)

// AccountController handles storefront signup, login and the customer's
// own profile.
type AccountController struct {
	customers *services.CustomerService
}

func NewAccountController(db *gorm.DB) *AccountController {
	return &AccountController{customers: services.NewCustomerService(db)}
}

func sessionBody(s services.Session) resource.Map {
	return resource.Map{
		"token":    s.Token,
		"customer": resources.CustomerResource{}.ToArray(s.Customer),
	}
}

func (ac *AccountController) Signup(c *ctx.Context) {
	var in services.SignupInput
	if !c.BindJSON(&in) {
		return
	}
	s, err := ac.customers.Signup(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(sessionBody(s))
}

func (ac *AccountController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}
	s, err := ac.customers.Login(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(sessionBody(s))
}

func (ac *AccountController) Show(c *ctx.Context) {
	claims, ok := c.Claims()
	if !ok {
		c.Unauthorized()
		return
	}
	cust, err := ac.customers.Profile(c.Context(), claims.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resources.CustomerResource{}.ToArray(cust))
}

func (ac *AccountController) Update(c *ctx.Context) {
	claims, ok := c.Claims()
	if !ok {
		c.Unauthorized()
		return
	}
	var in services.ProfileInput
	if !c.BindJSON(&in) {
		return
	}
	cust, err := ac.customers.UpdateProfile(c.Context(), claims.UserID, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resources.CustomerResource{}.ToArray(cust))
}

// AdminIndex lists customers for the back office.
func (ac *AccountController) AdminIndex(c *ctx.Context) {
	cs, pg, err := ac.customers.List(c.Context(), c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(resource.Collection(resources.CustomerResource{}, cs), pg)
}
