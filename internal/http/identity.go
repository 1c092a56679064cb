package http

import "github.com/gofiber/fiber/v2"

// User is the caller identity the session provider resolved upstream. In
// local development no provider runs, so requests fall back to a fixed
// development user.
type User struct {
	Name  string
	Email string
}

const (
	localUserName  = "Local Developer"
	localUserEmail = "dev@localhost"
)

func currentUser(c *fiber.Ctx) User {
	u := User{
		Name:  c.Get("X-User-Name"),
		Email: c.Get("X-User-Email"),
	}
	if u.Name == "" {
		u.Name = localUserName
	}
	if u.Email == "" {
		u.Email = localUserEmail
	}
	return u
}
