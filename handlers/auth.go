// handlers/auth.go
package handlers

import (
	"leftover-food-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app fiber.Router, userService *services.UserService) {
	app.Post("/auth/register", userService.RegisterUser)
	app.Post("/auth/login", userService.LoginUser)
}
