// handlers/food.go
package handlers

import (
	"leftover-food-system/middleware"
	"leftover-food-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupFoodRoutes(app fiber.Router, foodService *services.FoodService) {
	r := app.Group("/", middleware.ActorContextMiddleware())

	r.Get("/food", foodService.GetAllFood)
	r.Get("/food/stream", foodService.StreamFood)
	r.Get("/food/slug/:slug", foodService.GetFoodBySlug)
	r.Get("/food/:id", foodService.GetFoodByID)
	r.Post("/food", foodService.CreateFood)

	// 🔒 Lifecycle
	r.Post("/food/:id/claim", foodService.ClaimFood)
	r.Patch("/food/:id/status", foodService.UpdateFoodStatus)
	r.Patch("/food/:id/complete", foodService.CompleteFood)
	r.Post("/food/:id/photo", foodService.UploadFoodPhoto)

	r.Get("/bookings/:claimant_id", foodService.GetBookings)
	r.Get("/deliveries/:volunteer_id", foodService.GetDeliveries)
	r.Get("/hosts/:host_id/food", foodService.GetHostFood)
}
