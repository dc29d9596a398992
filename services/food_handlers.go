// services/food_handlers.go
package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"leftover-food-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxPhotoSize = 10 * 1024 * 1024 // 10MB

func actorFrom(c *fiber.Ctx) (models.Actor, bool) {
	actor, ok := c.Locals("actor").(models.Actor)
	return actor, ok && actor.ID != 0
}

func idParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, invalid(name, name+" must be a positive integer")
	}
	return uint(id), nil
}

// CreateFood handles POST /food
func (s *FoodService) CreateFood(c *fiber.Ctx) error {
	var input FoodInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if actor, ok := actorFrom(c); ok {
		input.HostID = actor.ID
	}

	item, err := s.Create(c.UserContext(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "food": item})
}

// GetAllFood handles GET /food?status=
func (s *FoodService) GetAllFood(c *fiber.Ctx) error {
	items, err := s.List(c.UserContext(), ListFilter{Status: models.FoodStatus(c.Query("status"))})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// GetFoodByID handles GET /food/:id
func (s *FoodService) GetFoodByID(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	item, err := s.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

// GetFoodBySlug handles GET /food/slug/:slug
func (s *FoodService) GetFoodBySlug(c *fiber.Ctx) error {
	item, err := s.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

// ClaimFood handles POST /food/:id/claim
func (s *FoodService) ClaimFood(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var input struct {
		NGOID   uint   `json:"ngo_id"`
		NGOName string `json:"ngo_name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if actor, ok := actorFrom(c); ok {
		input.NGOID = actor.ID
		if actor.Name != "" {
			input.NGOName = actor.Name
		}
	}

	item, err := s.Claim(c.UserContext(), id, input.NGOID, input.NGOName)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "food": item})
}

// UpdateFoodStatus handles PATCH /food/:id/status
func (s *FoodService) UpdateFoodStatus(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var input StatusUpdate
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if actor, ok := actorFrom(c); ok {
		input.VolunteerID = actor.ID
		if actor.Name != "" {
			input.VolunteerName = actor.Name
		}
	}

	item, err := s.UpdateStatus(c.UserContext(), id, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

// CompleteFood handles PATCH /food/:id/complete
func (s *FoodService) CompleteFood(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	item, err := s.Complete(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "food": item})
}

// GetBookings handles GET /bookings/:claimant_id
func (s *FoodService) GetBookings(c *fiber.Ctx) error {
	claimantID, err := idParam(c, "claimant_id")
	if err != nil {
		return respondError(c, err)
	}
	items, err := s.ListByClaimant(c.UserContext(), claimantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// GetDeliveries handles GET /deliveries/:volunteer_id
func (s *FoodService) GetDeliveries(c *fiber.Ctx) error {
	volunteerID, err := idParam(c, "volunteer_id")
	if err != nil {
		return respondError(c, err)
	}
	items, err := s.ListByVolunteer(c.UserContext(), volunteerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// GetHostFood handles GET /hosts/:host_id/food
func (s *FoodService) GetHostFood(c *fiber.Ctx) error {
	hostID, err := idParam(c, "host_id")
	if err != nil {
		return respondError(c, err)
	}
	items, err := s.ListByHost(c.UserContext(), hostID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// UploadFoodPhoto handles POST /food/:id/photo (multipart field "photo")
func (s *FoodService) UploadFoodPhoto(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if s.Photos == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "photo storage is not configured"})
	}

	photo, err := c.FormFile("photo")
	if err != nil {
		return respondError(c, invalid("photo", "photo is required"))
	}
	if photo.Size > maxPhotoSize {
		return respondError(c, invalid("photo", "file too large (max 10MB)"))
	}
	if !strings.HasPrefix(photo.Header.Get("Content-Type"), "image/") {
		return respondError(c, invalid("photo", "photo must be an image"))
	}

	if _, err := s.Get(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}

	ext := filepath.Ext(photo.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("food/%d/%s%s", id, uuid.NewString(), strings.ToLower(ext))

	url, err := s.Photos.Save(c.UserContext(), photo, key)
	if err != nil {
		return respondError(c, storeError("upload photo", err))
	}

	item, err := s.SetPhoto(c.UserContext(), id, url)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "food": item})
}
