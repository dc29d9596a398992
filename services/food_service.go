// services/food_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"leftover-food-system/models"
	"leftover-food-system/utils"

	"github.com/gosimple/slug"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

// FoodService owns the food_items lifecycle: available → claimed → in_transit → completed.
type FoodService struct {
	DB     *gorm.DB
	Clock  clockwork.Clock
	Events *Broker
	Photos utils.PhotoStore
}

func NewFoodService(db *gorm.DB, clock clockwork.Clock, events *Broker, photos utils.PhotoStore) *FoodService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &FoodService{DB: db, Clock: clock, Events: events, Photos: photos}
}

// ListFilter narrows List. A zero value returns everything.
type ListFilter struct {
	Status models.FoodStatus
}

// StatusUpdate is the body of PATCH /food/:id/status.
type StatusUpdate struct {
	Status        models.FoodStatus `json:"status"`
	VolunteerID   uint              `json:"volunteer_id"`
	VolunteerName string            `json:"volunteer_name"`
}

func (s *FoodService) now() time.Time {
	// Postgres keeps microseconds; truncating keeps round trips exact.
	return s.Clock.Now().UTC().Truncate(time.Microsecond)
}

func (s *FoodService) publish(kind string, item *models.FoodItem) {
	if s.Events == nil || item == nil {
		return
	}
	s.Events.Publish(FoodEvent{Type: kind, Food: *item, At: s.now()})
}

// Create validates the input and stores a new available listing.
func (s *FoodService) Create(ctx context.Context, in FoodInput) (*models.FoodItem, error) {
	in, err := in.Validate()
	if err != nil {
		return nil, err
	}

	item := &models.FoodItem{
		HostID:       in.HostID,
		Title:        in.Title,
		Description:  in.Description,
		Quantity:     in.Quantity,
		FoodType:     in.FoodType,
		EventName:    in.EventName,
		ContactPhone: in.ContactPhone,
		PickupTime:   in.PickupTime,
		Address:      in.Address,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		Status:       models.StatusAvailable,
		CreatedAt:    s.now(),
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		// the slug embeds the id, so it can only be written once the row exists
		item.Slug = listingSlug(item)
		return tx.Model(item).Update("slug", item.Slug).Error
	})
	if err != nil {
		return nil, storeError("create listing", err)
	}

	log.Printf("🍱 [FOOD] Listing %d created by host %d: %q", item.ID, item.HostID, item.Title)
	s.publish(EventCreated, item)
	return item, nil
}

func listingSlug(item *models.FoodItem) string {
	base := item.Title
	if item.EventName != "" {
		base = item.EventName + " " + item.Title
	}
	return slug.Make(base + " " + strconv.FormatUint(uint64(item.ID), 10))
}

// List returns listings newest first, optionally filtered by status.
func (s *FoodService) List(ctx context.Context, filter ListFilter) ([]models.FoodItem, error) {
	q := s.DB.WithContext(ctx).Model(&models.FoodItem{})
	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, invalid("status", "unknown status "+strconv.Quote(string(filter.Status)))
		}
		q = q.Where("status = ?", string(filter.Status))
	}

	items := []models.FoodItem{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return nil, storeError("list listings", err)
	}
	return items, nil
}

func (s *FoodService) Get(ctx context.Context, id uint) (*models.FoodItem, error) {
	var item models.FoodItem
	if err := s.DB.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeError("get listing", err)
	}
	return &item, nil
}

func (s *FoodService) GetBySlug(ctx context.Context, value string) (*models.FoodItem, error) {
	var item models.FoodItem
	if err := s.DB.WithContext(ctx).First(&item, "slug = ?", value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeError("get listing by slug", err)
	}
	return &item, nil
}

// Claim moves an available listing to claimed. The status guard lives in the
// UPDATE itself, so of any number of concurrent claims exactly one matches a row.
func (s *FoodService) Claim(ctx context.Context, id, claimantID uint, claimantName string) (*models.FoodItem, error) {
	claimantName = clean(claimantName)
	if claimantID == 0 {
		return nil, invalid("ngo_id", "ngo_id is required")
	}
	if claimantName == "" {
		return nil, invalid("ngo_name", "ngo_name is required")
	}

	res := s.DB.WithContext(ctx).Model(&models.FoodItem{}).
		Where("id = ? AND status = ?", id, string(models.StatusAvailable)).
		Updates(map[string]interface{}{
			"status":          string(models.StatusClaimed),
			"claimed_by":      claimantID,
			"claimed_by_name": claimantName,
			"claimed_at":      s.now(),
		})
	if res.Error != nil {
		claimsTotal.WithLabelValues("error").Inc()
		return nil, storeError("claim listing", res.Error)
	}

	if res.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				claimsTotal.WithLabelValues("not_found").Inc()
			} else {
				claimsTotal.WithLabelValues("error").Inc()
			}
			return nil, err
		}
		claimsTotal.WithLabelValues("already_claimed").Inc()
		log.Printf("⚠️  [CLAIM] Listing %d already claimed, rejected claimant %d", id, claimantID)
		return nil, ErrAlreadyClaimed
	}

	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	claimsTotal.WithLabelValues("claimed").Inc()
	transitionsTotal.WithLabelValues(string(models.StatusClaimed)).Inc()
	log.Printf("✅ [CLAIM] Listing %d claimed by %d (%s)", id, claimantID, claimantName)
	s.publish(EventClaimed, item)
	return item, nil
}

// AcceptDelivery moves a claimed listing to in_transit and records the volunteer.
func (s *FoodService) AcceptDelivery(ctx context.Context, id, volunteerID uint, volunteerName string) (*models.FoodItem, error) {
	if volunteerID == 0 {
		return nil, invalid("volunteer_id", "volunteer_id is required")
	}

	updates := map[string]interface{}{
		"status":        string(models.StatusInTransit),
		"volunteer_id":  volunteerID,
		"in_transit_at": s.now(),
	}
	if name := clean(volunteerName); name != "" {
		updates["volunteer_name"] = name
	}

	item, err := s.transition(ctx, "accept delivery", id, models.StatusInTransit, updates, models.StatusClaimed)
	if err != nil {
		return nil, err
	}
	log.Printf("🚚 [FOOD] Listing %d in transit with volunteer %d", id, volunteerID)
	s.publish(EventInTransit, item)
	return item, nil
}

// Complete marks a claimed or in-transit listing as completed. Completing an
// already completed listing returns it unchanged.
func (s *FoodService) Complete(ctx context.Context, id uint) (*models.FoodItem, error) {
	updates := map[string]interface{}{
		"status":       string(models.StatusCompleted),
		"completed_at": s.now(),
	}

	item, err := s.transition(ctx, "complete listing", id, models.StatusCompleted, updates,
		models.StatusClaimed, models.StatusInTransit)
	if errors.Is(err, ErrInvalidTransition) {
		current, getErr := s.Get(ctx, id)
		if getErr == nil && current.Status == models.StatusCompleted {
			return current, nil
		}
	}
	if err != nil {
		return nil, err
	}
	log.Printf("🏁 [FOOD] Listing %d completed", id)
	s.publish(EventCompleted, item)
	return item, nil
}

// UpdateStatus dispatches PATCH /food/:id/status onto the lifecycle operations.
func (s *FoodService) UpdateStatus(ctx context.Context, id uint, upd StatusUpdate) (*models.FoodItem, error) {
	switch upd.Status {
	case models.StatusInTransit:
		return s.AcceptDelivery(ctx, id, upd.VolunteerID, upd.VolunteerName)
	case models.StatusCompleted:
		return s.Complete(ctx, id)
	case models.StatusClaimed:
		return nil, invalid("status", "use POST /food/:id/claim to claim a listing")
	case models.StatusAvailable:
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: listings never return to available", ErrInvalidTransition)
	case "":
		return nil, invalid("status", "status is required")
	default:
		return nil, invalid("status", "unknown status "+strconv.Quote(string(upd.Status)))
	}
}

// transition applies updates only while the row is in one of the from states.
func (s *FoodService) transition(ctx context.Context, op string, id uint, to models.FoodStatus, updates map[string]interface{}, from ...models.FoodStatus) (*models.FoodItem, error) {
	fromStates := make([]string, len(from))
	for i, f := range from {
		fromStates[i] = string(f)
	}

	res := s.DB.WithContext(ctx).Model(&models.FoodItem{}).
		Where("id = ? AND status IN ?", id, fromStates).
		Updates(updates)
	if res.Error != nil {
		return nil, storeError(op, res.Error)
	}

	if res.RowsAffected == 0 {
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, current.Status, to)
	}

	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	transitionsTotal.WithLabelValues(string(to)).Inc()
	return item, nil
}

// ListByClaimant returns everything claimant has claimed, most recent claim first.
func (s *FoodService) ListByClaimant(ctx context.Context, claimantID uint) ([]models.FoodItem, error) {
	items := []models.FoodItem{}
	if err := s.DB.WithContext(ctx).
		Where("claimed_by = ?", claimantID).
		Order("claimed_at DESC").Order("id DESC").
		Find(&items).Error; err != nil {
		return nil, storeError("list bookings", err)
	}
	return items, nil
}

// ListByVolunteer returns the deliveries a volunteer accepted, most recent first.
func (s *FoodService) ListByVolunteer(ctx context.Context, volunteerID uint) ([]models.FoodItem, error) {
	items := []models.FoodItem{}
	if err := s.DB.WithContext(ctx).
		Where("volunteer_id = ?", volunteerID).
		Order("in_transit_at DESC").Order("id DESC").
		Find(&items).Error; err != nil {
		return nil, storeError("list deliveries", err)
	}
	return items, nil
}

func (s *FoodService) ListByHost(ctx context.Context, hostID uint) ([]models.FoodItem, error) {
	items := []models.FoodItem{}
	if err := s.DB.WithContext(ctx).
		Where("host_id = ?", hostID).
		Order("created_at DESC").Order("id DESC").
		Find(&items).Error; err != nil {
		return nil, storeError("list host listings", err)
	}
	return items, nil
}

// SetPhoto records the public URL of an uploaded photo. Lifecycle fields are untouched.
func (s *FoodService) SetPhoto(ctx context.Context, id uint, url string) (*models.FoodItem, error) {
	res := s.DB.WithContext(ctx).Model(&models.FoodItem{}).Where("id = ?", id).Update("photo_url", url)
	if res.Error != nil {
		return nil, storeError("set photo", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}
