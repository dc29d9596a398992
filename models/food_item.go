// models/food_item.go
package models

import "time"

// FoodStatus is the lifecycle state of a listing.
type FoodStatus string

const (
	StatusAvailable FoodStatus = "available"
	StatusClaimed   FoodStatus = "claimed"
	StatusInTransit FoodStatus = "in_transit"
	StatusCompleted FoodStatus = "completed"
)

const (
	FoodTypeVeg    = "veg"
	FoodTypeNonVeg = "non-veg"
	FoodTypeMixed  = "mixed"
)

// Valid reports whether s is one of the four lifecycle states.
func (s FoodStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusClaimed, StatusInTransit, StatusCompleted:
		return true
	}
	return false
}

// FoodItem is a single leftover-food listing. Rows are never deleted.
type FoodItem struct {
	ID     uint `json:"id" gorm:"primaryKey;autoIncrement"`
	HostID uint `json:"host_id" gorm:"index;not null"`

	Title        string `json:"title" gorm:"type:varchar(255);not null"`
	Description  string `json:"description" gorm:"type:text"`
	Quantity     string `json:"quantity" gorm:"type:varchar(100)"`
	FoodType     string `json:"food_type" gorm:"type:varchar(50)"`
	EventName    string `json:"event_name" gorm:"type:varchar(255)"`
	ContactPhone string `json:"contact_phone" gorm:"type:varchar(20)"`
	PickupTime   string `json:"pickup_time" gorm:"type:varchar(100)"`
	Address      string `json:"address" gorm:"type:text"`

	// 📍 Optional coordinates, filled by the host or the geocode worker
	Latitude  *float64 `json:"latitude" gorm:"type:decimal(9,6)"`
	Longitude *float64 `json:"longitude" gorm:"type:decimal(9,6)"`

	Slug     string `json:"slug" gorm:"type:varchar(300);index"`
	PhotoURL string `json:"photo_url,omitempty"`

	Status FoodStatus `json:"status" gorm:"type:varchar(50);default:'available';index;not null"`

	// 🔒 Set together, in one conditional update, when the listing is claimed
	ClaimedBy     *uint      `json:"claimed_by" gorm:"index"`
	ClaimedByName *string    `json:"claimed_by_name" gorm:"type:varchar(255)"`
	ClaimedAt     *time.Time `json:"claimed_at"`

	// 🚚 Delivery
	VolunteerID   *uint      `json:"volunteer_id" gorm:"index"`
	VolunteerName *string    `json:"volunteer_name" gorm:"type:varchar(255)"`
	InTransitAt   *time.Time `json:"in_transit_at"`
	CompletedAt   *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (FoodItem) TableName() string {
	return "food_items"
}
