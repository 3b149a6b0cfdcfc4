package trainer

import (
	"time"

	"github.com/nekogravitycat/gym-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound  = apperror.NotFound("trainer not found")
	ErrEmptyName = apperror.Validation("name cannot be empty")
)

// Trainer is a gym trainer who offers appointment slots.
// Available acts as a kill switch: an unavailable trainer has no bookable slots.
type Trainer struct {
	ID        string
	Name      string
	Specialty string
	Available bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter defines parameters for listing trainers.
type Filter struct {
	Available *bool
	Name      string // case-insensitive substring match
	Page      int
	PageSize  int
}
