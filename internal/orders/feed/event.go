package feed

import (
	"github.com/google/uuid"

	"github.com/mmfactory/pizzeria-backend/pkg/db/models"
	"github.com/mmfactory/pizzeria-backend/pkg/enums"
)

// Event is one change observed on the orders table. Order is nil for
// deletes; OrderID is always set.
type Event struct {
	Op      enums.FeedOp  `json:"op"`
	OrderID uuid.UUID     `json:"order_id"`
	Order   *models.Order `json:"order,omitempty"`
}
