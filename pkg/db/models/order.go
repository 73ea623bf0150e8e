package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmfactory/pizzeria-backend/pkg/enums"
)

// OrderItemExtra is the frozen snapshot of one selected add-on.
type OrderItemExtra struct {
	ExtraID    string          `json:"extra_id"`
	ExtraName  string          `json:"extra_name"`
	ExtraPrice decimal.Decimal `json:"extra_price"`
	Quantity   int             `json:"quantity"`
}

// OrderItem is the frozen snapshot of one cart line taken at submission
// time. It never reflects later catalog changes.
type OrderItem struct {
	MenuItemID          string           `json:"menu_item_id"`
	MenuItemName        string           `json:"menu_item_name"`
	MenuItemPrice       decimal.Decimal  `json:"menu_item_price"`
	Quantity            int              `json:"quantity"`
	Extras              []OrderItemExtra `json:"extras"`
	SpecialInstructions string           `json:"special_instructions,omitempty"`
	ItemTotal           decimal.Decimal  `json:"item_total"`
}

// Order is the durable record of a submitted purchase.
type Order struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber         string              `gorm:"column:order_number;not null" json:"order_number"`
	CustomerName        string              `gorm:"column:customer_name;not null" json:"customer_name"`
	CustomerPhone       string              `gorm:"column:customer_phone;not null" json:"customer_phone"`
	CustomerEmail       *string             `gorm:"column:customer_email" json:"customer_email,omitempty"`
	Items               []OrderItem         `gorm:"column:items;type:jsonb;serializer:json;not null" json:"items"`
	Subtotal            decimal.Decimal     `gorm:"column:subtotal;type:numeric(10,2);not null" json:"subtotal"`
	Tax                 decimal.Decimal     `gorm:"column:tax;type:numeric(10,2);not null" json:"tax"`
	Total               decimal.Decimal     `gorm:"column:total;type:numeric(10,2);not null" json:"total"`
	Status              enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	PaymentStatus       enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'" json:"payment_status"`
	PaymentIntentID     *string             `gorm:"column:payment_intent_id" json:"payment_intent_id,omitempty"`
	EstimatedPickupTime *time.Time          `gorm:"column:estimated_pickup_time" json:"estimated_pickup_time,omitempty"`
	Notes               *string             `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName pins the orders table.
func (Order) TableName() string {
	return "orders"
}
