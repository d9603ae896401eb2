package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/itempurchase/pkg/enums"
)

// Purchase is created atomically from a cart snapshot.
type Purchase struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	AccountID      uuid.UUID            `gorm:"column:account_id;type:uuid;not null;uniqueIndex:uq_purchases_account_idempotency_key,priority:1"`
	IdempotencyKey *string              `gorm:"column:idempotency_key;uniqueIndex:uq_purchases_account_idempotency_key,priority:2"`
	CreatedByID    *uuid.UUID           `gorm:"column:created_by_id;type:uuid"`
	Status         enums.PurchaseStatus `gorm:"column:status;not null;default:'placed'"`
	TotalQuantity  int                  `gorm:"column:total_quantity;not null"`
	GrandTotal     decimal.Decimal      `gorm:"column:grand_total;type:numeric(12,2);not null"`
	Lines          []PurchaseLine       `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the id client-side.
func (p *Purchase) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PurchaseLine snapshots the item name and price at checkout time.
type PurchaseLine struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	PurchaseID uuid.UUID       `gorm:"column:purchase_id;type:uuid;not null"`
	ItemID     uuid.UUID       `gorm:"column:item_id;type:uuid;not null"`
	ItemName   string          `gorm:"column:item_name;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity   int             `gorm:"column:quantity;not null"`
	LineTotal  decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (l *PurchaseLine) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
