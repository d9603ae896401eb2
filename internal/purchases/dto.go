package purchases

import (
	"time"

	"github.com/angelmondragon/itempurchase/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseDTO is returned after a purchase has been booked.
type PurchaseDTO struct {
	ID            uuid.UUID       `json:"id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Status        string          `json:"status"`
	TotalQuantity int             `json:"total_quantity"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	Lines         []LineDTO       `json:"lines"`
	CreatedAt     time.Time       `json:"created_at"`
}

// LineDTO snapshots one purchased item.
type LineDTO struct {
	ItemID    uuid.UUID       `json:"item_id"`
	ItemName  string          `json:"item_name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

func newPurchaseDTO(p *models.Purchase) *PurchaseDTO {
	lines := make([]LineDTO, 0, len(p.Lines))
	for _, line := range p.Lines {
		lines = append(lines, LineDTO{
			ItemID:    line.ItemID,
			ItemName:  line.ItemName,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal,
		})
	}
	return &PurchaseDTO{
		ID:            p.ID,
		AccountID:     p.AccountID,
		Status:        p.Status.String(),
		TotalQuantity: p.TotalQuantity,
		GrandTotal:    p.GrandTotal,
		Lines:         lines,
		CreatedAt:     p.CreatedAt,
	}
}
