package purchases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/itempurchase/pkg/db"
	"github.com/angelmondragon/itempurchase/pkg/db/models"
	"github.com/angelmondragon/itempurchase/pkg/enums"
	pkgerrors "github.com/angelmondragon/itempurchase/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const maxIdempotencyKeyLength = 255

var errDuplicateKey = errors.New("purchase already booked for idempotency key")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service books purchases from cart snapshots.
type Service interface {
	CreatePurchase(ctx context.Context, userID uuid.UUID, input CreatePurchaseInput) (*PurchaseDTO, error)
}

// CreatePurchaseInput is the cart snapshot submitted at checkout. A non-empty
// IdempotencyKey makes the booking replay-safe per account.
type CreatePurchaseInput struct {
	AccountID      uuid.UUID
	Lines          []LineInput
	IdempotencyKey string
}

// LineInput references an item and the desired quantity. Client prices are never trusted.
type LineInput struct {
	ItemID   uuid.UUID
	Quantity int
}

type service struct {
	tx   txRunner
	repo *Repository
}

// NewService builds the purchase service.
func NewService(tx txRunner, repo *Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("purchase repository required")
	}
	return &service{tx: tx, repo: repo}, nil
}

// CreatePurchase books every line or none of them. A repeated idempotency key
// returns the purchase booked the first time.
func (s *service) CreatePurchase(ctx context.Context, userID uuid.UUID, input CreatePurchaseInput) (*PurchaseDTO, error) {
	lines, err := validateInput(input)
	if err != nil {
		return nil, err
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	if key != "" {
		if existing, err := s.findByKey(ctx, input.AccountID, key); existing != nil || err != nil {
			return existing, err
		}
	}

	var purchaseID uuid.UUID
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		exists, err := repo.AccountExists(ctx, input.AccountID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load account")
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}

		ids := make([]uuid.UUID, 0, len(lines))
		for _, line := range lines {
			ids = append(ids, line.ItemID)
		}
		items, err := repo.FindItems(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load items")
		}

		purchase := &models.Purchase{
			AccountID:  input.AccountID,
			Status:     enums.PurchaseStatusPlaced,
			GrandTotal: decimal.Zero,
		}
		if key != "" {
			purchase.IdempotencyKey = &key
		}
		if userID != uuid.Nil {
			createdBy := userID
			purchase.CreatedByID = &createdBy
		}

		var missing []string
		for _, line := range lines {
			item, ok := items[line.ItemID]
			if !ok {
				missing = append(missing, line.ItemID.String())
				continue
			}
			lineTotal := item.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			purchase.Lines = append(purchase.Lines, models.PurchaseLine{
				ItemID:    item.ID,
				ItemName:  item.Name,
				UnitPrice: item.Price,
				Quantity:  line.Quantity,
				LineTotal: lineTotal,
			})
			purchase.TotalQuantity += line.Quantity
			purchase.GrandTotal = purchase.GrandTotal.Add(lineTotal)
		}
		if len(missing) > 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "one or more items no longer exist").
				WithDetails(map[string]any{"missing_item_ids": missing})
		}

		created, err := repo.Create(ctx, purchase)
		if err != nil {
			if key != "" && db.IsUniqueViolation(err, "") {
				return errDuplicateKey
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert purchase")
		}
		purchaseID = created.ID
		return nil
	})
	if errors.Is(err, errDuplicateKey) {
		// a concurrent request with the same key won the insert
		existing, findErr := s.findByKey(ctx, input.AccountID, key)
		if findErr == nil && existing == nil {
			findErr = pkgerrors.New(pkgerrors.CodeConflict, "purchase is being booked, retry later")
		}
		return existing, findErr
	}
	if err != nil {
		return nil, err
	}

	purchase, err := s.repo.FindByID(ctx, purchaseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload purchase")
	}
	return newPurchaseDTO(purchase), nil
}

func (s *service) findByKey(ctx context.Context, accountID uuid.UUID, key string) (*PurchaseDTO, error) {
	purchase, err := s.repo.FindByIdempotencyKey(ctx, accountID, key)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load purchase by idempotency key")
	}
	return newPurchaseDTO(purchase), nil
}

// validateInput collects every problem with the snapshot and merges repeated item ids.
func validateInput(input CreatePurchaseInput) ([]LineInput, error) {
	var errs error
	if input.AccountID == uuid.Nil {
		errs = multierr.Append(errs, fmt.Errorf("account_id is required"))
	}
	if len(input.Lines) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("at least one line is required"))
	}
	if len(strings.TrimSpace(input.IdempotencyKey)) > maxIdempotencyKeyLength {
		errs = multierr.Append(errs, fmt.Errorf("idempotency key must be at most %d characters", maxIdempotencyKeyLength))
	}

	merged := make([]LineInput, 0, len(input.Lines))
	index := map[uuid.UUID]int{}
	for i, line := range input.Lines {
		if line.ItemID == uuid.Nil {
			errs = multierr.Append(errs, fmt.Errorf("lines[%d].item_id is required", i))
			continue
		}
		if line.Quantity < 1 {
			errs = multierr.Append(errs, fmt.Errorf("lines[%d].quantity must be at least 1", i))
			continue
		}
		if pos, ok := index[line.ItemID]; ok {
			merged[pos].Quantity += line.Quantity
			continue
		}
		index[line.ItemID] = len(merged)
		merged = append(merged, line)
	}

	if errs != nil {
		details := []string{}
		for _, err := range multierr.Errors(errs) {
			details = append(details, err.Error())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "invalid purchase request").WithDetails(details)
	}
	return merged, nil
}
