package accounts

import (
	"github.com/angelmondragon/itempurchase/pkg/db/models"
	"github.com/google/uuid"
)

// AccountDTO carries the account display fields.
type AccountDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	AccountNumber *string   `json:"account_number,omitempty"`
	Industry      *string   `json:"industry,omitempty"`
}

// UserDTO describes the authenticated user.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsManager bool      `json:"is_manager"`
}

func newAccountDTO(account *models.Account) *AccountDTO {
	return &AccountDTO{
		ID:            account.ID,
		Name:          account.Name,
		AccountNumber: account.AccountNumber,
		Industry:      account.Industry,
	}
}

func newUserDTO(user *models.User) *UserDTO {
	return &UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		IsManager: user.IsManager,
	}
}
