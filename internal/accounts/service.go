package accounts

import (
	"context"
	"fmt"

	"github.com/angelmondragon/itempurchase/pkg/db"
	pkgerrors "github.com/angelmondragon/itempurchase/pkg/errors"
	"github.com/google/uuid"
)

// Service exposes account and user profile reads.
type Service interface {
	GetAccount(ctx context.Context, accountID uuid.UUID) (*AccountDTO, error)
	CurrentUser(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
}

type service struct {
	repo *Repository
}

// NewService constructs the profile service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetAccount(ctx context.Context, accountID uuid.UUID) (*AccountDTO, error) {
	account, err := s.repo.FindAccount(ctx, accountID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load account")
	}
	return newAccountDTO(account), nil
}

func (s *service) CurrentUser(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindUser(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}
	return newUserDTO(user), nil
}
