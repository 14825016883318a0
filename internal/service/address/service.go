package address

import (
	"context"
	"fmt"
	"strings"

	"storefront-api/internal/domain"
)

type addressRepo interface {
	Create(ctx context.Context, a domain.Address) (*domain.Address, error)
	GetByID(ctx context.Context, userID, id string) (*domain.Address, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Address, error)
	Update(ctx context.Context, a domain.Address) (*domain.Address, error)
	Delete(ctx context.Context, userID, id string) error
	SetDefault(ctx context.Context, userID, id string) (*domain.Address, error)
}

// Book is the per-user address book. Default bookkeeping lives in the
// repository so the flag can never land on two entries.
type Book struct {
	repo addressRepo
}

func New(repo addressRepo) *Book {
	return &Book{repo: repo}
}

func (b *Book) Create(ctx context.Context, a domain.Address) (*domain.Address, error) {
	if err := validate(&a); err != nil {
		return nil, err
	}
	return b.repo.Create(ctx, a)
}

func (b *Book) Get(ctx context.Context, userID, id string) (*domain.Address, error) {
	return b.repo.GetByID(ctx, userID, id)
}

// List returns the user's entries together with the current default id.
func (b *Book) List(ctx context.Context, userID string) ([]domain.Address, string, error) {
	entries, err := b.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	defaultID := ""
	for _, a := range entries {
		if a.IsDefault {
			defaultID = a.ID
			break
		}
	}
	return entries, defaultID, nil
}

func (b *Book) Update(ctx context.Context, a domain.Address) (*domain.Address, error) {
	if err := validate(&a); err != nil {
		return nil, err
	}
	return b.repo.Update(ctx, a)
}

func (b *Book) Delete(ctx context.Context, userID, id string) error {
	return b.repo.Delete(ctx, userID, id)
}

func (b *Book) SetDefault(ctx context.Context, userID, id string) (*domain.Address, error) {
	return b.repo.SetDefault(ctx, userID, id)
}

func validate(a *domain.Address) error {
	if a.Type == "" {
		a.Type = domain.AddressHome
	}
	switch a.Type {
	case domain.AddressHome, domain.AddressWork, domain.AddressBilling, domain.AddressShipping, domain.AddressOther:
	default:
		return fmt.Errorf("%w: unknown address type %q", domain.ErrInvalidInput, a.Type)
	}
	required := []struct{ name, value string }{
		{"label", a.Label},
		{"firstName", a.FirstName},
		{"lastName", a.LastName},
		{"addressLine1", a.AddressLine1},
		{"city", a.City},
		{"state", a.State},
		{"postalCode", a.PostalCode},
		{"country", a.Country},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s required", domain.ErrInvalidInput, f.name)
		}
	}
	return nil
}
