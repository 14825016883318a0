package domain

import "time"

type AddressType string

const (
	AddressHome     AddressType = "home"
	AddressWork     AddressType = "work"
	AddressBilling  AddressType = "billing"
	AddressShipping AddressType = "shipping"
	AddressOther    AddressType = "other"
)

// Address is a saved address-book entry. Its fields mirror OrderAddress so
// an entry can be dropped straight into a checkout request. At most one
// entry per user carries IsDefault.
type Address struct {
	ID           string      `json:"id"`
	UserID       string      `json:"userId"`
	Label        string      `json:"label"`
	Type         AddressType `json:"type"`
	FirstName    string      `json:"firstName"`
	LastName     string      `json:"lastName"`
	Company      string      `json:"company,omitempty"`
	AddressLine1 string      `json:"addressLine1"`
	AddressLine2 string      `json:"addressLine2,omitempty"`
	City         string      `json:"city"`
	State        string      `json:"state"`
	PostalCode   string      `json:"postalCode"`
	Country      string      `json:"country"`
	Phone        string      `json:"phone,omitempty"`
	IsDefault    bool        `json:"isDefault"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// ToOrderAddress projects the entry into the snapshot shape orders store.
func (a Address) ToOrderAddress() OrderAddress {
	return OrderAddress{
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Company:      a.Company,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
		Phone:        a.Phone,
	}
}
