// internal/models/buyer.go
package models

// BuyerContext is the closed set of caller identities the ordering and
// booking pipelines accept. Pricing and validation type-switch over the
// three variants instead of branching on nullable fields.
type BuyerContext interface {
	isBuyerContext()
}

// GuestBuyer is an unauthenticated checkout caller.
type GuestBuyer struct {
	Name  string
	Email string
	Phone string
}

// RetailBuyer is an authenticated user without a business account.
type RetailBuyer struct {
	User *User
}

// B2BBuyer is an authenticated member of an approved business.
type B2BBuyer struct {
	User     *User
	Business *Business
}

func (GuestBuyer) isBuyerContext()  {}
func (RetailBuyer) isBuyerContext() {}
func (B2BBuyer) isBuyerContext()    {}
