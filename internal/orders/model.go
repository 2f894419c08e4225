package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/modarent/rental-orders/internal/catalog"
)

// Address is the shipping snapshot captured at order-creation time. It is a
// copy, not a reference to a live user profile.
type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	Zip       string `json:"zipcode"`
	Phone     string `json:"phone"`
}

// RentalData carries the per-line rental attributes of this domain: duration,
// dates, chosen size and the computed line total.
type RentalData struct {
	RentalDays   int             `json:"rentalDays"`
	StartDate    time.Time       `json:"startDate"`
	EndDate      time.Time       `json:"endDate"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	SelectedSize string          `json:"selectedSize"`
}

type Item struct {
	ProductID string           `json:"productId"`
	Product   *catalog.Product `json:"product,omitempty"` // resolved on the read path only
	Rental    RentalData       `json:"rentalData"`
}

type Order struct {
	ID               string          `json:"id"`
	UserID           string          `json:"userId"`
	Items            []Item          `json:"items"`
	Address          Address         `json:"address"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	Status           Status          `json:"status"`
	PaymentMethod    string          `json:"paymentMethod"`
	GatewayOrderID   string          `json:"gatewayOrderId,omitempty"`
	GatewayPaymentID string          `json:"gatewayPaymentId,omitempty"`
	GatewaySignature string          `json:"gatewaySignature,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}
