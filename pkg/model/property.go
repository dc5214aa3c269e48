package model

import "github.com/shopspring/decimal"

// Property is read from the directory and never written by this service.
type Property struct {
	ID           string          `json:"id" bson:"_id"`
	OwnerID      string          `json:"owner_id" bson:"owner_id"`
	Title        string          `json:"title" bson:"title"`
	Capacity     int             `json:"capacity" bson:"capacity"`
	NightlyPrice decimal.Decimal `json:"nightly_price" bson:"nightly_price"`
}
