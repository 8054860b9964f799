package mpl

import (
	"github.com/parcelmesh/shipbridge/pkg/carrier"
)

// errorCodes maps known MPL error codes to the taxonomy. Initialized
// once, never mutated; unknown codes fall back to HTTP status
// classification in carrier.Translate.
var errorCodes = carrier.CodeTable{
	"INVALID_TOKEN":         {Category: carrier.CategoryAuth, Message: "access token rejected"},
	"TOKEN_EXPIRED":         {Category: carrier.CategoryAuth, Message: "access token expired"},
	"AGREEMENT_MISSING":     {Category: carrier.CategoryAuth, Message: "no agreement for requested service"},
	"INVALID_ADDRESS":       {Category: carrier.CategoryValidation, Message: "address failed validation"},
	"INVALID_WEIGHT":        {Category: carrier.CategoryValidation, Message: "weight outside allowed range"},
	"MISSING_PHONE":         {Category: carrier.CategoryValidation, Message: "recipient phone required for delivery point"},
	"TOO_MANY_REQUESTS":     {Category: carrier.CategoryRateLimit, Message: "request quota exceeded"},
	"SERVICE_MAINTENANCE":   {Category: carrier.CategoryTransient, Message: "MPL service under maintenance"},
	"DELIVERY_POINT_CLOSED": {Category: carrier.CategoryPermanent, Message: "delivery point permanently closed"},
}

// translate converts any failure from the HTTP layer into a taxonomy
// error using the MPL code table.
func translate(err error) *carrier.Error {
	return carrier.Translate(carrierName, errorCodes, err)
}
