package foxpost

import (
	"github.com/parcelmesh/shipbridge/pkg/carrier"
)

// errorCodes maps known Foxpost error codes to the taxonomy. The table
// is initialized once and never mutated; unknown codes fall back to the
// HTTP status classification in carrier.Translate.
var errorCodes = carrier.CodeTable{
	"INVALID_SIZE":        {Category: carrier.CategoryValidation, Message: "parcel size is not locker compatible"},
	"MISSING_PHONE":       {Category: carrier.CategoryValidation, Message: "recipient phone number is required"},
	"INVALID_DESTINATION": {Category: carrier.CategoryValidation, Message: "destination APM does not exist"},
	"APM_FULL":            {Category: carrier.CategoryTransient, Message: "destination APM has no free compartment"},
	"INVALID_APIKEY":      {Category: carrier.CategoryAuth, Message: "API key rejected"},
	"ACCOUNT_SUSPENDED":   {Category: carrier.CategoryAuth, Message: "account suspended"},
	"RATE_LIMITED":        {Category: carrier.CategoryRateLimit, Message: "too many requests"},
	"COD_NOT_ALLOWED":     {Category: carrier.CategoryPermanent, Message: "cash on delivery not enabled for this account"},
}

// translate converts any failure from the HTTP layer into a taxonomy
// error using the Foxpost code table.
func translate(err error) *carrier.Error {
	return carrier.Translate(carrierName, errorCodes, err)
}
