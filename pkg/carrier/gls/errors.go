package gls

import (
	"github.com/parcelmesh/shipbridge/pkg/carrier"
)

// errorCodes maps known MyGLS error codes to the taxonomy. Initialized
// once, never mutated; unknown codes fall back to HTTP status
// classification in carrier.Translate.
var errorCodes = carrier.CodeTable{
	"AUTHENTICATION_FAILED": {Category: carrier.CategoryAuth, Message: "username or password rejected"},
	"CLIENT_BLOCKED":        {Category: carrier.CategoryAuth, Message: "client account blocked"},
	"INVALID_PARCEL_DATA":   {Category: carrier.CategoryValidation, Message: "parcel data failed validation"},
	"INVALID_ZIPCODE":       {Category: carrier.CategoryValidation, Message: "delivery zip code not served"},
	"REQUEST_LIMIT":         {Category: carrier.CategoryRateLimit, Message: "request limit reached"},
	"SERVICE_UNAVAILABLE":   {Category: carrier.CategoryTransient, Message: "MyGLS service temporarily unavailable"},
	"LABEL_GENERATION":      {Category: carrier.CategoryPermanent, Message: "label generation failed"},
}

// translate converts any failure from the HTTP layer into a taxonomy
// error using the GLS code table.
func translate(err error) *carrier.Error {
	return carrier.Translate(carrierName, errorCodes, err)
}
