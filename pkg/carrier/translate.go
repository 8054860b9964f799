package carrier

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// CodeClass is one entry of a per-carrier error-code table.
type CodeClass struct {
	Category Category
	Message  string
}

// CodeTable maps a carrier's own error codes to a category and a human
// message. Tables are package-level constants in each adapter and are
// never mutated after init.
type CodeTable map[string]CodeClass

// HTTPError captures a transport failure in a client-agnostic shape:
// either a non-2xx response (StatusCode, Header, Body) or a network-level
// failure (Err set, StatusCode zero). Adapters build one of these at the
// HTTP layer and hand it to Translate.
type HTTPError struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Err        error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if len(e.Body) > 0 {
		return "HTTP " + strconv.Itoa(e.StatusCode) + ": " + string(e.Body)
	}
	return "HTTP " + strconv.Itoa(e.StatusCode)
}

// wireError probes the conventional field names carriers use for error
// codes and messages. "error" may itself be a string code or an object.
type wireError struct {
	Error            json.RawMessage `json:"error"`
	Code             string          `json:"code"`
	ErrorCode        string          `json:"errorCode"`
	ErrorCodeSnake   string          `json:"error_code"`
	Message          string          `json:"message"`
	ErrorDescription string          `json:"error_description"`
}

// Translate converts a raw transport failure into exactly one *Error.
// It is stateless and deterministic: the same input always yields the
// same category.
//
// Classification order: already-translated errors pass through; a known
// carrier code from the body wins; otherwise the HTTP status decides
// (400 validation, 401/403 auth, 429 rate limit with Retry-After, >=500
// transient); a failure with no status at all is a network problem and
// therefore transient; everything else is permanent, never swallowed.
func Translate(carrierName string, table CodeTable, raw error) *Error {
	if raw == nil {
		return NewError(carrierName, "unknown carrier failure", CategoryPermanent)
	}
	if cerr, ok := raw.(*Error); ok {
		return cerr
	}

	herr, ok := raw.(*HTTPError)
	if !ok {
		// Pure network/timeout exception with no response attached.
		return NewError(carrierName, raw.Error(), CategoryTransient).
			WithCause(raw).
			WithRaw(raw.Error())
	}

	code, message := extractWireError(herr.Body)

	if cls, found := table[code]; found && code != "" {
		msg := cls.Message
		if msg == "" {
			msg = message
		}
		err := NewError(carrierName, msg, cls.Category).
			WithCode(code).
			WithRaw(string(herr.Body))
		if cls.Category == CategoryRateLimit {
			err = err.WithRetryAfter(retryAfter(herr.Header))
		}
		return err
	}

	if message == "" {
		message = http.StatusText(herr.StatusCode)
	}
	if message == "" {
		message = herr.Error()
	}

	var err *Error
	switch {
	case herr.StatusCode == http.StatusBadRequest:
		err = NewError(carrierName, message, CategoryValidation)
	case herr.StatusCode == http.StatusUnauthorized || herr.StatusCode == http.StatusForbidden:
		err = NewError(carrierName, message, CategoryAuth)
	case herr.StatusCode == http.StatusTooManyRequests:
		err = NewError(carrierName, message, CategoryRateLimit).
			WithRetryAfter(retryAfter(herr.Header))
	case herr.StatusCode >= http.StatusInternalServerError:
		err = NewError(carrierName, message, CategoryTransient)
	case herr.StatusCode == 0:
		err = NewError(carrierName, message, CategoryTransient)
	default:
		err = NewError(carrierName, message, CategoryPermanent)
	}

	if herr.Err != nil {
		err = err.WithCause(herr.Err)
	}
	if len(herr.Body) > 0 {
		err = err.WithRaw(string(herr.Body))
	}
	return err.WithCode(code)
}

// extractWireError pulls a carrier error code and message out of a
// response body. Carriers disagree on field naming, so all conventional
// candidates are probed.
func extractWireError(body []byte) (code, message string) {
	if len(body) == 0 {
		return "", ""
	}

	var we wireError
	if err := json.Unmarshal(body, &we); err != nil {
		return "", ""
	}

	switch {
	case we.Code != "":
		code = we.Code
	case we.ErrorCode != "":
		code = we.ErrorCode
	case we.ErrorCodeSnake != "":
		code = we.ErrorCodeSnake
	}

	message = we.Message
	if message == "" {
		message = we.ErrorDescription
	}

	if len(we.Error) > 0 {
		var errStr string
		if json.Unmarshal(we.Error, &errStr) == nil {
			if code == "" {
				code = errStr
			}
		} else {
			var nested struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			if json.Unmarshal(we.Error, &nested) == nil {
				if code == "" {
					code = nested.Code
				}
				if message == "" {
					message = nested.Message
				}
			}
		}
	}
	return code, message
}

// retryAfter parses a Retry-After header given in seconds, falling back
// to DefaultRetryAfter when absent or unparseable.
func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return DefaultRetryAfter
	}
	v := h.Get("Retry-After")
	if v == "" {
		return DefaultRetryAfter
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return DefaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}
