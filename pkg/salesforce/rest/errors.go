package sfrest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrNoAccessToken is returned when an operation needs an access token
	// and none has been set on the client.
	ErrNoAccessToken = errors.New("access token not set")

	// ErrTooManyPages is returned by Search when the result set spans more
	// pages than the client allows.
	ErrTooManyPages = errors.New("query result exceeds page limit")
)

// transportErrorCode is reported when no response was obtained at all.
const transportErrorCode = "500"

// AuthenticationError is returned for 401 responses and for authenticated
// calls made before a token was set.
type AuthenticationError struct {
	// Code is the provider error code, empty when none was supplied.
	Code    string
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("salesforce authentication error: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("salesforce authentication error: %s", e.Message)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// RequestError is returned for every other failed call. StatusCode is zero
// when the transport failed before a response arrived.
type RequestError struct {
	StatusCode int
	Code       string
	Message    string
	// Body is the raw error response body.
	Body []byte
	Err  error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("salesforce request failed: %s", e.Message)
	}
	return fmt.Sprintf("salesforce request failed with status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ParseError is returned when persisted token text is not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid persisted access token: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newTransportError(err error) *RequestError {
	return &RequestError{
		Code:    transportErrorCode,
		Message: err.Error(),
		Err:     err,
	}
}

// newResponseError reads the error out of body. OAuth endpoints answer with
// {error, error_description}, the data API with [{errorCode, message}] and
// a few endpoints with a bare {errorCode, message}.
func newResponseError(statusCode int, body []byte) *RequestError {
	reqErr := &RequestError{
		StatusCode: statusCode,
		Code:       "0",
		Message:    "Unknown error",
		Body:       body,
	}

	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return reqErr
	}

	if obj, ok := payload.(map[string]interface{}); ok {
		code, hasCode := obj["error"]
		desc, hasDesc := obj["error_description"]
		if hasCode && hasDesc && code != nil && desc != nil {
			reqErr.Code = stringify(code)
			reqErr.Message = stringify(desc)
			return reqErr
		}
	}

	if code, message, ok := firstAPIError(payload); ok {
		reqErr.Code = code
		reqErr.Message = message
		return reqErr
	}

	if obj, ok := payload.(map[string]interface{}); ok {
		if v, ok := obj["errorCode"]; ok && v != nil {
			reqErr.Code = stringify(v)
		}
		if v, ok := obj["message"]; ok && v != nil {
			reqErr.Message = stringify(v)
		}
	}

	return reqErr
}

// newAuthenticationError reads the provider code and message of a 401 body,
// falling back to "Unauthorized" with no code.
func newAuthenticationError(body []byte) *AuthenticationError {
	authErr := &AuthenticationError{Message: "Unauthorized"}

	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return authErr
	}

	// A list body is authoritative even when only one of the keys is set.
	if list, ok := payload.([]interface{}); ok {
		if first, ok := firstElement(list); ok {
			if v := first["errorCode"]; v != nil {
				authErr.Code = stringify(v)
			}
			if v := first["message"]; v != nil {
				authErr.Message = stringify(v)
			}
		}
		return authErr
	}

	if obj, ok := payload.(map[string]interface{}); ok {
		for _, keys := range [][2]string{{"errorCode", "message"}, {"error", "error_description"}} {
			code, message := obj[keys[0]], obj[keys[1]]
			if code == nil && message == nil {
				continue
			}
			if code != nil {
				authErr.Code = stringify(code)
			}
			if message != nil {
				authErr.Message = stringify(message)
			}
			break
		}
	}

	return authErr
}

// firstAPIError extracts errorCode and message from a [{errorCode, message}]
// body. Both keys must be present.
func firstAPIError(payload interface{}) (string, string, bool) {
	list, ok := payload.([]interface{})
	if !ok {
		return "", "", false
	}
	first, ok := firstElement(list)
	if !ok {
		return "", "", false
	}
	code, message := first["errorCode"], first["message"]
	if code == nil || message == nil {
		return "", "", false
	}
	return stringify(code), stringify(message), true
}

func firstElement(list []interface{}) (map[string]interface{}, bool) {
	if len(list) == 0 {
		return nil, false
	}
	first, ok := list[0].(map[string]interface{})
	return first, ok
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
