package mockplatform

import (
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/birbparty/commerce-sdk/sdk/codec"
	"github.com/birbparty/commerce-sdk/sdk/model"
)

var (
	validate      = validator.New()
	schemaDecoder = schema.NewDecoder()
)

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

const (
	defaultLimit = 20
	maxLimit     = 500
)

// ListParams are the query parameters of a query endpoint.
type ListParams struct {
	Where     []string `schema:"where"`
	Sort      []string `schema:"sort"`
	Expand    []string `schema:"expand"`
	Limit     *int64   `schema:"limit" validate:"omitempty,min=0,max=500"`
	Offset    *int64   `schema:"offset" validate:"omitempty,min=0,max=10000"`
	WithTotal *bool    `schema:"withTotal"`
}

func (q ListParams) window() (offset, limit int64) {
	limit = defaultLimit
	if q.Limit != nil {
		limit = *q.Limit
	}
	if q.Offset != nil {
		offset = *q.Offset
	}
	return offset, limit
}

// SearchParams are the plain parameters of a search. Dotted parameters
// (text.<lang>, filter.query, filter.facets, facet.range) are read
// separately.
type SearchParams struct {
	Filter []string `schema:"filter"`
	Facet  []string `schema:"facet"`
	Expand []string `schema:"expand"`
	Staged bool     `schema:"staged"`
	Limit  *int64   `schema:"limit" validate:"omitempty,min=0,max=500"`
	Offset *int64   `schema:"offset" validate:"omitempty,min=0,max=10000"`
}

// VersionParam carries the version of a delete.
type VersionParam struct {
	Version *int64 `schema:"version" validate:"required,min=1"`
}

// decodeQuery decodes the undotted keys of values into dst and validates it.
func decodeQuery(dst any, values url.Values) error {
	plain := url.Values{}
	for k, v := range values {
		if !strings.Contains(k, ".") {
			plain[k] = v
		}
	}
	if err := schemaDecoder.Decode(dst, plain); err != nil {
		return invalidInput("Malformed query parameters: %v", err)
	}
	if err := validate.Struct(dst); err != nil {
		return invalidInput("Invalid query parameters: %v", err)
	}
	return nil
}

// UpdateBody is the body of an update request. Actions stay raw until the
// resource handler decodes them.
type UpdateBody struct {
	Version int64              `json:"version" validate:"min=1"`
	Actions []codec.RawMessage `json:"actions" validate:"required,min=1"`
}

// ErrorObject is one entry of an error response.
type ErrorObject struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	CurrentVersion *int64 `json:"currentVersion,omitempty"`
}

// ErrorResponse is the platform's error body.
type ErrorResponse struct {
	StatusCode int           `json:"statusCode"`
	Message    string        `json:"message"`
	Errors     []ErrorObject `json:"errors"`
}

// NewErrorResponse builds an error body with a single entry.
func NewErrorResponse(status int, code, message string) ErrorResponse {
	return ErrorResponse{
		StatusCode: status,
		Message:    message,
		Errors:     []ErrorObject{{Code: code, Message: message}},
	}
}

// Error codes used in error responses.
const (
	CodeResourceNotFound       = "ResourceNotFound"
	CodeConcurrentModification = "ConcurrentModification"
	CodeDuplicateField         = "DuplicateField"
	CodeInvalidInput           = "InvalidInput"
	CodeInvalidToken           = "invalid_token"
	CodeInvalidClient          = "invalid_client"
	CodeGeneral                = "General"
)

// TokenResponse answers a client credentials grant.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope"`
}

// StoredObject is a custom object whose value is kept as raw JSON.
type StoredObject = model.CustomObject[codec.RawMessage]
