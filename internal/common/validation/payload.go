package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "push-lifecycle/internal/common/errors"
	"push-lifecycle/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// remotePayloadSchema mirrors the push service message shape. Data values
// must be strings, the same restriction FCM applies.
const remotePayloadSchema = `{
  "type": "object",
  "properties": {
    "notification": {
      "type": "object",
      "properties": {
        "title": {"type": "string"},
        "body": {"type": "string"}
      }
    },
    "data": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    }
  }
}`

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// PayloadValidator checks raw push payloads against remotePayloadSchema.
type PayloadValidator struct {
	schema *gojsonschema.Schema
}

func NewPayloadValidator() (*PayloadValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(remotePayloadSchema))
	if err != nil {
		return nil, fmt.Errorf("compile payload schema: %w", err)
	}
	return &PayloadValidator{schema: schema}, nil
}

// Validate reports every schema violation in raw.
func (v *PayloadValidator) Validate(raw []byte) *ValidationResult {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &ValidationResult{
			Errors: []ValidationError{{Field: "(root)", Message: err.Error(), Code: "MALFORMED_JSON"}},
		}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}

// DecodePayload validates raw (when v is non-nil) and decodes it.
func DecodePayload(raw []byte, v *PayloadValidator) (models.RemotePayload, error) {
	var payload models.RemotePayload
	if v != nil {
		if res := v.Validate(raw); !res.Valid {
			msgs := make([]string, len(res.Errors))
			for i, e := range res.Errors {
				msgs[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
			}
			return payload, apperrors.NewInvalidPayloadError(strings.Join(msgs, "; "))
		}
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, apperrors.NewInvalidPayloadError(err.Error())
	}
	return payload, nil
}

// EncodePayload is the inverse of DecodePayload.
func EncodePayload(payload models.RemotePayload) ([]byte, error) {
	return json.Marshal(payload)
}
