package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// MessageInput is the candidate record decoded from a create request.
// Every field is optional; unknown fields are ignored.
type MessageInput struct {
	SenderName    string            `json:"senderName"`
	SenderEmail   string            `json:"senderEmail"`
	SenderPhone   string            `json:"senderPhone"`
	SenderAddress string            `json:"senderAddress"`
	Subject       string            `json:"subject"`
	Body          string            `json:"body"`
	Items         []json.RawMessage `json:"items"`
	Timestamp     *time.Time        `json:"timestamp"`
	Status        Status            `json:"status" validate:"omitempty,oneof=unread read resolved"`
	UserID        string            `json:"userId"`
}

// FieldError is a single rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a request body cannot be coerced into a
// MessageInput.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field == "" {
			parts = append(parts, f.Message)
			continue
		}
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "Message validation failed: " + strings.Join(parts, ", ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names rather than Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseMessageInput decodes and validates a create request body.
// An empty body is treated as an empty object.
func ParseMessageInput(data []byte) (*MessageInput, error) {
	var in MessageInput
	if len(bytes.TrimSpace(data)) > 0 {
		// Unmarshal also rejects trailing data after the object
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, decodeError(err)
		}
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &in, nil
}

// Validate checks the field constraints of an already decoded input.
func (in *MessageInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	verr := &ValidationError{}
	for _, fe := range ves {
		msg := fmt.Sprintf("failed on the %q rule", fe.Tag())
		if fe.Tag() == "oneof" {
			msg = fmt.Sprintf("`%v` is not a valid enum value, must be one of [%s]", fe.Value(), fe.Param())
		}
		verr.Fields = append(verr.Fields, FieldError{Field: fe.Field(), Message: msg})
	}
	return verr
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	var parseErr *time.ParseError
	switch {
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return &ValidationError{Fields: []FieldError{{Message: "request body must be a JSON object"}}}
		}
		return &ValidationError{Fields: []FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("cast to %s failed for value of type %s", typeErr.Type, typeErr.Value),
		}}}
	case errors.As(err, &parseErr):
		return &ValidationError{Fields: []FieldError{{
			Field:   "timestamp",
			Message: fmt.Sprintf("cast to date failed for value %q", parseErr.Value),
		}}}
	case errors.As(err, &syntaxErr):
		return &ValidationError{Fields: []FieldError{{Message: "invalid JSON: " + err.Error()}}}
	default:
		return &ValidationError{Fields: []FieldError{{Message: err.Error()}}}
	}
}

// ToMessage builds the record to persist. Server-assigned fields stay zero
// when the client omitted them.
func (in *MessageInput) ToMessage() *Message {
	msg := &Message{
		SenderName:    in.SenderName,
		SenderEmail:   in.SenderEmail,
		SenderPhone:   in.SenderPhone,
		SenderAddress: in.SenderAddress,
		Subject:       in.Subject,
		Body:          in.Body,
		Items:         in.Items,
		Status:        in.Status,
		UserID:        in.UserID,
	}
	if in.Timestamp != nil {
		msg.Timestamp = in.Timestamp.UTC()
	}
	return msg
}

// ItemTitles returns the title of every item that carries one, in order.
// Items that are not objects or have no string title are skipped.
func (in *MessageInput) ItemTitles() []string {
	var titles []string
	for _, raw := range in.Items {
		var item struct {
			Title *string `json:"title"`
		}
		if err := json.Unmarshal(raw, &item); err != nil || item.Title == nil {
			continue
		}
		titles = append(titles, *item.Title)
	}
	return titles
}
