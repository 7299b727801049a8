package server

import (
	"net/http"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gorilla/schema"
)

var schemaDecoder *schema.Decoder

func init() {
	schemaDecoder = schema.NewDecoder()
	schemaDecoder.IgnoreUnknownKeys(true)
}

// BindQueryString binds the request's query string with the
// given pointer to a struct of data.
// If the destination implements Validate(), it runs the validation
// as well.
func (s *Server) BindQueryString(r *http.Request, dst interface{}) *Message {
	if err := schemaDecoder.Decode(dst, r.URL.Query()); err != nil {
		return &Message{
			Status:  400,
			Message: err.Error(),
		}
	}

	v, ok := dst.(validation.Validatable)
	if !ok {
		return nil
	}

	return s.Validate(v)
}

// Validate runs the validation on a given destination data and returns
// a formatted message with the encountered errors, if any.
func (s *Server) Validate(v validation.Validatable) *Message {
	err := v.Validate()
	if err == nil {
		return nil
	}

	msg := &Message{
		Status:  400,
		Message: "Invalid input data",
	}

	if errs, ok := err.(validation.Errors); ok {
		fields := make([]string, 0, len(errs))
		for f := range errs {
			fields = append(fields, f)
		}
		sort.Strings(fields)

		for _, f := range fields {
			msg.Errors = append(msg.Errors, Error{
				Location: f,
				Error:    errs[f].Error(),
			})
		}
	} else {
		msg.Message = err.Error()
	}

	return msg
}
