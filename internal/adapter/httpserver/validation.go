package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/4laawi/recruit-assistant/internal/domain"
)

// ValidationError describes one rejected request field.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() {
		vld = validator.New(validator.WithRequiredStructEnabled())
		// report JSON field names instead of Go field names
		vld.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return vld
}

// validate runs struct validation and returns field-level details on failure.
func validate(v any) ([]ValidationError, error) {
	err := getValidator().Struct(v)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		out = append(out, ValidationError{
			Field:   field,
			Code:    strings.ToUpper(fe.Tag()),
			Message: fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()),
		})
	}
	return out, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument)
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return fmt.Errorf("%w: payload too large (max %d bytes)", domain.ErrInvalidArgument, tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: request body is empty", domain.ErrInvalidArgument)
		}
		return fmt.Errorf("%w: invalid json: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}
