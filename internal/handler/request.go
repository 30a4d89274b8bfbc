package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/middleware"
)

var validate = newValidator()

// newValidator builds the request validator. Field names in messages follow
// the json tags so they match what the client sent.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseClock(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("latitude", func(fl validator.FieldLevel) bool {
		lat := fl.Field().Float()
		return lat >= -90 && lat <= 90
	})
	_ = v.RegisterValidation("longitude", func(fl validator.FieldLevel) bool {
		lon := fl.Field().Float()
		return lon >= -180 && lon <= 180
	})
	return v
}

// decodeBody reads a JSON body into dst and validates it. Returned errors
// are ready to be shown to the client, except *http.MaxBytesError.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return err
		case errors.Is(err, io.EOF):
			return errors.New("request body is required")
		default:
			return fmt.Errorf("malformed JSON body: %v", err)
		}
	}
	if err := validate.Struct(dst); err != nil {
		return errors.New(validationMessage(err))
	}
	return nil
}

// bind decodes the body into dst, writing 413 or 422 and returning false
// when it cannot.
func (s *Server) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := decodeBody(r, dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.writeError(w, r, err, "")
		return false
	}
	writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
	return false
}

// validationMessage turns validator errors into "field rule" phrases.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "clock":
			msgs = append(msgs, field+" must be HH:MM")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", ")))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "latitude":
			msgs = append(msgs, field+" must be between -90 and 90")
		case "longitude":
			msgs = append(msgs, field+" must be between -180 and 180")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// pathUUID binds a UUID path parameter the way generated oapi-codegen
// servers do.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return id, nil
}

// queryInt binds an optional integer query parameter.
func queryInt(r *http.Request, name string) (*int, error) {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

// pathIDs binds each named UUID path parameter, writing a 400 and returning
// false on the first one that does not parse.
func pathIDs(w http.ResponseWriter, r *http.Request, names ...string) ([]uuid.UUID, bool) {
	ids := make([]uuid.UUID, len(names))
	for i, name := range names {
		id, err := pathUUID(r, name)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("bad_request", err.Error()))
			return nil, false
		}
		ids[i] = id
	}
	return ids, true
}

// actor returns the authenticated user, writing a 401 when there is none.
func (s *Server) actor(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		s.writeError(w, r, err, "")
		return uuid.Nil, false
	}
	return id, true
}

// writeJSON writes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck
	json.NewEncoder(w).Encode(v)
}

// seeOther answers a successful mutation with 303 to location. body, when
// not nil, describes what happened for API clients that do not follow.
func seeOther(w http.ResponseWriter, location string, body any) {
	w.Header().Set("Location", location)
	if body == nil {
		w.WriteHeader(http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusSeeOther, body)
}
