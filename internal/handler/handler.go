package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"kart-checkout/internal/middleware"
	"kart-checkout/internal/model"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	logger.Warn().
		Str("error", code).
		Str("message", message).
		Int("status", status).
		Str("request_id", chimw.GetReqID(r.Context())).
		Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{
		Error:     code,
		Message:   message,
		RequestID: chimw.GetReqID(r.Context()),
	})
}

// writeServiceError maps a service error onto an HTTP response. Domain errors
// keep their code; anything else is reported as an internal error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	reqID := chimw.GetReqID(r.Context())

	de, ok := model.AsDomainError(err)
	if !ok {
		logger.Error().Err(err).Str("request_id", reqID).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:     model.ErrCodeInternalError,
			Message:   "internal server error",
			RequestID: reqID,
		})
		return
	}

	status := statusForKind(de.Kind)
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error().Err(err)
	}
	event.Str("error", de.Code).Int("status", status).Str("request_id", reqID).Msg("request rejected")

	resp := model.ErrorResponse{
		Error:     de.Code,
		Message:   de.Message,
		RequestID: reqID,
	}
	if de.VariantID != nil || de.Available != nil {
		resp.Details = &model.ErrorDetails{VariantID: de.VariantID, Available: de.Available}
	}
	writeJSON(w, status, resp)
}

func statusForKind(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindStock:
		return http.StatusConflict
	case model.KindState:
		return http.StatusUnprocessableEntity
	case model.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads and validates a JSON request body into dest.
func decodeJSON(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return model.NewDomainError(model.KindValidation, model.ErrCodeInvalidJSON, "invalid request body")
	}

	if err := validate.Struct(dest); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			return model.NewDomainError(model.KindValidation, model.ErrCodeMissingField, validationMessage(errs[0]))
		}
		return model.NewDomainError(model.KindValidation, model.ErrCodeMissingField, "validation failed")
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "ne":
		return fmt.Sprintf("%s must not be %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// uuidParam parses a chi URL parameter as a UUID.
func uuidParam(r *http.Request, name string) (uuid.UUID, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// shopperID returns the authenticated shopper or writes a 401.
func shopperID(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (uuid.UUID, bool) {
	id, ok := middleware.ShopperIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "shopper identity is required", logger)
		return uuid.Nil, false
	}
	return id, true
}

// pagination parses limit and offset query parameters.
func pagination(r *http.Request) (limit, offset int, err error) {
	limit = 10
	if s := r.URL.Query().Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil {
			return 0, 0, fmt.Errorf("invalid limit parameter")
		}
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		if offset, err = strconv.Atoi(s); err != nil {
			return 0, 0, fmt.Errorf("invalid offset parameter")
		}
	}
	return limit, offset, nil
}

// orderFilter builds an OrderFilter from the query string.
func orderFilter(r *http.Request) (model.OrderFilter, error) {
	limit, offset, err := pagination(r)
	if err != nil {
		return model.OrderFilter{}, model.NewDomainError(model.KindValidation, model.ErrCodeMissingField, err.Error())
	}

	filter := model.OrderFilter{Limit: limit, Offset: offset}
	if s := r.URL.Query().Get("status"); s != "" {
		status, err := model.ParseOrderStatus(s)
		if err != nil {
			return model.OrderFilter{}, err
		}
		filter.Status = &status
	}
	return filter, nil
}
