package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

type errorBody struct {
	Error     string            `json:"error"`
	Fields    map[string]string `json:"fields,omitempty"`
	Retryable *bool             `json:"retryable,omitempty"`
	Redirect  string            `json:"redirect,omitempty"`
}

var errBadBody = errors.New("request body is not valid JSON")

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(b); err != nil {
		log.WithField("err", err).Error("write response")
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errBadBody
	}
	return nil
}

// writeError maps domain failures onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *service.ValidationError
		networkErr    *model.NetworkError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "validation failed", Fields: validationErr.Fields})
	case errors.Is(err, model.ErrProductNotFound), errors.Is(err, model.ErrCategoryNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Redirect: service.CatalogRoute})
	case errors.Is(err, model.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Redirect: service.HomeRoute})
	case errors.Is(err, model.ErrUserNotFound), errors.Is(err, service.ErrNotInWishlist), errors.Is(err, service.ErrAdminOrderNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, model.ErrInvalidQuantity), errors.Is(err, service.ErrInvalidPageSize):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	case errors.Is(err, errBadBody):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, service.ErrCartEmpty), errors.Is(err, service.ErrCheckoutClosed), errors.Is(err, model.ErrOrderCannotBeModified):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.As(err, &networkErr):
		retryable := networkErr.Retryable()
		log.WithError(err).WithField("url", r.URL).Warn("data source call failed")
		writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error(), Retryable: &retryable})
	default:
		log.WithError(err).WithField("url", r.URL).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
