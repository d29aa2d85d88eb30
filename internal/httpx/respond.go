package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/paskalshop/paskal-shop/internal/shop"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// respondError memetakan error domain ke taksonomi HTTP. Semua yang tidak
// dikenal jatuh ke 500 tanpa membocorkan detail internal.
func respondError(w http.ResponseWriter, log *logrus.Logger, err error) {
	switch {
	case errors.Is(err, shop.ErrValidation), errors.Is(err, shop.ErrInvalidFile):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shop.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, shop.ErrOrderNotFound), errors.Is(err, shop.ErrProductNotFound), errors.Is(err, shop.ErrAdminNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shop.ErrInsufficientStock):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, shop.ErrUploadFailed):
		writeError(w, http.StatusServiceUnavailable, "upload service unavailable")
	default:
		log.WithError(err).Error("internal error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
