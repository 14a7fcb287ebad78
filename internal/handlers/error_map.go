package handlers

import (
	"errors"
	"net/http"

	"rozes-gallery/internal/apperror"
	"rozes-gallery/internal/logger"
	"rozes-gallery/internal/pricing"
)

func writeServiceError(w http.ResponseWriter, log *logger.Logger, err error, internalMessage string) {
	var couponErr *pricing.CouponError
	if errors.As(err, &couponErr) {
		writeCouponError(w, couponErr)
		return
	}

	switch {
	case apperror.Is(err, apperror.KindNotFound):
		writeErrorResponse(w, http.StatusNotFound, err.Error())
	case apperror.Is(err, apperror.KindValidation):
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
	case apperror.Is(err, apperror.KindConflict):
		writeErrorResponse(w, http.StatusConflict, err.Error())
	default:
		if log != nil {
			log.WithError(err).Error(internalMessage)
		}
		writeErrorResponse(w, http.StatusInternalServerError, internalMessage)
	}
}

// writeCouponError отдаёт причину отказа купона структурированно, чтобы
// витрина могла показать осмысленное сообщение.
func writeCouponError(w http.ResponseWriter, err *pricing.CouponError) {
	status := http.StatusUnprocessableEntity
	if err.Reason == pricing.CouponNotFound {
		status = http.StatusNotFound
	}

	writeJSONResponse(w, status, map[string]string{
		"error":   string(err.Reason),
		"message": err.Error(),
	})
}
