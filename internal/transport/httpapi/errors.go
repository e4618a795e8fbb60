package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/jms/internal/domain"
)

// validationSentinels — ошибки валидации входных данных, которые сервисный
// слой возвращает без обёртки; транспорт отдаёт их как 400.
var validationSentinels = []error{
	domain.ErrItemsRequired,
	domain.ErrItemQtyInvalid,
	domain.ErrItemPriceInvalid,
	domain.ErrCustomerRequired,
	domain.ErrOrderIDRequired,
	domain.ErrJewelryIDRequired,
	domain.ErrOrderStatusInvalid,
	domain.ErrStockNegative,
	domain.ErrPriceInvalid,
	domain.ErrJewelryKindInvalid,
	domain.ErrJewelryDetailsMismatch,
	domain.ErrTaxIDRequired,
	domain.ErrEmailRequired,
	domain.ErrEmployeeRoleInvalid,
	domain.ErrPaymentAmountInvalid,
	domain.ErrPaymentMethodInvalid,
}

func isValidationError(err error) bool {
	for _, sentinel := range validationSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// errorResponse — единый формат тела ошибки для всех ручек.
type errorResponse struct {
	Error string `json:"error"`
}

// statusForError отображает доменные ошибки на HTTP-коды:
// отсутствие сущности — 404, конфликты состояния и уникальности — 409,
// всё остальное — 500.
func statusForError(err error) int {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsDuplicateKey(err),
		domain.IsOutOfStock(err),
		domain.IsInvalidTransition(err),
		domain.IsInvalidOperation(err),
		domain.IsVersionConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *log.Entry, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.JSON(status, errorResponse{Error: err.Error()})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}
