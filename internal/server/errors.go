package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	cartdomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/cart/domain"
	catalogdomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/catalog/domain"
	"github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/lifecycle"
	orderdomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/order/domain"
	subscriptiondomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/subscription/domain"
)

// apiError is the JSON error envelope every handler failure resolves to.
type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *apiError) Error() string { return e.Code }

func newValidationError(field, code, message string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: code, Message: message, Field: field}
}

func invalidRequestError() *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "invalid request body"}
}

// AbortWithError maps a service error onto the HTTP taxonomy: validation 400,
// missing 404, state-machine and concurrency conflicts 409, upstream
// unavailability 503, everything else 500.
func AbortWithError(c *gin.Context, err error) {
	var api *apiError
	if errors.As(err, &api) {
		c.AbortWithStatusJSON(api.Status, gin.H{"error": api})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case isValidationError(err):
		status = http.StatusBadRequest
	case isNotFoundError(err):
		status = http.StatusNotFound
	case isConflictError(err):
		status = http.StatusConflict
	case errors.Is(err, subscriptiondomain.ErrRenewalFailed),
		errors.Is(err, lifecycle.ErrGatewayUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		c.AbortWithStatusJSON(status, gin.H{"error": &apiError{
			Code:    "internal_error",
			Message: "internal error",
		}})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": &apiError{
		Code:    err.Error(),
		Message: err.Error(),
	}})
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, cartdomain.ErrInvalidSession),
		errors.Is(err, cartdomain.ErrInvalidItem),
		errors.Is(err, cartdomain.ErrInvalidQuantity),
		errors.Is(err, catalogdomain.ErrInvalidCode),
		errors.Is(err, orderdomain.ErrInvalidOrderID),
		errors.Is(err, orderdomain.ErrEmptyCart),
		errors.Is(err, orderdomain.ErrInvalidCurrency),
		errors.Is(err, orderdomain.ErrCurrencyMismatch),
		errors.Is(err, orderdomain.ErrInvalidTotal),
		errors.Is(err, orderdomain.ErrInvalidStatus),
		errors.Is(err, subscriptiondomain.ErrInvalidSubscriptionID),
		errors.Is(err, subscriptiondomain.ErrInvalidBillingPeriod),
		errors.Is(err, subscriptiondomain.ErrMissingReason):
		return true
	}
	return false
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, cartdomain.ErrLineNotFound),
		errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, subscriptiondomain.ErrSubscriptionNotFound):
		return true
	}
	return false
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, orderdomain.ErrIllegalTransition),
		errors.Is(err, orderdomain.ErrTimelineOrderViolation),
		errors.Is(err, orderdomain.ErrVersionConflict),
		errors.Is(err, subscriptiondomain.ErrVersionConflict),
		errors.Is(err, subscriptiondomain.ErrSubscriptionCancelled):
		return true
	}
	return false
}
