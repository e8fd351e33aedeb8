package httpserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/gateway"
	checkoutsvc "storefront/internal/service/checkout"
)

type checkoutRequest struct {
	Items         []domain.CartLine `json:"items" binding:"required"`
	PaymentMethod string            `json:"payment_method" binding:"omitempty,oneof=stripe wallet"`
}

func checkoutHandler(logger *log.Logger, checkout *checkoutsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
			return
		}
		user := currentUser(c)

		receipt, err := checkout.Checkout(c.Request.Context(), user, checkoutsvc.Input{
			Items:         req.Items,
			PaymentMethod: req.PaymentMethod,
		})
		if err != nil {
			var verr *checkoutsvc.ValidationError
			switch {
			case errors.As(err, &verr):
				c.JSON(http.StatusUnprocessableEntity, gin.H{"message": verr.Reason})
			case errors.Is(err, domain.ErrEmptyCart):
				c.JSON(http.StatusUnprocessableEntity, gin.H{"message": domain.ErrEmptyCart.Error()})
			case errors.Is(err, domain.ErrInsufficientBalance):
				c.JSON(http.StatusUnprocessableEntity, gin.H{"message": domain.ErrInsufficientBalance.Error()})
			case errors.Is(err, gateway.ErrUnavailable):
				c.JSON(http.StatusBadGateway, gin.H{"message": "payment gateway unavailable, please retry"})
			default:
				logger.Printf("checkout: user_id=%d error=%v", user.ID, err)
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			}
			return
		}
		c.JSON(http.StatusOK, receipt)
	}
}

// checkoutSuccessHandler is the browser return URL after the hosted payment
// page. Settlement here is best effort; the webhook remains the source of
// truth when this races or fails.
func checkoutSuccessHandler(logger *log.Logger, checkout *checkoutsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Query("session_id")
		if sessionID == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "session_id required"})
			return
		}
		result, err := checkout.ConfirmBySession(c.Request.Context(), sessionID)
		if err != nil {
			logger.Printf("checkout: confirm session_id=%s error=%v", sessionID, err)
			c.JSON(http.StatusOK, gin.H{"message": "Payment received. Your order will be confirmed shortly."})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":  "Payment confirmed. Thank you for your order.",
			"purchase": result.Purchase,
		})
	}
}

func checkoutCancelHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Checkout cancelled. Your cart is untouched."})
	}
}
