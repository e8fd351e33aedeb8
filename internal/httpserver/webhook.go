package httpserver

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/gateway"
	checkoutsvc "storefront/internal/service/checkout"
)

const maxWebhookBody = 1 << 20

// webhookHandler settles purchases on checkout.session.completed events.
// Unverifiable payloads are rejected; everything verified gets a 200 so the
// provider stops retrying, even when the referenced purchase is unknown.
func webhookHandler(logger *log.Logger, checkout *checkoutsvc.Service, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "unreadable body"})
			return
		}

		event, err := gateway.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), secret, gateway.DefaultTolerance, time.Now())
		if err != nil {
			logger.Printf("webhook: signature verification failed: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid signature"})
			return
		}

		if event.Type == gateway.EventCheckoutCompleted {
			session := event.Data.Object
			purchaseID, err := strconv.ParseInt(session.ClientReferenceID, 10, 64)
			if err != nil {
				logger.Printf("webhook: event_id=%s bad client reference %q", event.ID, session.ClientReferenceID)
			} else if _, err := checkout.ConfirmPurchase(c.Request.Context(), purchaseID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					logger.Printf("webhook: event_id=%s purchase_id=%d not found", event.ID, purchaseID)
				} else {
					logger.Printf("webhook: event_id=%s purchase_id=%d settle error=%v", event.ID, purchaseID, err)
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
