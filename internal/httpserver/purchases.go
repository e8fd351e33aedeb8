package httpserver

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	historysvc "storefront/internal/service/history"
	walletsvc "storefront/internal/service/wallet"
)

func listPurchasesHandler(history *historysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q historysvc.Query
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
			return
		}
		user := currentUser(c)
		page, err := history.List(c.Request.Context(), user.ID, q)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func exportCSVHandler(logger *log.Logger, history *historysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q historysvc.Query
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
			return
		}
		user := currentUser(c)

		filename := fmt.Sprintf("purchases-%s.csv", time.Now().UTC().Format("20060102"))
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

		if err := history.WriteCSV(c.Request.Context(), c.Writer, user.ID, q); err != nil {
			// Headers may already be out; log instead of rewriting the status.
			logger.Printf("history: csv export user_id=%d error=%v", user.ID, err)
		}
	}
}

func exportPrintHandler(history *historysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q historysvc.Query
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
			return
		}
		user := currentUser(c)
		purchases, err := history.ListForPrint(c.Request.Context(), user.ID, q)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"purchases":    purchases,
			"generated_at": time.Now().UTC(),
			"user":         gin.H{"name": user.Name, "email": user.Email},
		})
	}
}

func walletHandler(wallet *walletsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		summary, err := wallet.Summary(c.Request.Context(), user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}
