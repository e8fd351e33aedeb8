package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
)

type saveCartRequest struct {
	Items []domain.CartLine `json:"items" binding:"required"`
}

func getCartHandler(cart *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		lines, err := cart.Get(c.Request.Context(), user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": lines})
	}
}

func saveCartHandler(cart *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req saveCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
			return
		}
		user := currentUser(c)
		saved, err := cart.Save(c.Request.Context(), user.ID, req.Items)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": saved})
	}
}

func clearCartHandler(cart *cartsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if err := cart.Clear(c.Request.Context(), user.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": []domain.CartLine{}})
	}
}
