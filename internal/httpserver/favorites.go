package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	favoritesvc "storefront/internal/service/favorite"
)

type addFavoriteRequest struct {
	ProductID int64 `json:"product_id" binding:"required,min=1"`
}

func listFavoritesHandler(favorites *favoritesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		views, err := favorites.List(c.Request.Context(), user.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"favorites": views})
	}
}

func addFavoriteHandler(favorites *favoritesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addFavoriteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
			return
		}
		user := currentUser(c)
		if err := favorites.Add(c.Request.Context(), user.ID, req.ProductID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "favorited"})
	}
}

func removeFavoriteHandler(favorites *favoritesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		user := currentUser(c)
		if err := favorites.Remove(c.Request.Context(), user.ID, id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
