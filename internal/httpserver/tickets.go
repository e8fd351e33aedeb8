package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	ticketsvc "storefront/internal/service/ticket"
)

func listTicketsHandler(tickets *ticketsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

		result, err := tickets.List(c.Request.Context(), user.ID, c.Query("status"), page, perPage)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func createTicketHandler(tickets *ticketsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in ticketsvc.CreateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
			return
		}
		user := currentUser(c)
		ticket, err := tickets.Create(c.Request.Context(), user.ID, in)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"ticket": ticket})
	}
}
