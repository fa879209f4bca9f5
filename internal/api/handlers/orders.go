package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/jafarshop/marketorders/internal/service"
)

// HandleGetBuyerOrders handles GET /v1/buyer/orders
func HandleGetBuyerOrders(orders service.OrderReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeRead(c, orders.GetBuyerOrders(c.Request.Context()))
	}
}

// HandleGetBuyerOrder handles GET /v1/buyer/orders/:id
func HandleGetBuyerOrder(orders service.OrderReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeRead(c, orders.GetBuyerOrderDetails(c.Request.Context(), c.Param("id")))
	}
}

// HandleGetOrderConversation handles GET /v1/orders/:id/conversation
func HandleGetOrderConversation(orders service.OrderReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeRead(c, orders.GetOrderConversation(c.Request.Context(), c.Param("id")))
	}
}
