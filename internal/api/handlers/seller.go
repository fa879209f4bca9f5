package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jafarshop/marketorders/internal/service"
)

// HandleListSellerOrders handles GET /v1/seller/orders?status=&page=&pageSize=
func HandleListSellerOrders(orders service.OrderReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := service.SellerOrdersQuery{
			Status:   c.Query("status"),
			Page:     queryInt(c, "page"),
			PageSize: queryInt(c, "pageSize"),
		}
		writeRead(c, orders.GetSellerOrders(c.Request.Context(), q))
	}
}

// HandleSellerOrderStats handles GET /v1/seller/orders/stats
func HandleSellerOrderStats(orders service.OrderReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeRead(c, orders.GetSellerOrderStats(c.Request.Context()))
	}
}

// queryInt returns nil when the parameter is absent. Values that are not integers
// come back as 0 so the service rejects them with its own message.
func queryInt(c *gin.Context, key string) *int {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		v = 0
	}
	return &v
}
