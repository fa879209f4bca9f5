package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/jafarshop/marketorders/internal/service"
)

// ReturnRequestBody is the payload of POST /v1/order-items/:id/return
type ReturnRequestBody struct {
	Reason string `json:"reason"`
}

// CancelRequestBody is the payload of POST /v1/order-items/:id/cancel
type CancelRequestBody struct {
	Reason string `json:"reason"`
}

// IssueReportBody is the payload of POST /v1/order-items/:id/issues
type IssueReportBody struct {
	IssueType   string `json:"issueType" binding:"required"`
	Description string `json:"description"`
}

// HandleRequestReturn handles POST /v1/order-items/:id/return
func HandleRequestReturn(actions service.OrderActions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReturnRequestBody
		if err := c.ShouldBindJSON(&req); err != nil {
			badBody(c)
			return
		}

		writeAction(c, actions.RequestReturn(c.Request.Context(), service.ReturnInput{
			OrderItemID: c.Param("id"),
			Reason:      req.Reason,
		}))
	}
}

// HandleCancelOrderItem handles POST /v1/order-items/:id/cancel. The body is optional.
func HandleCancelOrderItem(actions service.OrderActions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CancelRequestBody
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badBody(c)
				return
			}
		}

		writeAction(c, actions.RequestOrderCancellation(c.Request.Context(), service.CancellationInput{
			OrderItemID: c.Param("id"),
			Reason:      req.Reason,
		}))
	}
}

// HandleReportIssue handles POST /v1/order-items/:id/issues
func HandleReportIssue(actions service.OrderActions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req IssueReportBody
		if err := c.ShouldBindJSON(&req); err != nil {
			badBody(c)
			return
		}

		writeAction(c, actions.ReportOrderIssue(c.Request.Context(), service.IssueReportInput{
			OrderItemID: c.Param("id"),
			IssueType:   req.IssueType,
			Description: req.Description,
		}))
	}
}
