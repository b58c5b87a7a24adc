package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"flumers-backend/internal/gateway"
	"flumers-backend/internal/middleware"
	"flumers-backend/internal/models"
	"flumers-backend/internal/orders"
	"flumers-backend/internal/supabase"
)

type OrdersHandler struct {
	orderService   *orders.Service
	blobStore      gateway.BlobStore
	realtimeClient *supabase.RealtimeClient
}

func NewOrdersHandler(orderService *orders.Service, blobStore gateway.BlobStore, realtimeClient *supabase.RealtimeClient) *OrdersHandler {
	return &OrdersHandler{
		orderService:   orderService,
		blobStore:      blobStore,
		realtimeClient: realtimeClient,
	}
}

// CreateOrder godoc
// @Summary     Create a new order
// @Description Creates a pending order from the authenticated brand to an influencer. Details, cost and deadline are fixed at creation; there is no edit afterwards.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateOrderRequest true "Order fields"
// @Success     200 {object} models.OrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /orders [post]
func (h *OrdersHandler) CreateOrder(c *gin.Context) {
	actor := middleware.Actor(c)

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), actor, orders.CreateInput{
		InfluencerUID: req.InfluencerUID,
		OrderDetails:  req.OrderDetails,
		TotalCost:     req.TotalCost,
		Deadline:      req.Deadline,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toResponse(order))
}

// UploadBrief godoc
// @Summary     Upload an order brief image
// @Description Uploads the brief asset for a new order and returns its public URL. The URL is passed back in the create request.
// @Tags        orders
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       image formData file true "Brief image"
// @Success     200 {object} models.FileInfo
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /orders/brief [post]
func (h *OrdersHandler) UploadBrief(c *gin.Context) {
	actor := middleware.Actor(c)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "image file is required", Message: err.Error()})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to open uploaded file", Message: err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to read uploaded file", Message: err.Error()})
		return
	}

	path := supabase.OrderFilePath(actor, "briefs", uuid.NewString()+"-"+fileHeader.Filename)
	url, err := h.blobStore.Upload(c.Request.Context(), path, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to upload brief image", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.FileInfo{
		Filename: fileHeader.Filename,
		URL:      url,
		Size:     fileHeader.Size,
	})
}

// ListOrders godoc
// @Summary     List orders
// @Description Returns every order the authenticated user is a party to, sorted ascending by order number, with live countdowns and unseen-item badge counts.
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.OrderListResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /orders [get]
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	actor := middleware.Actor(c)

	list, err := h.orderService.ListForActor(c.Request.Context(), actor)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	summaries := make([]models.OrderSummary, len(list))
	for i, o := range list {
		summaries[i] = models.OrderSummary{
			ID:                o.ID,
			OrderNumber:       o.OrderNumber,
			Status:            o.Status,
			TotalCost:         o.TotalCost,
			RemainingTime:     h.orderService.Remaining(o),
			UnseenSubmissions: orders.UnseenSubmissionCount(o),
			UnseenRevisions:   orders.UnseenRevisionCount(o),
			CreatedAt:         o.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, models.OrderListResponse{Orders: summaries})
}

// GetOrder godoc
// @Summary     Get order details
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Success     200 {object} models.OrderResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id} [get]
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	actor := middleware.Actor(c)

	order, err := h.orderService.Get(c.Request.Context(), actor, c.Param("order_id"))
	if err != nil {
		writeOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toResponse(order))
}

// StartOrder godoc
// @Summary     Start an order
// @Description Moves a pending order to remaining and starts the deadline clock. Only the order's influencer may start it.
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Success     200 {object} models.OrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id}/start [post]
func (h *OrdersHandler) StartOrder(c *gin.Context) {
	actor := middleware.Actor(c)

	order, err := h.orderService.Start(c.Request.Context(), actor, c.Param("order_id"))
	if err != nil {
		writeOrderError(c, err)
		return
	}

	_ = h.realtimeClient.PublishOrderEvent(order.ID, "order_started",
		supabase.OrderStartedPayload(order.ID, order.OrderNumber))

	c.JSON(http.StatusOK, h.toResponse(order))
}

// CompleteOrder godoc
// @Summary     Complete an order
// @Description Moves a remaining order to its terminal completed status. Only the order's brand may complete it, and never straight from pending.
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Success     200 {object} models.OrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id}/complete [post]
func (h *OrdersHandler) CompleteOrder(c *gin.Context) {
	actor := middleware.Actor(c)

	order, err := h.orderService.Complete(c.Request.Context(), actor, c.Param("order_id"))
	if err != nil {
		writeOrderError(c, err)
		return
	}

	_ = h.realtimeClient.PublishOrderEvent(order.ID, "order_completed",
		supabase.OrderCompletedPayload(order.ID, order.OrderNumber))

	c.JSON(http.StatusOK, h.toResponse(order))
}

func (h *OrdersHandler) toResponse(o models.Order) models.OrderResponse {
	return models.OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		BrandUID:      o.BrandUID,
		InfluencerUID: o.InfluencerUID,
		Status:        o.Status,
		OrderDetails:  o.OrderDetails,
		TotalCost:     o.TotalCost,
		Deadline:      o.Deadline,
		ImageURL:      o.ImageURL,
		StartTime:     o.StartTime,
		RemainingTime: h.orderService.Remaining(o),
		Submission:    o.Submission,
		Revisions:     o.Revisions,
		CreatedAt:     o.CreatedAt,
	}
}

func writeOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found"})
	case errors.Is(err, orders.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "not allowed", Message: err.Error()})
	case errors.Is(err, orders.ErrValidation):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "validation failed", Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal error", Message: err.Error()})
	}
}
