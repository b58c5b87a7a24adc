package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"flumers-backend/internal/gateway"
	"flumers-backend/internal/middleware"
	"flumers-backend/internal/models"
	"flumers-backend/internal/orders"
	"flumers-backend/internal/supabase"
)

type SubmissionsHandler struct {
	orderService   *orders.Service
	blobStore      gateway.BlobStore
	realtimeClient *supabase.RealtimeClient
}

func NewSubmissionsHandler(orderService *orders.Service, blobStore gateway.BlobStore, realtimeClient *supabase.RealtimeClient) *SubmissionsHandler {
	return &SubmissionsHandler{
		orderService:   orderService,
		blobStore:      blobStore,
		realtimeClient: realtimeClient,
	}
}

// UploadSubmissions godoc
// @Summary     Submit deliverable files
// @Description Uploads one or more files as deliverable evidence and appends them to the order's submission list. Influencer only. If a blob upload succeeds but the order write fails, the whole request fails and the blob is not cleaned up.
// @Tags        submissions
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Param       files formData file true "Deliverable files (multiple allowed)"
// @Success     200 {object} models.UploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id}/submissions [post]
func (h *SubmissionsHandler) UploadSubmissions(c *gin.Context) {
	actor := middleware.Actor(c)
	orderID := c.Param("order_id")

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid multipart form", Message: err.Error()})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no files provided"})
		return
	}

	resp := models.UploadResponse{OrderID: orderID}
	for _, fh := range files {
		data, err := readMultipartFile(fh)
		if err != nil {
			resp.Errors = append(resp.Errors, fh.Filename+": "+err.Error())
			continue
		}

		contentType := fh.Header.Get("Content-Type")
		path := supabase.OrderFilePath(actor, orderID, fh.Filename)
		url, err := h.blobStore.Upload(c.Request.Context(), path, contentType, data)
		if err != nil {
			resp.Errors = append(resp.Errors, fh.Filename+": "+err.Error())
			continue
		}

		order, err := h.orderService.AppendSubmission(c.Request.Context(), actor, orderID, url, contentType)
		if err != nil {
			writeOrderError(c, err)
			return
		}

		_ = h.realtimeClient.PublishOrderEvent(orderID, "submission_appended",
			supabase.SubmissionAppendedPayload(orderID, len(order.Submission.Files)))

		resp.Files = append(resp.Files, models.FileInfo{
			Filename: fh.Filename,
			URL:      url,
			Size:     fh.Size,
		})
	}

	if len(resp.Files) == 0 && len(resp.Errors) > 0 {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "all uploads failed", Message: resp.Errors[0]})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListSubmissions godoc
// @Summary     View the submission list
// @Description Returns the order's submission files. When the brand opens this view every current file is bulk-marked seen as a side effect, before the data is returned.
// @Tags        submissions
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Success     200 {object} models.OrderResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id}/submissions [get]
func (h *SubmissionsHandler) ListSubmissions(c *gin.Context) {
	actor := middleware.Actor(c)
	orderID := c.Param("order_id")

	// Opening the dialog is what marks items seen. Only the brand has
	// inbound submissions, so the flip is skipped for the influencer.
	if err := h.orderService.MarkSubmissionsSeen(c.Request.Context(), actor, orderID); err != nil {
		if !errors.Is(err, orders.ErrUnauthorized) {
			writeOrderError(c, err)
			return
		}
	}

	order, err := h.orderService.Get(c.Request.Context(), actor, orderID)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id": order.ID,
		"files":    order.Submission.Files,
	})
}

// AppendRevision godoc
// @Summary     Request a revision
// @Description Appends a free-text revision note to the order. Brand only; the order status does not change.
// @Tags        revisions
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Param       request body models.AppendRevisionRequest true "Revision note"
// @Success     200 {object} models.OrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id}/revisions [post]
func (h *SubmissionsHandler) AppendRevision(c *gin.Context) {
	actor := middleware.Actor(c)
	orderID := c.Param("order_id")

	var req models.AppendRevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	order, err := h.orderService.AppendRevision(c.Request.Context(), actor, orderID, req.Text)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	_ = h.realtimeClient.PublishOrderEvent(orderID, "revision_appended",
		supabase.RevisionAppendedPayload(orderID, len(order.Revisions)))

	c.JSON(http.StatusOK, gin.H{
		"order_id":  order.ID,
		"revisions": order.Revisions,
	})
}

// ListRevisions godoc
// @Summary     View the revision list
// @Description Returns the order's revision notes. When the influencer opens this view every current note is bulk-marked seen as a side effect.
// @Tags        revisions
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Success     200 {object} models.OrderResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /orders/{order_id}/revisions [get]
func (h *SubmissionsHandler) ListRevisions(c *gin.Context) {
	actor := middleware.Actor(c)
	orderID := c.Param("order_id")

	if err := h.orderService.MarkRevisionsSeen(c.Request.Context(), actor, orderID); err != nil {
		if !errors.Is(err, orders.ErrUnauthorized) {
			writeOrderError(c, err)
			return
		}
	}

	order, err := h.orderService.Get(c.Request.Context(), actor, orderID)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":  order.ID,
		"revisions": order.Revisions,
	})
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logrus.WithError(cerr).Warn("failed to close multipart file")
		}
	}()
	return io.ReadAll(f)
}
