package uploads

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tokyosushibar/backend/models"
)

// DerivativeGenerator is implemented by Pipeline; the handler only needs
// this one operation.
type DerivativeGenerator interface {
	GenerateDerivatives(ctx context.Context, source []byte, productID uuid.UUID) (*models.Attachment, error)
}

type UploadHandler struct {
	pipeline DerivativeGenerator
}

func NewUploadHandler(pipeline DerivativeGenerator) *UploadHandler {
	return &UploadHandler{pipeline: pipeline}
}

// HandleUploadImage accepts multipart form {image, product_id} and runs the
// derivative pipeline. Responses always carry {success, message}.
func (h *UploadHandler) HandleUploadImage(c *gin.Context) {
	productID, err := uuid.Parse(c.PostForm("product_id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "product_id must be a valid uuid")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		fail(c, http.StatusBadRequest, "image file is required")
		return
	}
	if fileHeader.Size > MaxUploadBytes {
		fail(c, http.StatusBadRequest, "image is too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "failed to read uploaded file")
		return
	}
	defer file.Close()

	source, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		fail(c, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	if _, err := h.pipeline.GenerateDerivatives(c.Request.Context(), source, productID); err != nil {
		var validation *models.ValidationError
		var notFound *models.NotFoundError
		switch {
		case errors.As(err, &validation):
			fail(c, http.StatusBadRequest, validation.Msg)
		case errors.As(err, &notFound):
			fail(c, http.StatusNotFound, notFound.Error())
		default:
			logger.Error().Err(err).Str("product_id", productID.String()).Msg("derivative pipeline failed")
			fail(c, http.StatusInternalServerError, "failed to process image")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "image and thumbnails saved in multiple formats, one attachment record created",
	})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}
