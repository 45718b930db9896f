package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokyosushibar/backend/models"
)

type MockGenerator struct {
	err           error
	lastProductID uuid.UUID
	lastSource    []byte
}

func (m *MockGenerator) GenerateDerivatives(_ context.Context, source []byte, productID uuid.UUID) (*models.Attachment, error) {
	m.lastProductID = productID
	m.lastSource = source
	if m.err != nil {
		return nil, m.err
	}
	return &models.Attachment{ID: uuid.New(), ProductID: productID, Preview: true}, nil
}

type uploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func multipartBody(t *testing.T, productID, payload string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if productID != "" {
		require.NoError(t, writer.WriteField("product_id", productID))
	}
	if payload != "" {
		part, err := writer.CreateFormFile("image", "dish.png")
		require.NoError(t, err)
		_, err = part.Write([]byte(payload))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func performUpload(t *testing.T, generator *MockGenerator, productID, payload string) (*httptest.ResponseRecorder, uploadResponse) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/upload", NewUploadHandler(generator).HandleUploadImage)

	body, contentType := multipartBody(t, productID, payload)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp uploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestHandleUploadImage(t *testing.T) {
	generator := &MockGenerator{}
	productID := uuid.New()

	rec, resp := performUpload(t, generator, productID.String(), "fake image bytes")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, productID, generator.lastProductID)
	assert.Equal(t, []byte("fake image bytes"), generator.lastSource)
}

func TestHandleUploadImageBadRequest(t *testing.T) {
	t.Run("invalid product id", func(t *testing.T) {
		rec, resp := performUpload(t, &MockGenerator{}, "not-a-uuid", "payload")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, resp.Success)
	})

	t.Run("missing file", func(t *testing.T) {
		rec, resp := performUpload(t, &MockGenerator{}, uuid.NewString(), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, resp.Success)
	})

	t.Run("pipeline validation error", func(t *testing.T) {
		generator := &MockGenerator{err: &models.ValidationError{Msg: "image is not a decodable raster file"}}
		rec, resp := performUpload(t, generator, uuid.NewString(), "payload")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "image is not a decodable raster file", resp.Message)
	})
}

func TestHandleUploadImageUnknownProduct(t *testing.T) {
	generator := &MockGenerator{err: &models.NotFoundError{Entity: "product", ID: uuid.NewString()}}
	rec, resp := performUpload(t, generator, uuid.NewString(), "payload")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
}

func TestHandleUploadImageInternalError(t *testing.T) {
	generator := &MockGenerator{err: errors.New("bucket unreachable")}
	rec, resp := performUpload(t, generator, uuid.NewString(), "payload")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "failed to process image", resp.Message)
}
