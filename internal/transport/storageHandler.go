package transport

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/ds124wfegd/eventmarket/internal/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxUploadBytes = 20 << 20

// StorageHandler accepts presigned PUT uploads when objects live on local disk.
type StorageHandler struct {
	files *storage.FileStorage
}

func NewStorageHandler(files *storage.FileStorage) *StorageHandler {
	return &StorageHandler{files: files}
}

func (h *StorageHandler) Upload(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")

	contentType, err := h.files.VerifyUpload(key, c.Request.URL.Query())
	switch {
	case errors.Is(err, storage.ErrUploadExpired):
		c.JSON(http.StatusForbidden, gin.H{"error": "upload url expired"})
		return
	case err != nil:
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid upload signature"})
		return
	}

	if got := c.GetHeader("Content-Type"); got != "" {
		mediaType, _, _ := mime.ParseMediaType(got)
		if mediaType != contentType {
			c.JSON(http.StatusBadRequest, gin.H{"error": "content type does not match the signed upload"})
			return
		}
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	if err := h.files.WriteFrom(key, body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
			return
		}
		if errors.Is(err, storage.ErrInvalidKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid object key"})
			return
		}
		logrus.WithError(err).WithField("key", key).Error("Failed to store upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return
	}

	c.Status(http.StatusOK)
}
