package handler

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/parsa-dv/messenger/internal/filestore"
)

// uploadKeyRegex is the exact shape the upload service generates: a 32-char
// hex key plus the original extension. Anything else (`..`, dotfiles, nested
// paths) is rejected before it reaches the store.
var uploadKeyRegex = regexp.MustCompile(`^[0-9a-f]{32}\.[A-Za-z0-9]+$`)

type FileHandler struct {
	store filestore.Store
}

func NewFileHandler(store filestore.Store) *FileHandler {
	return &FileHandler{store: store}
}

// Get serves locally stored uploads. With an s3 store the public URL points
// at the bucket directly and this route never matches a stored path.
func (h *FileHandler) Get(c *gin.Context) {
	if h.store.Type() != "local" {
		c.Status(http.StatusNotFound)
		return
	}
	key := c.Param("key")
	if !uploadKeyRegex.MatchString(key) {
		c.Status(http.StatusBadRequest)
		return
	}
	file, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	defer file.Close()
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	if _, err := io.Copy(c.Writer, file); err != nil {
		// headers are already written; all we can do is record the break
		logutil.GetLogger(c.Request.Context()).Warn("upload stream interrupted",
			zap.String("key", key), zap.Error(err))
	}
}
