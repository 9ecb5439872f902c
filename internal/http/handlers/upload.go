package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 20 << 20

// readUpload parses the multipart body and returns the named file's bytes.
func readUpload(c *gin.Context, field string) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes+1<<20)
	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing %q file", field)
	}
	if fh.Size > maxUploadBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", maxUploadBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxUploadBytes))
}

func formValue(c *gin.Context, key string) string {
	return strings.TrimSpace(c.PostForm(key))
}

func formBool(c *gin.Context, key string, def bool) bool {
	switch strings.ToLower(formValue(c, key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
