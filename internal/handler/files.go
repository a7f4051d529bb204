package handler

import (
	"net/http"
	"path/filepath"

	"factreel/internal/response"
	apperrors "factreel/pkg/errors"

	"github.com/gin-gonic/gin"
)

// DownloadFile serves a rendered video by its download path.
func (h *Handler) DownloadFile(c *gin.Context) {
	path, ok := resolveDownloadPath(h.VideoRoot, c.Param("filepath"))
	if !ok {
		response.ErrorStatus(c, http.StatusForbidden, apperrors.New(apperrors.CodeInvalidParams, "Invalid file path"))
		return
	}
	if !fileExists(path) {
		response.ErrorStatus(c, http.StatusNotFound, apperrors.ErrFileNotFound)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}
