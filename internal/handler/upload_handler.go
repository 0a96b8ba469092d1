package handler

import (
	"net/http"

	"chatgraph/internal/services"
	"chatgraph/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	service *services.UploadService
}

func NewUploadHandler(service *services.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// PresignPicture hands out a presigned PUT for a picture upload.
func (h *UploadHandler) PresignPicture(c *gin.Context) {
	var req httpdto.PresignPictureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	res, err := h.service.PresignPicture(c.Request.Context(), req.ContentType, req.FileSize)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(res))
}
