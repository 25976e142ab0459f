package account

import (
	"github.com/choviet-next/internal/http/handlers/shared"
	"github.com/choviet-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// UploadImage 上传商品图片到内容寻址存储
func (h *Handler) UploadImage(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	result, err := h.UploadService.UploadImage(c.Request.Context(), file)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Created(c, "file uploaded", result)
}
