package handler

import (
	"Agora/internal/api/dto"
	"Agora/internal/pkg/minio"
	"Agora/internal/pkg/response"
	"Agora/internal/pkg/util"
	"Agora/internal/service"
	log "log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MediaHandler struct{}

func NewMediaHandler() *MediaHandler {
	return &MediaHandler{}
}

// Upload 图片上传：嗅探类型、压缩后入桶
func (s *MediaHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	reader, err := file.Open()
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	defer func() { _ = reader.Close() }()

	contentType, err := util.GetSafeContentType(reader)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	processed, err := util.ProcessImage(reader, contentType)
	if err != nil {
		log.WarnContext(c.Request.Context(), "image process failed", "filename", file.Filename, "err", err)
		response.Error(c, service.ErrFileNotSupported)
		return
	}

	objectName := time.Now().Format("2006/01/02/") + uuid.NewString() + processed.Ext
	fileKey, err := minio.UploadFile(c.Request.Context(), objectName, processed.Reader, processed.Size, processed.ContentType)
	if err != nil {
		log.ErrorContext(c.Request.Context(), "MinIO upload failed", "err", err)
		response.Error(c, service.UnExpectedError)
		return
	}

	response.Success(c, &dto.MediaUploadDTO{
		URL:    minio.GetPublicURL(fileKey),
		Width:  processed.Width,
		Height: processed.Height,
	})
}
