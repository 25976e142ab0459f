package service

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/choviet-next/internal/config"
	"github.com/choviet-next/internal/logger"
	"github.com/choviet-next/internal/storage/pinata"

	"github.com/google/uuid"
)

// UploadService 图片上传服务。文件校验后固定到内容寻址存储，
// 返回存储 ID 与网关访问地址。
type UploadService struct {
	cfg   *config.Config
	store *pinata.Client
}

// NewUploadService 创建上传服务
func NewUploadService(cfg *config.Config, store *pinata.Client) *UploadService {
	return &UploadService{cfg: cfg, store: store}
}

// UploadResult 上传结果
type UploadResult struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// UploadImage 上传商品图片
func (s *UploadService) UploadImage(ctx context.Context, file *multipart.FileHeader) (*UploadResult, error) {
	if s.store == nil || !s.store.Enabled() {
		return nil, ErrStorageUnavailable
	}
	if file.Size > s.cfg.Upload.MaxSize {
		return nil, ErrFileTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	// 按内容嗅探类型，不信任请求头里的扩展名
	sniffLen := len(data)
	if sniffLen > 512 {
		sniffLen = 512
	}
	contentType := http.DetectContentType(data[:sniffLen])
	if !s.isTypeAllowed(contentType) {
		return nil, ErrFileTypeNotAllowed
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(file.Filename))
	result, err := s.store.Store(ctx, data, name, contentType)
	if err != nil {
		logger.Errorw("upload_store_failed", "name", name, "error", err)
		return nil, err
	}

	logger.Infow("upload_stored", "id", result.ID, "size", file.Size)
	return &UploadResult{
		ID:   result.ID,
		URL:  result.URL,
		Name: name,
		Size: file.Size,
	}, nil
}

func (s *UploadService) isTypeAllowed(contentType string) bool {
	if len(s.cfg.Upload.AllowedTypes) == 0 {
		return strings.HasPrefix(contentType, "image/")
	}
	for _, allowed := range s.cfg.Upload.AllowedTypes {
		if strings.EqualFold(allowed, contentType) {
			return true
		}
	}
	return false
}
