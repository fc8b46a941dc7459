package util

import (
	"Agora/internal/pkg/consts"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

// ProcessedImage 压缩后的待上传图片
type ProcessedImage struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Width       int
	Height      int
	Ext         string
}

// ProcessImage 校验并压缩上传图片，超过最长边的等比缩小
func ProcessImage(reader io.Reader, contentType string) (*ProcessedImage, error) {
	if !strings.HasPrefix(contentType, consts.MimePrefixImage) {
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}

	img, err := imaging.Decode(reader, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image failed: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > consts.MaxImageEdge || bounds.Dy() > consts.MaxImageEdge {
		img = imaging.Fit(img, consts.MaxImageEdge, consts.MaxImageEdge, imaging.Lanczos)
		bounds = img.Bounds()
	}

	// PNG 保留透明通道，其余统一转 JPEG
	format := imaging.JPEG
	outType := "image/jpeg"
	ext := ".jpg"
	if contentType == "image/png" {
		format = imaging.PNG
		outType = "image/png"
		ext = ".png"
	}

	var buf bytes.Buffer
	if err = imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode image failed: %w", err)
	}

	return &ProcessedImage{
		Reader:      &buf,
		Size:        int64(buf.Len()),
		ContentType: outType,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		Ext:         ext,
	}, nil
}
