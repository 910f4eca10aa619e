package valueobjects

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

type ImageFormat string

const (
	JPEG ImageFormat = "jpeg"
	PNG  ImageFormat = "png"
	GIF  ImageFormat = "gif"
	WEBP ImageFormat = "webp"
)

// ピッカーで受け付けるMIMEタイプ
var AcceptedMimeTypes = []string{"image/png", "image/jpeg", "image/webp"}

// ImagePayload はbase64本文とMIMEタイプの組。生成後は変更しない。
type ImagePayload struct {
	base64   string
	mimeType string
}

func NewImagePayload(base64Body string, mimeType string) (*ImagePayload, error) {
	if base64Body == "" {
		return nil, fmt.Errorf("image data cannot be empty")
	}

	return &ImagePayload{
		base64:   base64Body,
		mimeType: mimeType,
	}, nil
}

// NewImagePayloadFromBytes はバイト列をdata URLに変換し、プレフィックスを取り除いてペイロードを作る
func NewImagePayloadFromBytes(data []byte, mimeType string) (*ImagePayload, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image data cannot be empty")
	}

	return ParseDataURL(EncodeDataURL(mimeType, data))
}

// ParseDataURL は "data:<mime>;base64,<body>" を分解する
func ParseDataURL(dataURL string) (*ImagePayload, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data URL")
	}

	header, body, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("data URL has no payload separator")
	}

	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return nil, fmt.Errorf("data URL is not base64 encoded")
	}

	return NewImagePayload(body, mimeType)
}

func EncodeDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func (p *ImagePayload) Base64() string {
	return p.base64
}

func (p *ImagePayload) MimeType() string {
	return p.mimeType
}

func (p *ImagePayload) DataURL() string {
	return "data:" + p.mimeType + ";base64," + p.base64
}

func (p *ImagePayload) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(p.base64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 payload: %w", err)
	}
	return data, nil
}

// ImageInfo はログ用のメタ情報
type ImageInfo struct {
	Format ImageFormat
	Width  int
	Height int
}

// Inspect は画像ヘッダーを読む。判別できない形式でもペイロード自体は有効なのでエラーを返すだけ。
func (p *ImagePayload) Inspect() (*ImageInfo, error) {
	data, err := p.Bytes()
	if err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image config: %w", err)
	}

	var f ImageFormat
	switch format {
	case "jpeg":
		f = JPEG
	case "png":
		f = PNG
	case "gif":
		f = GIF
	case "webp":
		f = WEBP
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	return &ImageInfo{Format: f, Width: cfg.Width, Height: cfg.Height}, nil
}
