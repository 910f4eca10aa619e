package services

import (
	"mime"
	"net/http"
	"strings"

	"fusion-demo/internal/domain/valueobjects"
)

type ParameterService struct{}

func NewParameterService() *ParameterService {
	return &ParameterService{}
}

// ActionFromRequest はフォームの action を返す。未指定ならデフォルトの動作。
func (s *ParameterService) ActionFromRequest(r *http.Request) string {
	return s.getString(r, "action", valueobjects.DefaultAction().String())
}

func (s *ParameterService) SlotFromPath(value string) (valueobjects.Slot, error) {
	return valueobjects.ParseSlot(value)
}

// MimeTypeFromHeader はパラメータ部分を落としたContent-Typeを返す。解釈できなければ空文字。
func (s *ParameterService) MimeTypeFromHeader(header string) string {
	if header == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	// multipartのデフォルト値はブラウザが型を判別できなかったことを示すだけ
	if mediaType == "application/octet-stream" {
		return ""
	}
	return strings.ToLower(mediaType)
}

func (s *ParameterService) getString(r *http.Request, key, defaultValue string) string {
	value := strings.TrimSpace(r.FormValue(key))
	if value == "" {
		return defaultValue
	}
	return value
}
