package services

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/teamdesk/internal/apperror"
)

const (
	chatImageFolder = "chat-images"
	maxImageSize    = 5 * 1024 * 1024
)

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// DecodeImage разбирает base64 (с префиксом data:image/...;base64, или без) и проверяет, что это картинка.
func DecodeImage(encoded string) ([]byte, string, error) {
	encoded = strings.TrimSpace(encoded)
	if i := strings.Index(encoded, ","); strings.HasPrefix(encoded, "data:") && i >= 0 {
		encoded = encoded[i+1:]
	}
	if encoded == "" {
		return nil, "", apperror.BadRequest("Image is empty")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", apperror.BadRequest("Image must be base64 encoded")
	}
	if len(data) > maxImageSize {
		return nil, "", apperror.BadRequest("Image is too large")
	}

	ext, ok := imageExtensions[http.DetectContentType(data)]
	if !ok {
		return nil, "", apperror.BadRequest("Unsupported image type")
	}
	return data, ext, nil
}

// imageFileName генерирует имя вида <unix-ms>-<random>.<ext>
func imageFileName(ext string) string {
	return fmt.Sprintf("%d-%s.%s", time.Now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:10], ext)
}
