package util

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// GenerateUniqueFilename 生成唯一的文件名
func GenerateUniqueFilename(originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	name := filepath.Base(originalFilename)
	name = strings.ReplaceAll(name[:len(name)-len(filepath.Ext(originalFilename))], " ", "_")

	return name + "_" + uuid.NewString()[:8] + ext
}

// IsAllowedImage 只接受常见的图片扩展名
func IsAllowedImage(filename string) bool {
	return allowedImageExts[strings.ToLower(filepath.Ext(filename))]
}
