package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/pkg/apperror"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/strapi"
)

// допустимые MIME-типы загружаемых файлов по магическим байтам
var allowedUploadMIME = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// MediaHandler проксирует загрузку файлов и выдачу метаданных медиа.
type MediaHandler struct {
	client   *strapi.Client
	maxBytes int64
}

func NewMediaHandler(client *strapi.Client, maxUploadMB int64) *MediaHandler {
	return &MediaHandler{client: client, maxBytes: maxUploadMB * 1024 * 1024}
}

// Upload обрабатывает POST /api/upload: проверяет файлы по магическим
// байтам и пересылает их бэкенду от имени пользователя.
func (h *MediaHandler) Upload(c *gin.Context) {
	token, err := currentToken(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := c.Request.ParseMultipartForm(h.maxBytes); err != nil {
		respondError(c, apperror.New(apperror.ErrCodeValidation, "не удалось прочитать форму загрузки, проверьте размер файла"))
		return
	}

	files := c.Request.MultipartForm.File["files"]
	if len(files) == 0 {
		respondError(c, apperror.New(apperror.ErrCodeValidation, "поле files обязательно"))
		return
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, fh := range files {
		if fh.Size > h.maxBytes {
			respondError(c, apperror.New(apperror.ErrCodeValidation, "файл слишком большой: "+fh.Filename))
			return
		}
		if err := h.appendFile(writer, fh); err != nil {
			respondError(c, err)
			return
		}
	}
	if err := writer.Close(); err != nil {
		respondError(c, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось подготовить файлы к загрузке"))
		return
	}

	uploaded, err := h.client.ForwardUpload(c.Request.Context(), token, writer.FormDataContentType(), &buf)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "files": uploaded})
}

func (h *MediaHandler) appendFile(writer *multipart.Writer, fh *multipart.FileHeader) error {
	src, err := fh.Open()
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, "не удалось прочитать файл "+fh.Filename)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, "не удалось прочитать файл "+fh.Filename)
	}

	if err := checkUploadType(fh.Filename, content); err != nil {
		return err
	}

	part, err := writer.CreateFormFile("files", fh.Filename)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось подготовить файлы к загрузке")
	}
	if _, err := part.Write(content); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось подготовить файлы к загрузке")
	}
	return nil
}

// checkUploadType сверяет содержимое с магическими байтами.
// SVG — текстовый XML, filetype его не распознаёт, поэтому для него
// достаточно расширения.
func checkUploadType(name string, content []byte) error {
	if strings.EqualFold(filepath.Ext(name), ".svg") {
		return nil
	}

	kind, err := filetype.Match(content)
	if err != nil || kind == filetype.Unknown || !allowedUploadMIME[kind.MIME.Value] {
		return apperror.New(apperror.ErrCodeValidation, "недопустимый тип файла: "+name)
	}
	return nil
}

// Media обрабатывает GET /api/media?id=: метаданные файла и абсолютный URL.
func (h *MediaHandler) Media(c *gin.Context) {
	token, err := currentToken(c)
	if err != nil {
		respondError(c, err)
		return
	}

	id := c.Query("id")
	if id == "" {
		respondError(c, apperror.New(apperror.ErrCodeValidation, "укажите id файла"))
		return
	}

	file, err := h.client.MediaFile(c.Request.Context(), token, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"url":  h.client.MediaURL(asStringValue(file["url"])),
		"file": file,
	})
}

func asStringValue(v any) string {
	s, _ := v.(string)
	return s
}
