package ginserver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	advertapp "staybook/internal/app/handlers/adverts"
	"staybook/internal/app/queries"
	domainadvert "staybook/internal/domain/advert"
	"staybook/internal/domain/shared/daterange"
	domainuser "staybook/internal/domain/user"
)

const (
	maxAdvertPictures         = 5
	maxPictureSizeBytes int64 = 10 * 1024 * 1024
)

type AdvertHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

func (h AdvertHandler) Catalog(c *gin.Context) {
	if h.Queries == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, errors.New("queries bus unavailable"))
		return
	}

	filter := domainadvert.Filter{City: strings.TrimSpace(c.Query("city"))}
	var err error
	if filter.MinPrice, err = parsePriceBound(c.Query("min_price")); err != nil {
		h.respondWithError(c, http.StatusBadRequest, err)
		return
	}
	if filter.MaxPrice, err = parsePriceBound(c.Query("max_price")); err != nil {
		h.respondWithError(c, http.StatusBadRequest, err)
		return
	}

	query := advertapp.SearchCatalogQuery{Filter: filter}
	result, err := queries.Ask[advertapp.SearchCatalogQuery, []dto.CatalogEntry](c.Request.Context(), h.Queries, query)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdvertHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, errors.New("commands bus unavailable"))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		h.respondWithError(c, http.StatusBadRequest, errors.New("multipart form expected"))
		return
	}
	payload, err := advertPayloadFromForm(form)
	if err != nil {
		h.respondWithError(c, http.StatusBadRequest, err)
		return
	}
	files, err := pictureUploads(form)
	if err != nil {
		h.respondWithError(c, http.StatusBadRequest, err)
		return
	}

	cmd := advertapp.CreateAdvertCommand{
		OwnerID: principalUserID(p),
		Payload: payload,
		Files:   files,
	}
	result, err := commands.Dispatch[advertapp.CreateAdvertCommand, *dto.AdvertDetail](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/v1/adverts/%s", result.ID))
	c.JSON(http.StatusCreated, result)
}

func (h AdvertHandler) Update(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, errors.New("commands bus unavailable"))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		h.respondWithError(c, http.StatusBadRequest, errors.New("multipart form expected"))
		return
	}
	payload, err := advertPayloadFromForm(form)
	if err != nil {
		h.respondWithError(c, http.StatusBadRequest, err)
		return
	}
	files, err := pictureUploads(form)
	if err != nil {
		h.respondWithError(c, http.StatusBadRequest, err)
		return
	}

	cmd := advertapp.EditAdvertCommand{
		AdvertID:    domainadvert.ID(c.Param("id")),
		RequesterID: principalUserID(p),
		Payload:     payload,
		Files:       files,
		Deletions:   form.Value["deleted_images"],
	}
	result, err := commands.Dispatch[advertapp.EditAdvertCommand, *dto.AdvertDetail](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdvertHandler) Delete(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		h.respondWithError(c, http.StatusServiceUnavailable, errors.New("commands bus unavailable"))
		return
	}

	cmd := advertapp.DeleteAdvertCommand{
		AdvertID:    domainadvert.ID(c.Param("id")),
		RequesterID: principalUserID(p),
	}
	if _, err := commands.Dispatch[advertapp.DeleteAdvertCommand, *advertapp.DeleteAdvertResult](c.Request.Context(), h.Commands, cmd); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func advertPayloadFromForm(form *multipart.Form) (advertapp.AdvertPayload, error) {
	price, err := parsePrice(formValue(form, "price_per_night"))
	if err != nil {
		return advertapp.AdvertPayload{}, err
	}
	return advertapp.AdvertPayload{
		Title:         formValue(form, "title"),
		Description:   formValue(form, "description"),
		Address:       formValue(form, "address"),
		City:          formValue(form, "city"),
		PricePerNight: price,
	}, nil
}

// pictureUploads buffers each image so the multipart temp files can be
// released before the command pipeline runs.
func pictureUploads(form *multipart.Form) ([]advertapp.FileUpload, error) {
	headers := form.File["images"]
	if len(headers) > maxAdvertPictures {
		return nil, fmt.Errorf("too many images (max %d)", maxAdvertPictures)
	}

	uploads := make([]advertapp.FileUpload, 0, len(headers))
	for _, header := range headers {
		contentType := header.Header.Get("Content-Type")
		if !isAllowedImageType(contentType) {
			return nil, fmt.Errorf("unsupported image type %q", contentType)
		}
		if header.Size > maxPictureSizeBytes {
			return nil, fmt.Errorf("image too large (max %d MB)", maxPictureSizeBytes/1024/1024)
		}
		data, err := readUpload(header)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, advertapp.FileUpload{
			Reader:      bytes.NewReader(data),
			ContentType: contentType,
		})
	}
	return uploads, nil
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPictureSizeBytes+1024))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxPictureSizeBytes {
		return nil, fmt.Errorf("image too large (max %d MB)", maxPictureSizeBytes/1024/1024)
	}
	return data, nil
}

func (h AdvertHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, advertapp.ErrAdvertNotOwned):
		h.respondWithError(c, http.StatusForbidden, err)
	case isValidationError(err):
		h.respondWithError(c, http.StatusBadRequest, err)
	case errors.Is(err, domainadvert.ErrConcurrentWrite):
		h.respondWithError(c, http.StatusConflict, err)
	case errors.Is(err, domainadvert.ErrNotFound):
		h.respondWithError(c, http.StatusNotFound, err)
	default:
		h.respondWithError(c, http.StatusInternalServerError, err)
	}
}

func (h AdvertHandler) respondWithError(c *gin.Context, status int, err error) {
	if h.Logger != nil {
		fields := []any{"status", status, "error", err, "path", c.FullPath()}
		if p, ok := currentPrincipal(c); ok {
			fields = append(fields, "user_id", p.ID)
		}
		h.Logger.Error("advert request failed", fields...)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func principalUserID(p principal) domainuser.ID {
	return domainuser.ID(p.ID)
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, domainadvert.ErrTitleRequired),
		errors.Is(err, domainadvert.ErrPriceNegative),
		errors.Is(err, domainadvert.ErrInvalidCity),
		errors.Is(err, daterange.ErrInvalidRange):
		return true
	}
	return false
}

func isAllowedImageType(contentType string) bool {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}

func parsePrice(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	price, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || price < 0 {
		return 0, errors.New("price must be a non-negative integer")
	}
	return price, nil
}

// parsePriceBound keeps "absent" distinct from "zero": an empty query
// parameter means no bound, while an explicit 0 bounds the price at zero.
func parsePriceBound(raw string) (*int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	price, err := parsePrice(raw)
	if err != nil {
		return nil, err
	}
	return &price, nil
}

func formValue(form *multipart.Form, key string) string {
	values := form.Value[key]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

var _ AdvertHTTP = (*AdvertHandler)(nil)
