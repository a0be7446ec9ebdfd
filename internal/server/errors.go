package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danmuck/tincart/internal/cartridge"
	"github.com/danmuck/tincart/internal/graphic"
	"github.com/danmuck/tincart/internal/store"
)

func metricsHandler() http.Handler {
	return promhttp.Handler()
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var (
		typeErr     *cartridge.InvalidChunkTypeError
		sizeErr     *cartridge.InvalidChunkSizeError
		maxErr      *cartridge.InvalidChunkMaxSizeError
		mismatchErr *cartridge.MismatchedChunkSizesError
		textErr     *cartridge.StringTooLongError
	)
	switch {
	case errors.Is(err, ErrCorrupt):
		return http.StatusInternalServerError
	case errors.Is(err, store.ErrNotFound), errors.Is(err, graphic.ErrNoCover):
		return http.StatusNotFound
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, store.ErrInvalidName),
		errors.Is(err, cartridge.ErrInvalidUTF8),
		errors.As(err, &typeErr),
		errors.As(err, &sizeErr),
		errors.As(err, &maxErr),
		errors.As(err, &mismatchErr),
		errors.As(err, &textErr),
		cartridge.IsIOError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
