package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danmuck/tincart/internal/graphic"
	"github.com/danmuck/tincart/internal/store"
)

// maxThumbnailSide bounds ?w= and ?h= on cover routes.
const maxThumbnailSide = 4 * graphic.CoverWidth

func (s *Server) RegisterRoutes() {
	r := s.router
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.ID,
			"version": Version,
		})
	})

	r.GET("/metrics", gin.WrapH(metricsHandler()))

	r.GET("/carts", func(c *gin.Context) {
		names, err := s.List()
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"carts": names})
	})

	r.PUT("/carts/:name", func(c *gin.Context) {
		name := c.Param("name")
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				err = ErrTooLarge
			}
			fail(c, err)
			return
		}
		cart, err := s.Upload(name, body)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, cart.Summary())
	})

	r.GET("/carts/:name", func(c *gin.Context) {
		cart, err := s.Load(c.Param("name"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, cart.Summary())
	})

	r.GET("/carts/:name/raw", func(c *gin.Context) {
		name := c.Param("name")
		data, err := s.store.Get(name)
		if err != nil {
			fail(c, err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=\""+name+store.Ext+"\"")
		c.Data(http.StatusOK, "application/octet-stream", data)
	})

	r.GET("/carts/:name/code", func(c *gin.Context) {
		cart, err := s.Load(c.Param("name"))
		if err != nil {
			fail(c, err)
			return
		}
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(cart.Code))
	})

	r.GET("/carts/:name/cover.png", s.coverHandler(graphic.FormatPNG, "image/png"))
	r.GET("/carts/:name/cover.bmp", s.coverHandler(graphic.FormatBMP, "image/bmp"))

	r.DELETE("/carts/:name", func(c *gin.Context) {
		if err := s.Delete(c.Param("name")); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func (s *Server) coverHandler(format, contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts, err := coverOptions(c, format)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cart, err := s.Load(c.Param("name"))
		if err != nil {
			fail(c, err)
			return
		}
		var buf bytes.Buffer
		if err := graphic.WriteCover(&buf, cart, opts); err != nil {
			fail(c, err)
			return
		}
		c.Data(http.StatusOK, contentType, buf.Bytes())
	}
}

func coverOptions(c *gin.Context, format string) (graphic.CoverOptions, error) {
	opts := graphic.CoverOptions{Format: format}
	rawW, rawH := c.Query("w"), c.Query("h")
	if rawW == "" && rawH == "" {
		return opts, nil
	}
	w, errW := strconv.Atoi(rawW)
	h, errH := strconv.Atoi(rawH)
	if errW != nil || errH != nil || w <= 0 || h <= 0 || w > maxThumbnailSide || h > maxThumbnailSide {
		return opts, errors.New("w and h must both be integers in 1.." + strconv.Itoa(maxThumbnailSide))
	}
	opts.Width, opts.Height = w, h
	return opts, nil
}
