// Package server exposes a cartridge store over HTTP.
package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/tincart/internal/cartridge"
	"github.com/danmuck/tincart/internal/config"
	"github.com/danmuck/tincart/internal/observability"
	"github.com/danmuck/tincart/internal/store"
)

const Version = "0.1.0"

var (
	ErrTooLarge = errors.New("server: cartridge upload too large")
	ErrCorrupt  = errors.New("server: stored cartridge is corrupt")
)

// Server serves cartridges from a Store. Decoded cartridges are cached by
// name and must not be mutated by handlers.
type Server struct {
	ID       string
	Addr     string
	Appeared time.Time

	store     store.Store
	maxUpload int64
	timeouts  timeouts
	router    *gin.Engine

	// mu orders cache writes against store writes. generation is bumped by
	// every Upload and Delete; a Load only fills the cache when no write
	// landed between its store read and its cache insert.
	mu         sync.Mutex
	generation uint64
	cache      *lru.Cache[string, *cartridge.Cartridge]
}

type timeouts struct {
	read       time.Duration
	readHeader time.Duration
	write      time.Duration
}

func New(cfg config.ServiceConfig, st store.Store) (*Server, error) {
	if st == nil {
		return nil, fmt.Errorf("server: nil store")
	}
	cache, err := lru.New[string, *cartridge.Cartridge](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("server: cache: %w", err)
	}

	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(cfg.ID))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET", "PUT", "DELETE"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		ID:          cfg.ID,
		Addr:        cfg.ListenAddr,
		Appeared:    time.Now(),
		store:     st,
		cache:     cache,
		maxUpload: cfg.MaxUploadBytes,
		timeouts: timeouts{
			read:       cfg.ReadTimeout,
			readHeader: cfg.ReadHeaderTimeout,
			write:      cfg.WriteTimeout,
		},
		router: r,
	}
	s.RegisterRoutes()
	return s, nil
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) Serve() error {
	log.Info().Str("service", s.ID).Str("addr", s.Addr).Msg("cartd listening")
	return s.httpServer().ListenAndServe()
}

func (s *Server) httpServer() *http.Server {
	return &http.Server{
		Addr:              s.Addr,
		Handler:           s.router,
		ReadTimeout:       s.timeouts.read,
		ReadHeaderTimeout: s.timeouts.readHeader,
		WriteTimeout:      s.timeouts.write,
	}
}

// Load returns the decoded cartridge stored under name.
func (s *Server) Load(name string) (*cartridge.Cartridge, error) {
	if cart, ok := s.cache.Get(name); ok {
		observability.RecordCacheLookup(s.ID, true)
		return cart, nil
	}
	observability.RecordCacheLookup(s.ID, false)

	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	data, err := s.store.Get(name)
	if err != nil {
		return nil, err
	}
	cart, err := cartridge.DecodeBytes(data)
	observability.RecordCodec("decode", len(data), err)
	if err != nil {
		log.Error().Str("service", s.ID).Str("cart", name).Err(err).Msg("stored cartridge failed to decode")
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, name, err)
	}

	s.mu.Lock()
	if s.generation == gen {
		s.cache.Add(name, cart)
	}
	s.mu.Unlock()
	return cart, nil
}

// Upload decodes data and stores the canonical encoding of the result, so
// trailing bytes after the End chunk are dropped.
func (s *Server) Upload(name string, data []byte) (*cartridge.Cartridge, error) {
	if err := store.ValidateName(name); err != nil {
		return nil, err
	}
	cart, err := cartridge.DecodeBytes(data)
	observability.RecordCodec("decode", len(data), err)
	if err != nil {
		return nil, err
	}
	canonical, err := cart.Encode()
	observability.RecordCodec("encode", len(canonical), err)
	if err != nil {
		return nil, err
	}
	if err := s.store.Put(name, canonical); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.generation++
	s.cache.Add(name, cart)
	s.mu.Unlock()

	log.Info().
		Str("service", s.ID).
		Str("cart", name).
		Int("bytes", len(canonical)).
		Bool("trimmed", !bytes.Equal(canonical, data)).
		Msg("cartridge stored")
	return cart, nil
}

func (s *Server) Delete(name string) error {
	if err := s.store.Delete(name); err != nil {
		return err
	}
	s.mu.Lock()
	s.generation++
	s.cache.Remove(name)
	s.mu.Unlock()
	log.Info().Str("service", s.ID).Str("cart", name).Msg("cartridge deleted")
	return nil
}

func (s *Server) List() ([]string, error) {
	return s.store.List("")
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
