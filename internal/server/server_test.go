package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/tincart/internal/cartridge"
	"github.com/danmuck/tincart/internal/config"
	"github.com/danmuck/tincart/internal/store"
	"github.com/danmuck/tincart/internal/testutil/testlog"
)

func newTestServer(t *testing.T, mutate func(*config.ServiceConfig)) (*Server, store.Store) {
	t.Helper()
	testlog.Start(t)
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultServiceConfig()
	cfg.ID = "cartd-test"
	cfg.Store.Path = filepath.Join(t.TempDir(), "carts")
	if mutate != nil {
		mutate(&cfg)
	}
	st, err := store.Open(cfg.Store)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	s, err := New(cfg, st)
	require.NoError(t, err)
	return s, st
}

func encodedCart(t *testing.T, withCover bool) []byte {
	t.Helper()
	cart := cartridge.Default()
	cart.Version = 4
	cart.Name = "demo"
	cart.Author = "me"
	cart.Code = "main()"
	cart.Palette = []byte{0, 0, 0, 255}
	if withCover {
		cart.Cover = make([]byte, cartridge.CoverSize)
	}
	b, err := cart.Encode()
	require.NoError(t, err)
	return b
}

func do(s *Server, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rr := httptest.NewRecorder()
	s.HTTPRouter().ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), out), "body=%s", rr.Body.String())
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rr := do(s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	decodeJSON(t, rr, &body)
	require.Equal(t, "ok", body["status"])
	require.Equal(t, "cartd-test", body["service"])
}

func TestUploadInspectDownloadDelete(t *testing.T) {
	s, st := newTestServer(t, nil)
	wire := encodedCart(t, true)

	rr := do(s, http.MethodPut, "/carts/demo", wire)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var info cartridge.Info
	decodeJSON(t, rr, &info)
	require.Equal(t, "demo", info.Name)
	require.Equal(t, []string{"cover", "code", "palette"}, info.Chunks)

	rr = do(s, http.MethodGet, "/carts", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Carts []string `json:"carts"`
	}
	decodeJSON(t, rr, &list)
	require.Equal(t, []string{"demo"}, list.Carts)

	rr = do(s, http.MethodGet, "/carts/demo", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeJSON(t, rr, &info)
	require.Equal(t, uint8(4), info.Version)
	require.Equal(t, cartridge.CoverSize, info.CoverSize)

	rr = do(s, http.MethodGet, "/carts/demo/raw", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, wire, rr.Body.Bytes())

	rr = do(s, http.MethodGet, "/carts/demo/code", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "main()", rr.Body.String())

	rr = do(s, http.MethodGet, "/carts/demo/cover.png?w=64&h=32", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	img, err := png.Decode(rr.Body)
	require.NoError(t, err)
	require.Equal(t, 64, img.Bounds().Dx())

	rr = do(s, http.MethodGet, "/carts/demo/cover.bmp", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "image/bmp", rr.Header().Get("Content-Type"))

	rr = do(s, http.MethodDelete, "/carts/demo", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	_, err = st.Get("demo")
	require.ErrorIs(t, err, store.ErrNotFound)

	rr = do(s, http.MethodGet, "/carts/demo", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUploadStoresCanonicalEncoding(t *testing.T) {
	s, st := newTestServer(t, nil)
	wire := encodedCart(t, false)
	padded := append(append([]byte{}, wire...), 0xde, 0xad)

	rr := do(s, http.MethodPut, "/carts/padded", padded)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	stored, err := st.Get("padded")
	require.NoError(t, err)
	require.Equal(t, wire, stored)
}

func TestUploadRejectsInvalidCartridges(t *testing.T) {
	s, _ := newTestServer(t, nil)
	cases := map[string][]byte{
		"unknown chunk": {1, 0, 0, 0, 0, 1, 6, 0, 0, 0, 0},
		"bad palette":   {1, 0, 0, 0, 0, 1, 4, 3, 0, 0, 0, 1, 2, 3, 0, 0, 0, 0, 0},
		"truncated":     {1, 0, 0, 0, 0, 1},
		"bad utf-8":     {1, 1, 0, 0, 0, 1, 0xff, 0, 0, 0, 0, 0},
	}
	for name, body := range cases {
		rr := do(s, http.MethodPut, "/carts/bad", body)
		require.Equal(t, http.StatusBadRequest, rr.Code, "%s: %s", name, rr.Body.String())
		var out map[string]string
		decodeJSON(t, rr, &out)
		require.Contains(t, out["error"], "cartridge:", name)
	}

	rr := do(s, http.MethodPut, "/carts/.hidden", encodedCart(t, false))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUploadTooLarge(t *testing.T) {
	s, _ := newTestServer(t, func(cfg *config.ServiceConfig) { cfg.MaxUploadBytes = 16 })
	rr := do(s, http.MethodPut, "/carts/big", encodedCart(t, false))
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code, rr.Body.String())
}

func TestCoverRoutes(t *testing.T) {
	s, _ := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, do(s, http.MethodPut, "/carts/plain", encodedCart(t, false)).Code)

	rr := do(s, http.MethodGet, "/carts/plain/cover.png", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(s, http.MethodGet, "/carts/plain/cover.png?w=10", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(s, http.MethodGet, "/carts/absent/cover.png", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCorruptStoredCartridge(t *testing.T) {
	s, st := newTestServer(t, nil)
	require.NoError(t, st.Put("broken", []byte{1, 0, 0}))

	rr := do(s, http.MethodGet, "/carts/broken", nil)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestLoadUsesCacheAndDeleteInvalidates(t *testing.T) {
	s, st := newTestServer(t, func(cfg *config.ServiceConfig) { cfg.Store.Backend = config.BackendBolt })
	_, err := s.Upload("cached", encodedCart(t, false))
	require.NoError(t, err)

	// the store copy changes underneath; the cache still answers
	require.NoError(t, st.Put("cached", []byte{0}))
	cart, err := s.Load("cached")
	require.NoError(t, err)
	require.Equal(t, "demo", cart.Name)

	require.NoError(t, s.Delete("cached"))
	_, err = s.Load("cached")
	require.ErrorIs(t, err, store.ErrNotFound)
}

// pausingStore holds the first armed Get after it has read the stored bytes,
// so a write can land before the reader fills the cache.
type pausingStore struct {
	store.Store
	once    sync.Once
	armed   bool
	reached chan struct{}
	release chan struct{}
}

func (p *pausingStore) Get(name string) ([]byte, error) {
	data, err := p.Store.Get(name)
	if p.armed {
		p.once.Do(func() {
			close(p.reached)
			<-p.release
		})
	}
	return data, err
}

func newPausingServer(t *testing.T) (*Server, *pausingStore) {
	t.Helper()
	testlog.Start(t)
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultServiceConfig()
	cfg.ID = "cartd-test"
	cfg.Store.Path = filepath.Join(t.TempDir(), "carts")
	st, err := store.Open(cfg.Store)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	ps := &pausingStore{Store: st, reached: make(chan struct{}), release: make(chan struct{})}
	s, err := New(cfg, ps)
	require.NoError(t, err)
	return s, ps
}

func TestLoadDoesNotCacheAcrossConcurrentWrites(t *testing.T) {
	cases := map[string]func(t *testing.T, s *Server){
		"delete": func(t *testing.T, s *Server) {
			require.NoError(t, s.Delete("racy"))
		},
		"upload": func(t *testing.T, s *Server) {
			cart := cartridge.Default()
			cart.Name = "second"
			b, err := cart.Encode()
			require.NoError(t, err)
			_, err = s.Upload("racy", b)
			require.NoError(t, err)
		},
	}
	for name, write := range cases {
		t.Run(name, func(t *testing.T) {
			s, ps := newPausingServer(t)
			require.NoError(t, ps.Store.Put("racy", encodedCart(t, false)))
			ps.armed = true

			done := make(chan error, 1)
			go func() {
				_, err := s.Load("racy")
				done <- err
			}()
			select {
			case <-ps.reached:
			case <-time.After(5 * time.Second):
				t.Fatal("load never reached the store")
			}
			write(t, s)
			close(ps.release)
			require.NoError(t, <-done)

			after, err := s.Load("racy")
			if name == "delete" {
				require.ErrorIs(t, err, store.ErrNotFound)
				require.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/carts/racy", nil).Code)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "second", after.Name)
		})
	}
}

func TestHTTPServerTimeouts(t *testing.T) {
	s, _ := newTestServer(t, func(cfg *config.ServiceConfig) {
		cfg.ReadTimeout = 3 * time.Second
		cfg.ReadHeaderTimeout = time.Second
		cfg.WriteTimeout = 7 * time.Second
	})
	srv := s.httpServer()
	require.Equal(t, s.Addr, srv.Addr)
	require.Equal(t, 3*time.Second, srv.ReadTimeout)
	require.Equal(t, time.Second, srv.ReadHeaderTimeout)
	require.Equal(t, 7*time.Second, srv.WriteTimeout)
}

func TestMetricsRoute(t *testing.T) {
	s, _ := newTestServer(t, nil)
	do(s, http.MethodGet, "/health", nil)
	rr := do(s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "tincart_http_requests_total")
}
