// Package session keeps per-browser state between storefront requests.
//
// Two stores are available: CookieStore seals the whole session into an
// encrypted cookie (nothing is kept server-side), RedisStore keeps the data
// in Redis under a random id carried by the cookie.
//
//	r.Use(session.Middleware(session.CookieStore{}, session.DefaultOptions()))
//
//	sess := session.FromCtx(r.Context())
//	sess.Set("cart", payload)
//	err := sess.Save(r.Context())
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shashiranjanraj/rigparts/pkg/cache"
	"github.com/shashiranjanraj/rigparts/pkg/crypt"
)

// ErrTooLarge is returned when a cookie-backed session outgrows a browser cookie.
var ErrTooLarge = errors.New("session: payload exceeds cookie size limit")

const maxCookieBytes = 4000

type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

func DefaultOptions() Options {
	return Options{
		CookieName: "rigparts_session",
		TTL:        30 * 24 * time.Hour,
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

// Store persists session data. Save returns the value to place in the cookie.
type Store interface {
	Load(ctx context.Context, cookie string) (id string, data map[string]string, err error)
	Save(ctx context.Context, id string, data map[string]string, ttl time.Duration) (cookie string, err error)
}

// CookieStore keeps the session client-side, sealed with pkg/crypt.
type CookieStore struct{}

func (CookieStore) Load(_ context.Context, cookie string) (string, map[string]string, error) {
	var payload struct {
		ID   string            `json:"id"`
		Data map[string]string `json:"data"`
	}
	if err := crypt.DecryptJSON(cookie, &payload); err != nil {
		return "", nil, err
	}
	return payload.ID, payload.Data, nil
}

func (CookieStore) Save(_ context.Context, id string, data map[string]string, _ time.Duration) (string, error) {
	sealed, err := crypt.EncryptJSON(struct {
		ID   string            `json:"id"`
		Data map[string]string `json:"data"`
	}{id, data})
	if err != nil {
		return "", err
	}
	if len(sealed) > maxCookieBytes {
		return "", ErrTooLarge
	}
	return sealed, nil
}

// RedisStore keeps the session in Redis; the cookie holds only the id.
type RedisStore struct{}

func redisKey(id string) string { return "rigparts:session:" + id }

func (RedisStore) Load(ctx context.Context, cookie string) (string, map[string]string, error) {
	var data map[string]string
	if !cache.Get(ctx, redisKey(cookie), &data) {
		return "", nil, fmt.Errorf("session: %s not found", cookie)
	}
	return cookie, data, nil
}

func (RedisStore) Save(ctx context.Context, id string, data map[string]string, ttl time.Duration) (string, error) {
	if cache.RDB == nil {
		return "", errors.New("session: redis unavailable")
	}
	if err := cache.Set(ctx, redisKey(id), data, ttl); err != nil {
		return "", fmt.Errorf("session: redis save: %w", err)
	}
	return id, nil
}

// Session is the request-scoped handle. Safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	id      string
	data    map[string]string
	store   Store
	opts    Options
	pending *http.Cookie
}

func newSession(store Store, opts Options) *Session {
	return &Session{id: uuid.NewString(), data: map[string]string{}, store: store, opts: opts}
}

// New returns a detached session, used by jobs and tests.
func New(store Store) *Session {
	return newSession(store, DefaultOptions())
}

func (s *Session) ID() string { return s.id }

func (s *Session) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *Session) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Save persists the session and queues the cookie for the response.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, err := s.store.Save(ctx, s.id, s.data, s.opts.TTL)
	if err != nil {
		return err
	}

	s.pending = &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    value,
		Path:     s.opts.Path,
		MaxAge:   int(s.opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	}
	return nil
}

func (s *Session) takeCookie() *http.Cookie {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.pending
	s.pending = nil
	return c
}

type ctxKey struct{}

// WithSession attaches sess to ctx.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

// FromCtx returns the session in ctx, or nil.
func FromCtx(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// writer emits the pending session cookie before the first header write.
type writer struct {
	http.ResponseWriter
	sess  *Session
	wrote bool
}

func (w *writer) flushCookie() {
	if w.wrote {
		return
	}
	w.wrote = true
	if c := w.sess.takeCookie(); c != nil {
		http.SetCookie(w.ResponseWriter, c)
	}
}

func (w *writer) WriteHeader(code int) {
	w.flushCookie()
	w.ResponseWriter.WriteHeader(code)
}

func (w *writer) Write(b []byte) (int, error) {
	w.flushCookie()
	return w.ResponseWriter.Write(b)
}

func (w *writer) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Hijack hands the connection to a websocket upgrade. No cookie is written
// on a hijacked connection.
func (w *writer) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	w.wrote = true
	return http.NewResponseController(w.ResponseWriter).Hijack()
}

// Middleware loads the session named by the request cookie (or starts a
// fresh one) and makes it available through FromCtx.
func Middleware(store Store, opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := newSession(store, opts)

			if c, err := r.Cookie(opts.CookieName); err == nil && c.Value != "" {
				if id, data, err := store.Load(r.Context(), c.Value); err == nil && id != "" {
					sess.id = id
					if data != nil {
						sess.data = data
					}
				}
			}

			next.ServeHTTP(&writer{ResponseWriter: w, sess: sess}, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}
