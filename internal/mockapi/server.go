package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultPageSize     = 10
	defaultSignedURLTTL = 5 * time.Minute
	maxUploadSize       = 20 << 20
)

// Options configures a Server
type Options struct {
	Store        *Store
	PageSize     int
	Secret       []byte
	SignedURLTTL time.Duration
	Registry     *prometheus.Registry
	LogRequests  bool
}

// Server is an in-memory stand-in for the Risus REST backend
type Server struct {
	store        *Store
	router       *mux.Router
	metrics      *serverMetrics
	registry     *prometheus.Registry
	pageSize     int
	secret       []byte
	signedURLTTL time.Duration
	logRequests  bool
	now          func() time.Time
}

// New creates a server and registers its routes
func New(opts Options) *Server {
	s := &Server{
		store:        opts.Store,
		registry:     opts.Registry,
		pageSize:     opts.PageSize,
		secret:       opts.Secret,
		signedURLTTL: opts.SignedURLTTL,
		logRequests:  opts.LogRequests,
		now:          time.Now,
	}
	if s.store == nil {
		s.store = NewStore()
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	if s.pageSize <= 0 {
		s.pageSize = defaultPageSize
	}
	if len(s.secret) == 0 {
		s.secret = []byte("risus-mock-signing-key")
	}
	if s.signedURLTTL <= 0 {
		s.signedURLTTL = defaultSignedURLTTL
	}
	s.metrics = newServerMetrics(s.registry)
	s.routes()
	return s
}

// Store exposes the backing store, e.g. for seeding
func (s *Server) Store() *Store { return s.store }

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() {
	r := mux.NewRouter()
	r.Use(s.Instrument)

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// Public routes
	r.HandleFunc("/user/obtain-token/", s.obtainToken).Methods(http.MethodPost)
	r.HandleFunc("/user/user-register/", s.register).Methods(http.MethodPost)
	r.HandleFunc("/user/google-login/", s.googleLogin).Methods(http.MethodPost)
	r.HandleFunc("/storage/{path:.+}", s.storage).Methods(http.MethodGet, http.MethodHead)

	// Protected routes
	protected := r.NewRoute().Subrouter()
	protected.Use(s.Authenticate)

	protected.HandleFunc("/user/profile/", s.profile).Methods(http.MethodGet)
	protected.HandleFunc("/user/profile/update/", s.updateProfile).Methods(http.MethodPost)
	protected.HandleFunc("/user/deactivate-account/", s.deactivate).Methods(http.MethodPost)
	protected.HandleFunc("/user/request-delete/", s.requestDelete).Methods(http.MethodPost)

	protected.HandleFunc("/feed/", s.feed).Methods(http.MethodGet)
	protected.HandleFunc("/feed/create-repost/", s.createRepost).Methods(http.MethodPost)
	protected.HandleFunc("/feed/{thread:[0-9]+}/get-reposts/", s.reposts).Methods(http.MethodGet)
	protected.HandleFunc("/feed/{id:[0-9]+}/like/", s.like).Methods(http.MethodPost)
	protected.HandleFunc("/feed/{id:[0-9]+}/", s.deletePost).Methods(http.MethodDelete)

	protected.HandleFunc("/notifications/", s.notifications).Methods(http.MethodGet)

	protected.HandleFunc("/media/{path:.+}", s.mediaRedirect).Methods(http.MethodGet, http.MethodHead)

	s.router = r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	OK(w, map[string]string{"status": "healthy", "service": "risus-mock-api"})
}

// baseURL rebuilds the scheme and host the client used, for absolute links
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

// absolute turns a stored media path into a URL on this server. Full URLs are left alone.
func absolute(r *http.Request, v *string) *string {
	if v == nil || *v == "" || strings.HasPrefix(*v, "http://") || strings.HasPrefix(*v, "https://") {
		return v
	}
	u := baseURL(r) + "/media/" + strings.TrimLeft(*v, "/")
	return &u
}
