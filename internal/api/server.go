package api

import (
	"net/http"
	"strings"

	"github.com/vk/relaygrid/internal/catalog"
	"github.com/vk/relaygrid/internal/hostcatalog"
)

// DefaultPrefix is the route prefix used when none is configured.
const DefaultPrefix = "/api"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server serves the node API.
type Server struct {
	catalog *catalog.Catalog
	host    *hostcatalog.Registry
	prefix  string
}

// New creates the API server. An empty prefix selects DefaultPrefix.
func New(cat *catalog.Catalog, host *hostcatalog.Registry, prefix string) *Server {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		prefix = ""
	}
	return &Server{catalog: cat, host: host, prefix: prefix}
}

// Prefix returns the normalized route prefix.
func (s *Server) Prefix() string { return s.prefix }

// Register mounts the API routes on mux.
func (s *Server) Register(mux *http.ServeMux) {
	p := s.prefix
	mux.Handle("POST "+p+"/node/create", s.wrap(s.handleCreate))
	mux.Handle("GET "+p+"/node/list", s.wrap(s.handleList))
	mux.Handle("POST "+p+"/node/delete", s.wrap(s.handleDelete))
	mux.Handle("POST "+p+"/node/execute", s.wrap(s.handleExecute))
	mux.Handle("GET "+p+"/node/{id}", s.wrap(s.handleGet))
	mux.Handle("GET "+p+"/node/{id}/schema", s.wrap(s.handleSchema))
	mux.Handle("GET "+p+"/object_info", s.wrap(s.handleObjectInfo))
}

// Handler returns a standalone handler serving only the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}
