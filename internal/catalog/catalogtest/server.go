// Package catalogtest serves an in-memory game catalog over HTTP for tests.
package catalogtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/julienschmidt/httprouter"

	"github.com/matthewlefler/devcade-onboard-ui-revamp/internal/catalog"
)

// An in-memory catalog behind an httptest server.
type Server struct {
	URL string // Base URL including scheme.

	mu        sync.Mutex
	games     map[string]catalog.Game
	order     []string
	artifacts map[string][]byte
	icons     map[string][]byte
	banners   map[string][]byte
	tags      map[string]catalog.Tag
	tagGames  map[string][]string
	users     map[string]catalog.User

	downloads atomic.Int32
	srv       *httptest.Server
}

// Starts a server and registers its shutdown with t.
func New(t testing.TB) *Server {
	s := &Server{
		games:     make(map[string]catalog.Game),
		artifacts: make(map[string][]byte),
		icons:     make(map[string][]byte),
		banners:   make(map[string][]byte),
		tags:      make(map[string]catalog.Tag),
		tagGames:  make(map[string][]string),
		users:     make(map[string]catalog.User),
	}

	router := httprouter.New()
	router.GET("/games/", s.handleGames)
	router.GET("/games/:id", s.handleGame)
	router.GET("/games/:id/game", s.handleBytes(s.artifacts, true))
	router.GET("/games/:id/icon", s.handleBytes(s.icons, false))
	router.GET("/games/:id/banner", s.handleBytes(s.banners, false))
	router.GET("/tags/", s.handleTags)
	router.GET("/tags/:name", s.handleTag)
	router.GET("/tags/:name/games", s.handleTagGames)
	router.GET("/users/:id", s.handleUser)

	s.srv = httptest.NewServer(router)
	s.URL = s.srv.URL
	t.Cleanup(s.srv.Close)
	return s
}

// Adds or replaces a game and its artifact.
func (s *Server) AddGame(g catalog.Game, artifact []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[g.ID]; !ok {
		s.order = append(s.order, g.ID)
	}
	s.games[g.ID] = g
	s.artifacts[g.ID] = artifact
}

// Sets the images served for a game.
func (s *Server) AddImages(id string, icon, banner []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.icons[id] = icon
	s.banners[id] = banner
}

// Adds a tag listing the given game ids.
func (s *Server) AddTag(tag catalog.Tag, gameIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[tag.Name] = tag
	s.tagGames[tag.Name] = gameIDs
}

// Adds a user.
func (s *Server) AddUser(u catalog.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// Number of artifact downloads served so far.
func (s *Server) Downloads() int {
	return int(s.downloads.Load())
}

// Stops the server so later requests fail to connect.
func (s *Server) Close() {
	s.srv.Close()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleGames(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	games := make([]catalog.Game, 0, len(s.order))
	for _, id := range s.order {
		games = append(games, s.games[id])
	}
	writeJSON(w, games)
}

func (s *Server) handleGame(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	s.mu.Lock()
	g, ok := s.games[ps.ByName("id")]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, nil)
		return
	}
	writeJSON(w, g)
}

func (s *Server) handleBytes(src map[string][]byte, count bool) httprouter.Handle {
	return func(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
		s.mu.Lock()
		data, ok := src[ps.ByName("id")]
		s.mu.Unlock()
		if !ok {
			http.NotFound(w, nil)
			return
		}
		if count {
			s.downloads.Add(1)
		}
		w.Write(data)
	}
}

func (s *Server) handleTags(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tags := make([]catalog.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		tags = append(tags, t)
	}
	writeJSON(w, tags)
}

func (s *Server) handleTag(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	s.mu.Lock()
	t, ok := s.tags[ps.ByName("name")]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, nil)
		return
	}
	writeJSON(w, t)
}

func (s *Server) handleTagGames(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	s.mu.Lock()
	ids, ok := s.tagGames[ps.ByName("name")]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, nil)
		return
	}
	minimal := make([]map[string]string, 0, len(ids))
	for _, id := range ids {
		minimal = append(minimal, map[string]string{"id": id})
	}
	writeJSON(w, minimal)
}

func (s *Server) handleUser(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	s.mu.Lock()
	u, ok := s.users[ps.ByName("id")]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, nil)
		return
	}
	writeJSON(w, u)
}
