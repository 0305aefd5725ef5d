package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/anasaboreeda/anascode/internal/content"
	"github.com/anasaboreeda/anascode/internal/feed"
	"github.com/anasaboreeda/anascode/internal/seo"
	"github.com/anasaboreeda/anascode/internal/sitemap"
	"github.com/anasaboreeda/anascode/internal/social"
	"github.com/anasaboreeda/anascode/pkg/version"
)

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// articleDetail is an article with its body and structured data.
type articleDetail struct {
	content.Article
	Content string          `json:"content"`
	JSONLD  json.RawMessage `json:"jsonLd"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: version.GetVersion()})
}

func (s *Server) handleListArticles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.index.Articles())
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := content.ValidateSlug(slug); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, ok := s.index.Document(slug)
	if !ok || (s.cfg.Content.IsProduction() && !doc.Frontmatter.IsPublished()) {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}

	article := doc.Article()
	ld, err := seo.ArticleJSONLD(s.cfg.Site, article)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, articleDetail{Article: article, Content: doc.Content, JSONLD: ld})
}

func (s *Server) handleTweets(w http.ResponseWriter, _ *http.Request) {
	tw := s.cfg.Social.Twitter
	tweets := []social.Tweet{}
	if s.store != nil {
		tweets = social.CachedTweets(s.store, tw.Username, tw.MaxResults)
	}
	writeJSON(w, http.StatusOK, tweets)
}

func (s *Server) handleLinks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Links)
}

func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	rss, err := feed.BuildRSS(s.cfg.Site, s.index.Articles(), s.now())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	_, _ = w.Write([]byte(rss))
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	data, err := sitemap.Build(s.cfg.Site.URL, sitemap.DefaultPages(), s.index.Articles(), s.now())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeInternalError logs err and hides it from the client.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal server error")
}
