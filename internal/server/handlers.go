package server

import (
	"net/http"
	"time"

	"github.com/matzehuels/stairbuilder/pkg/buildinfo"
	"github.com/matzehuels/stairbuilder/pkg/catalog"
	"github.com/matzehuels/stairbuilder/pkg/errors"
	"github.com/matzehuels/stairbuilder/pkg/layout"
	"github.com/matzehuels/stairbuilder/pkg/pipeline"
	"github.com/matzehuels/stairbuilder/pkg/session"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Current()
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": info.Version,
		"commit":  info.Commit,
		"built":   info.Date,
	})
}

// =============================================================================
// Models
// =============================================================================

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	var (
		models []catalog.Model
		err    error
	)
	if c := r.URL.Query().Get("category"); c != "" {
		models, err = s.repo.ModelsByCategory(r.Context(), c)
	} else {
		models, err = s.repo.Models(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, models)
}

func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	m, err := s.repo.LoadModel(r.Context(), pathID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleAddModel(w http.ResponseWriter, r *http.Request) {
	var m catalog.Model
	if err := decodeJSON(r, &m); err != nil {
		s.writeError(w, r, err)
		return
	}
	if m.ID == "" && m.Name != "" {
		m.ID = catalog.GenerateModelID(m.Name, time.Now())
	}
	added, err := s.repo.AddModel(r.Context(), m)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleDeleteModel(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteModel(r.Context(), pathID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// settingsResponse carries a model's default layout settings.
type settingsResponse struct {
	ModelID  string          `json:"model_id"`
	Settings layout.Settings `json:"settings"`
}

func (s *Server) handleModelSettings(w http.ResponseWriter, r *http.Request) {
	m, err := s.repo.LoadModel(r.Context(), pathID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, settingsResponse{ModelID: m.ID, Settings: m.DefaultSettings()})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.repo.LoadModel(r.Context(), pathID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Model = m
	res, err := s.runner.PlanWithCacheInfo(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// =============================================================================
// Categories
// =============================================================================

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	var (
		cats []catalog.Category
		err  error
	)
	if t := r.URL.Query().Get("type"); t != "" {
		ct := catalog.CategoryType(t)
		if !ct.Valid() {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidCategory, "unknown category type %q", t))
			return
		}
		cats, err = s.repo.CategoriesByType(r.Context(), ct)
	} else {
		cats, err = s.repo.Categories(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var c catalog.Category
	if err := decodeJSON(r, &c); err != nil {
		s.writeError(w, r, err)
		return
	}
	if c.ID == "" && c.Name != "" {
		c.ID = catalog.GenerateCategoryID(c.Name)
	}
	added, err := s.repo.AddCategory(r.Context(), c)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteCategory(r.Context(), pathID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Textures
// =============================================================================

func (s *Server) handleListTextures(w http.ResponseWriter, r *http.Request) {
	var (
		textures []catalog.Texture
		err      error
	)
	if c := r.URL.Query().Get("category"); c != "" {
		textures, err = s.repo.Textures().ByCategory(r.Context(), catalog.TextureCategory(c))
	} else {
		textures, err = s.repo.Textures().All(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, textures)
}

func (s *Server) handleTextureMaps(w http.ResponseWriter, r *http.Request) {
	t, err := s.repo.Textures().ByID(r.Context(), pathID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, catalog.TextureMaps(&t))
}

// =============================================================================
// Sessions
// =============================================================================

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var cfg session.Configuration
	if err := decodeJSON(r, &cfg); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := cfg.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	exists, err := s.repo.ModelExists(r.Context(), cfg.ModelID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !exists {
		s.writeError(w, r, errors.New(errors.ErrCodeModelNotFound, "model not found: %s", cfg.ModelID))
		return
	}
	sess := session.New(cfg, s.sessionTTL)
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeStorage, err, "save session"))
		return
	}
	s.writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := session.Restore(r.Context(), s.sessions, pathID(r), s.repo)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), pathID(r)); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeStorage, err, "delete session"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
