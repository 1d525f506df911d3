package service

import (
	"context"
	"sync"

	"github.com/jengzang/greenguardian-backend-go/internal/apperr"
	"github.com/jengzang/greenguardian-backend-go/internal/models"
	"github.com/jengzang/greenguardian-backend-go/internal/repository"
)

// KnowledgeService serves the built-in article catalog and per-user favorites
type KnowledgeService struct {
	prefs *repository.PreferenceRepository
	mu    sync.Mutex
}

// NewKnowledgeService creates a new knowledge service
func NewKnowledgeService(prefs *repository.PreferenceRepository) *KnowledgeService {
	return &KnowledgeService{prefs: prefs}
}

// ListAll returns the catalog in its fixed order
func (s *KnowledgeService) ListAll() []models.KnowledgeArticle {
	out := make([]models.KnowledgeArticle, len(knowledgeCatalog))
	copy(out, knowledgeCatalog)
	return out
}

// Get returns an article by id
func (s *KnowledgeService) Get(id string) (models.KnowledgeArticle, bool) {
	for _, a := range knowledgeCatalog {
		if a.ID == id {
			return a, true
		}
	}
	return models.KnowledgeArticle{}, false
}

// Favorites returns the articles uid marked as favorite, in catalog order
func (s *KnowledgeService) Favorites(ctx context.Context, uid string) ([]models.KnowledgeArticle, error) {
	set, err := s.prefs.Favorites(ctx, uid)
	if err != nil {
		return nil, err
	}
	out := make([]models.KnowledgeArticle, 0, len(set))
	for _, a := range knowledgeCatalog {
		if set[a.ID] {
			out = append(out, a)
		}
	}
	return out, nil
}

// IsFavorite reports whether uid marked the article as favorite
func (s *KnowledgeService) IsFavorite(ctx context.Context, uid, id string) (bool, error) {
	set, err := s.prefs.Favorites(ctx, uid)
	if err != nil {
		return false, err
	}
	return set[id], nil
}

// ToggleFavorite flips the favorite flag of an article and returns the new state
func (s *KnowledgeService) ToggleFavorite(ctx context.Context, uid, id string) (bool, error) {
	if _, ok := s.Get(id); !ok {
		return false, apperr.NotFound("knowledge.favorite", "article %s not found", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.prefs.Favorites(ctx, uid)
	if err != nil {
		return false, err
	}
	on := !set[id]
	if on {
		set[id] = true
	} else {
		delete(set, id)
	}
	if err := s.prefs.SaveFavorites(ctx, uid, set); err != nil {
		return false, err
	}
	return on, nil
}
