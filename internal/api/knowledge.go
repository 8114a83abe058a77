package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"decision-eval/backend/internal/knowledge"
)

// NamespaceDTO is a namespace with its summary.
type NamespaceDTO struct {
	knowledge.Summary
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleListNamespaces(c *gin.Context) {
	items := make([]NamespaceDTO, 0, len(s.knowledge.Namespaces()))
	for _, ns := range s.knowledge.Catalogue() {
		items = append(items, s.namespaceDTO(ns))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) handleGetNamespace(c *gin.Context) {
	ns, ok := s.knowledge.Namespace(c.Param("id"))
	if !ok {
		s.renderError(c, http.StatusNotFound, fmt.Errorf("namespace %s not found", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"namespace": s.namespaceDTO(ns),
		"items":     s.knowledge.Get(ns.ID),
	})
}

func (s *Server) handleSearchNamespace(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.knowledge.Namespace(id); !ok {
		s.renderError(c, http.StatusNotFound, fmt.Errorf("namespace %s not found", id))
		return
	}
	limit := s.engine.RetrievalLimit()
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.renderError(c, http.StatusBadRequest, fmt.Errorf("invalid limit: %s", raw))
			return
		}
		limit = parsed
	}
	items, err := s.knowledge.Search(c.Request.Context(), id, c.Query("q"), limit)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"namespace": id, "items": items})
}

func (s *Server) handlePrinciples(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": s.knowledge.Principles()})
}

func (s *Server) namespaceDTO(ns knowledge.Namespace) NamespaceDTO {
	return NamespaceDTO{
		Summary:     s.knowledge.Summary(ns.ID),
		Name:        ns.Name,
		Description: ns.Description,
	}
}
