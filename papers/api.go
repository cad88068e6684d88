package papers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// APIServer exposes stored papers over HTTP.
type APIServer struct {
	store Reader
}

// NewAPIServer creates an API server reading from store.
func NewAPIServer(store Reader) *APIServer {
	return &APIServer{store: store}
}

// SetupRouter configures the Gin router with the paper routes.
func (s *APIServer) SetupRouter() *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	api := router.Group("/api/v1/papers")
	api.GET("", s.HandleListPapers)
	api.GET("/:id", s.HandleGetPaper)

	return router
}

// ListPapersResponse is the response body for GET /api/v1/papers.
type ListPapersResponse struct {
	Papers []Paper `json:"papers"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

func errorBody(code, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// HandleListPapers handles GET /api/v1/papers. Papers are returned in store
// order, optionally filtered by ?category= and paginated by ?limit= and
// ?offset=.
func (s *APIServer) HandleListPapers(c *gin.Context) {
	all, err := s.store.Papers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorBody("internal_error", "Failed to list papers: "+err.Error()))
		return
	}

	if category := c.Query("category"); category != "" {
		all = filterByCategory(all, category)
	}

	total := len(all)

	limit := 50
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, errorBody("invalid_parameter", "Invalid limit parameter"))
			return
		}
		limit = min(parsed, 1000)
	}

	offset := 0
	if offsetParam := c.Query("offset"); offsetParam != "" {
		parsed, err := strconv.Atoi(offsetParam)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, errorBody("invalid_parameter", "Invalid offset parameter"))
			return
		}
		offset = parsed
	}

	c.JSON(http.StatusOK, ListPapersResponse{
		Papers: paginate(all, offset, limit),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// HandleGetPaper handles GET /api/v1/papers/:id.
func (s *APIServer) HandleGetPaper(c *gin.Context) {
	id := c.Param("id")
	if !ValidID(id) {
		c.JSON(http.StatusBadRequest, errorBody("invalid_id", "Invalid paper ID: "+id))
		return
	}

	p, err := s.store.Get(id)
	if errors.Is(err, ErrPaperNotFound) {
		c.JSON(http.StatusNotFound, errorBody("not_found", "Paper "+id+" not found"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorBody("internal_error", "Failed to get paper: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, p)
}

func filterByCategory(papers []Paper, category string) []Paper {
	filtered := []Paper{}
	for _, p := range papers {
		if p.HasCategory(category) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func paginate(papers []Paper, offset, limit int) []Paper {
	if offset >= len(papers) {
		return []Paper{}
	}
	end := min(offset+limit, len(papers))
	return papers[offset:end]
}
