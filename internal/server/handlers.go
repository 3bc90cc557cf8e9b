package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shoplens/internal/catalog"
	"shoplens/internal/core"
)

// ErrorResponse is the uniform error body for every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

type needsAnalysisRequest struct {
	ProductCategory string `json:"product_category"`
}

type needsAnalysisResponse struct {
	UserArchetypes []core.Archetype `json:"user_archetypes"`
}

type summaryRequest struct {
	Keyword string   `json:"keyword"`
	Tags    []string `json:"tags"`
}

type summaryResponse struct {
	RecommendedProducts []core.RankedRecommendation `json:"recommended_products"`
}

type battleRequest struct {
	ProductName1 string `json:"product_name_1"`
	ProductName2 string `json:"product_name_2"`
}

type chatRequest struct {
	Message        string         `json:"message"`
	ConversationID string         `json:"conversationId"`
	UserContext    map[string]any `json:"userContext"`
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the AI Product Search API",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyzeNeeds handles POST /api/v1/products/analyze-needs
func (s *Server) handleAnalyzeNeeds(w http.ResponseWriter, r *http.Request) {
	var req needsAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.ProductCategory == "" {
		s.respondError(w, http.StatusBadRequest, "Invalid request", "product_category cannot be empty.")
		return
	}

	archetypes, err := s.advisor.AnalyzeNeeds(r.Context(), req.ProductCategory)
	if err != nil {
		s.log.Error("Needs analysis failed", "error", err, "category", req.ProductCategory)
		s.respondError(w, http.StatusInternalServerError, "Needs analysis failed", err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, needsAnalysisResponse{UserArchetypes: archetypes})
}

// handleSummary handles POST /api/v1/products/summary
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.Keyword == "" {
		s.respondError(w, http.StatusBadRequest, "Invalid request", "Keyword cannot be empty.")
		return
	}

	recommendations, err := s.advisor.SummarizeReviews(r.Context(), req.Keyword, req.Tags)
	if err != nil {
		s.log.Error("Review summarization failed", "error", err, "keyword", req.Keyword)
		s.respondError(w, http.StatusInternalServerError, "Review summarization failed", err.Error())
		return
	}
	if recommendations == nil {
		recommendations = []core.RankedRecommendation{}
	}

	s.respondJSON(w, http.StatusOK, summaryResponse{RecommendedProducts: recommendations})
}

// handleBattle handles POST /api/v1/products/battle
func (s *Server) handleBattle(w http.ResponseWriter, r *http.Request) {
	var req battleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.ProductName1 == "" || req.ProductName2 == "" {
		s.respondError(w, http.StatusBadRequest, "Invalid request", "Both product names are required.")
		return
	}

	result, err := s.advisor.Battle(r.Context(), req.ProductName1, req.ProductName2)
	if err != nil {
		s.log.Error("Battle generation failed", "error", err,
			"product1", req.ProductName1, "product2", req.ProductName2)
		s.respondError(w, http.StatusInternalServerError, "Battle generation failed", err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

// handleChat handles POST /api/v1/chat
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.Message == "" {
		s.respondError(w, http.StatusBadRequest, "Invalid request", "message cannot be empty.")
		return
	}

	reply, err := s.advisor.Chat(r.Context(), req.Message, req.ConversationID)
	if err != nil {
		s.log.Error("Chat failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "Chat failed", err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, reply)
}

// handleListProducts handles GET /api/v1/products
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, catalog.All())
}

// handleListProductTypes handles GET /api/v1/products/types
func (s *Server) handleListProductTypes(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, catalog.Types())
}

// handleGetProduct handles GET /api/v1/products/{productID}
func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	product, ok := catalog.ByID(productID)
	if !ok {
		s.respondError(w, http.StatusNotFound, "Product not found", "No product with id "+productID)
		return
	}
	s.respondJSON(w, http.StatusOK, product)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message, detail string) {
	s.respondJSON(w, status, ErrorResponse{Message: message, Detail: detail})
}
