// Package api wires HTTP routes to the service layer.
package api

import (
	"github.com/gorilla/mux"

	"github.com/cardkeep/cardkeep/internal/api/recovery"
	"github.com/cardkeep/cardkeep/internal/health"
	"github.com/cardkeep/cardkeep/internal/services"
)

// Deps carries the constructed services the router exposes.
type Deps struct {
	Cards     *services.CardService
	Tags      *services.TagService
	Templates *services.TemplateService
	Users     *services.UserService
	Stats     *services.StatsService
	Health    *health.ServiceHealthChecker
}

// NewRouter builds the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()

	router.Use(recovery.Middleware)

	cardHandler := NewCardHandler(d.Cards)
	tagHandler := NewTagHandler(d.Tags)
	templateHandler := NewTemplateHandler(d.Templates)
	userHandler := NewUserHandler(d.Users, d.Stats)
	healthHandler := NewHealthHandler(d.Health)

	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// Card endpoints. The search route is registered before the id route so
	// "search" is never treated as a card id.
	router.HandleFunc("/api/cards/search", cardHandler.SearchCards).Methods("GET")
	router.HandleFunc("/api/cards", cardHandler.ListCards).Methods("GET")
	router.HandleFunc("/api/cards", cardHandler.CreateCard).Methods("POST")
	router.HandleFunc("/api/cards/{id}", cardHandler.GetCard).Methods("GET")
	router.HandleFunc("/api/cards/{id}", cardHandler.UpdateCard).Methods("PUT")
	router.HandleFunc("/api/cards/{id}", cardHandler.DeleteCard).Methods("DELETE")
	router.HandleFunc("/api/cards/{id}/favorite", cardHandler.ToggleFavorite).Methods("POST")

	// Tag endpoints
	router.HandleFunc("/api/tags", tagHandler.ListTags).Methods("GET")
	router.HandleFunc("/api/tags", tagHandler.CreateTag).Methods("POST")
	router.HandleFunc("/api/tags/{id}", tagHandler.GetTag).Methods("GET")
	router.HandleFunc("/api/tags/{id}", tagHandler.UpdateTag).Methods("PUT")
	router.HandleFunc("/api/tags/{id}", tagHandler.DeleteTag).Methods("DELETE")

	// Template endpoints
	router.HandleFunc("/api/templates", templateHandler.ListTemplates).Methods("GET")
	router.HandleFunc("/api/templates", templateHandler.CreateTemplate).Methods("POST")
	router.HandleFunc("/api/templates/{id}", templateHandler.GetTemplate).Methods("GET")
	router.HandleFunc("/api/templates/{id}", templateHandler.UpdateTemplate).Methods("PUT")
	router.HandleFunc("/api/templates/{id}", templateHandler.DeleteTemplate).Methods("DELETE")
	router.HandleFunc("/api/templates/{id}/instantiate", templateHandler.InstantiateTemplate).Methods("POST")

	// User and statistics endpoints
	router.HandleFunc("/api/users/current", userHandler.GetCurrentUser).Methods("GET")
	router.HandleFunc("/api/users/current", userHandler.SaveCurrentUser).Methods("PUT")
	router.HandleFunc("/api/statistics", userHandler.GetStatistics).Methods("GET")

	return router
}
