package api

import (
	"space-matchmaker/internal/api/handler"
	"space-matchmaker/pkg/router"

	_ "space-matchmaker/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

// RegisterRoutes wires the match API onto r.
func RegisterRoutes(r *router.Router, h *handler.MatchHandler) {
	r.POST("/api/v1/matches", h.CreateMatch)
	r.GET("/api/v1/matches", h.ListMatches)
	// More specific routes first
	r.GET("/api/v1/matches/*/stages", h.GetMatchStages)
	r.GET("/api/v1/matches/*/errors", h.GetMatchErrors)
	// Generic run route last
	r.GET("/api/v1/matches/*", h.GetMatch)

	r.GET("/api/v1/operators", h.ListOperators)
	r.GET("/api/v1/download/*/*", h.DownloadFile)

	r.GET("/swagger/*", router.HandlerFunc(httpSwagger.WrapHandler))
}
