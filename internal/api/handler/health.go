package handler

import (
	"net/http"

	"github.com/vittamhq/loan-widget/internal/api/response"
	"github.com/vittamhq/loan-widget/internal/repository/mongo"
	"github.com/vittamhq/loan-widget/internal/repository/redis"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including backing-store connectivity
func ReadyCheck(db *mongo.DB, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "database not ready")
			return
		}
		if err := rdb.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "redis not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}
