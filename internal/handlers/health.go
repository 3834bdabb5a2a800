package handlers

import "net/http"

// Version is the API version reported by the root banner.
const Version = "2.0.0"

// Health handles GET /api/health.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "AI Website Generator API is running",
	})
}

// Root handles GET / with a short API banner.
func Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "AI Website Generator API",
		"version": Version,
		"health":  "/api/health",
	})
}
