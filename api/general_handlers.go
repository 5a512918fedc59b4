package api

import (
	"net/http"

	"github.com/gatherpics/media-ingest/common/version"
	"github.com/gatherpics/media-ingest/database"
)

func GetVersion(w http.ResponseWriter, r *http.Request) {
	respondJson(w, http.StatusOK, map[string]interface{}{
		"version":   version.Version,
		"gitCommit": version.GitCommit,
	})
}

func GetHealthz(w http.ResponseWriter, r *http.Request) {
	if err := database.GetInstance().Ping(); err != nil {
		respondJson(w, http.StatusServiceUnavailable, map[string]interface{}{
			"ok":     false,
			"status": "database unreachable",
		})
		return
	}
	respondJson(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"status": "probably not dead",
	})
}
