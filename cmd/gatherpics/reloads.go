package main

import (
	"github.com/gatherpics/media-ingest/api"
	"github.com/gatherpics/media-ingest/common/config"
	"github.com/gatherpics/media-ingest/datastores"
	"github.com/gatherpics/media-ingest/metrics"
	"github.com/sirupsen/logrus"
)

// setupReloads re-applies everything derived from config when the file
// changes: cached S3 clients (credentials or endpoints may have moved), the
// metrics listener, and the web listener itself.
func setupReloads() {
	config.AddReloadListener(func() {
		logrus.Info("Restarting subsystems for new configuration")
		datastores.ResetS3Clients()
		metrics.Reload()
		api.Reload()
	})
}
