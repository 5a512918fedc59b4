package main

import (
	"flag"
	"os"
	"os/signal"

	"github.com/gatherpics/media-ingest/api"
	"github.com/gatherpics/media-ingest/common/assets"
	"github.com/gatherpics/media-ingest/common/config"
	"github.com/gatherpics/media-ingest/common/logging"
	"github.com/gatherpics/media-ingest/common/version"
	"github.com/gatherpics/media-ingest/database"
	"github.com/gatherpics/media-ingest/metrics"
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "gatherpics.yaml", "The path to the configuration")
	migrationsPath := flag.String("migrations", "./migrations", "The absolute path for the migrations folder")
	versionFlag := flag.Bool("version", false, "Prints the version and exits")
	flag.Parse()

	if *versionFlag {
		version.SetDefaults()
		version.Print(false)
		return // exit 0
	}

	// Override config path with env for Docker users
	configEnv := os.Getenv("GATHERPICS_CONFIG")
	if configEnv != "" {
		configPath = &configEnv
	}

	config.Path = *configPath
	assets.SetupMigrations(*migrationsPath)

	err := logging.Setup(
		config.Get().General.LogDirectory,
		config.Get().General.LogColors,
		config.Get().General.JsonLogs,
		config.Get().General.LogLevel,
	)
	if err != nil {
		panic(err)
	}

	logrus.Info("Starting up...")
	version.SetDefaults()
	version.Print(true)

	if config.Get().Sentry.Enabled {
		logrus.Info("Setting up Sentry for debugging...")
		err = sentry.Init(sentry.ClientOptions{
			Dsn:         config.Get().Sentry.Dsn,
			Environment: config.Get().Sentry.Environment,
			Debug:       config.Get().Sentry.Debug,
			Release:     version.Version,
		})
		if err != nil {
			logrus.Fatal(err)
		}
	}

	logrus.Info("Preparing database...")
	database.GetInstance()

	logrus.Info("Starting config watcher...")
	watcher := config.Watch()
	defer watcher.Close()
	setupReloads()

	logrus.Info("Starting media ingest service...")
	metrics.Init()
	web := api.Init()

	stopAllButWeb := func() {
		logrus.Info("Stopping metrics...")
		metrics.Stop()
	}

	// Set up a listener for SIGINT
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	selfStop := false
	go func() {
		<-stop
		selfStop = true

		logrus.Warn("Stop signal received")
		stopAllButWeb()

		logrus.Info("Stopping web server...")
		api.Stop()
	}()

	// Wait for the web server to exit nicely
	web.Add(1)
	web.Wait()

	// Stop everything else if we have to
	if !selfStop {
		stopAllButWeb()
	}

	logrus.Info("Goodbye!")
}
