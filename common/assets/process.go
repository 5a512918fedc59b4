package assets

import (
	"os"

	"github.com/gatherpics/media-ingest/common/config"
	"github.com/sirupsen/logrus"
)

func SetupMigrations(givenMigrationsPath string) {
	_, err := os.Stat(givenMigrationsPath)
	if err != nil && os.IsNotExist(err) {
		logrus.Fatal("Migrations path does not exist: ", givenMigrationsPath)
	} else if err != nil {
		logrus.Fatal(err)
	}

	config.Runtime.MigrationsPath = givenMigrationsPath
}
