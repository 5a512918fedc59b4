package datastores

import (
	"errors"

	"github.com/gatherpics/media-ingest/common/config"
	"github.com/gatherpics/media-ingest/common/rcontext"
)

// Pick returns the datastore to use for the given kind. When multiple stores
// are declared for a kind the first listed wins.
func Pick(ctx rcontext.RequestContext, kind Kind) (config.DatastoreConfig, error) {
	for _, conf := range ctx.Config.DataStores {
		if !HasListedKind(conf.MediaKinds, kind) {
			continue
		}
		return conf, nil
	}

	return config.DatastoreConfig{}, errors.New("unable to locate a usable datastore")
}

// HasKind reports whether any datastore is declared for the given kind. The
// backup writer uses this to detect a deployment with backups disabled.
func HasKind(ctx rcontext.RequestContext, kind Kind) bool {
	for _, conf := range ctx.Config.DataStores {
		if HasListedKind(conf.MediaKinds, kind) {
			return true
		}
	}
	return false
}
