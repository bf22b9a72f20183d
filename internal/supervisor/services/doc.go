// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

/*
Package services provides suture.Service wrappers for GeoRisk components.

Each wrapper turns a component lifecycle into suture's Serve(ctx) pattern
and implements fmt.Stringer so supervisor events name it.

# Available Services

HTTPServerService runs the API server and shuts it down gracefully when the
context is canceled.

CorpusRefreshService reloads the intervention corpus on an interval.
Failures are logged; the store keeps serving the last good corpus.

CacheMaintenanceService sweeps expired entries from the corpus and query
embedding caches.

EmbeddingWarmupService initializes the embedding backend once and returns
suture.ErrDoNotRestart.

# Usage

	tree.AddCorpusService(services.NewCorpusRefreshService(store, cfg, logger))
	tree.AddCorpusService(services.NewCacheMaintenanceService(time.Minute, logger, store, embedder))
	tree.AddCorpusService(services.NewEmbeddingWarmupService(embedder, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))
*/
package services
