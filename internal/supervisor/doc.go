// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

/*
Package supervisor provides process supervision for GeoRisk using suture v4.

# Overview

Services are grouped into two layers for failure isolation:

	RootSupervisor ("georisk")
	├── CorpusSupervisor ("corpus-layer")
	│   ├── CorpusRefreshService (if refresh_interval > 0)
	│   ├── CacheMaintenanceService (if cleanup_interval > 0)
	│   └── EmbeddingWarmupService (one-shot, if embeddings are enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with suture's backoff. A failing corpus refresh loop
never restarts the HTTP server, and the server keeps answering from whatever
corpus the store last loaded.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}

	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))
	tree.AddCorpusService(services.NewCacheMaintenanceService(time.Minute, logger, store, embedder))

	// Blocks until ctx is canceled (SIGINT/SIGTERM in cmd/server)
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

# Logging

Supervisor events (start, stop, failure, backoff) are logged through
sutureslog into the zerolog pipeline via logging.NewSlogLogger.
*/
package supervisor
