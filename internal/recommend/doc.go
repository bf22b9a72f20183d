// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

// Package recommend ranks public-health interventions for a regional health profile.
//
// # Scoring
//
// Every record in the corpus receives three independent scores:
//
//   - Keyword: risk keywords derived from the profile's prevalence indicators,
//     plus tokens of the caller's query, matched against health issues,
//     keywords, title and description. Capped at 1.0.
//   - Context: implementation cost, evidence level, and (for high-risk
//     regions) whether the category is comprehensive, community or policy
//     oriented. Not capped.
//   - Vector: cosine similarity between the query embedding and the
//     record's embedding, when the corpus and the backend allow it.
//
// # Combination
//
// With a query, corpus embeddings, an available backend and at least one
// positive vector score, the hybrid weights apply (0.5 vector, 0.3 keyword,
// 0.2 context). Otherwise the keyword weights apply (0.7 keyword, 0.3
// context). Results are sorted by combined score, ties in corpus order,
// filtered at MinScore and truncated to K.
//
// When the caller gives no query, one is derived from the profile's
// triggered indicators and used for vector scoring.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), store, backend, logger)
//	recs := engine.GetRecommendations(ctx, profile, "", 3)
//
// # Failure Handling
//
// The engine never returns an error for an empty or unreachable corpus or an
// unavailable backend; the worst case is an empty list. A candidate whose
// scoring panics or produces a non-finite score is skipped and counted.
package recommend
