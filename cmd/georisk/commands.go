// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/georisk/internal/app"
	"github.com/tomtom215/georisk/internal/config"
	"github.com/tomtom215/georisk/internal/logging"
	"github.com/tomtom215/georisk/internal/recommend"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type globalFlags struct {
	corpus       string
	logLevel     string
	noEmbeddings bool
	timeout      time.Duration
}

type recommendFlags struct {
	profile  string
	query    string
	max      int
	fallback bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "georisk",
		Short:         "Public health intervention recommendations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.corpus, "corpus", "", "intervention corpus URL or file (overrides CORPUS_URL)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&g.noEmbeddings, "no-embeddings", false, "disable the embedding backend")
	root.PersistentFlags().DurationVar(&g.timeout, "timeout", 2*time.Minute, "overall command timeout")

	root.AddCommand(newRecommendCmd(g), newCorpusCmd(g), newVersionCmd())
	return root
}

func newRecommendCmd(g *globalFlags) *cobra.Command {
	f := &recommendFlags{}

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank interventions for a health profile",
		Long: `Rank interventions for a region's health indicators and print the
response as JSON.

The profile is a flat JSON object of indicators, read from a file or from
stdin when --profile is "-":

  {"zip_code": "10001", "RiskScore": 8.5, "DIABETES_CrudePrev": 18.2}

Example:
  georisk recommend --profile region.json --max 5
  echo '{"OBESITY_CrudePrev": 40}' | georisk recommend --profile - --fallback`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := readProfile(cmd.InOrStdin(), f.profile)
			if err != nil {
				return err
			}

			c, err := buildComponents(g)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), g.timeout)
			defer cancel()

			req := recommend.Request{Profile: profile, Query: f.query, MaxResults: f.max}
			var resp *recommend.Response
			if f.fallback {
				resp = c.Engine.Fallback(ctx, req)
			} else {
				resp = c.Engine.Recommend(ctx, req)
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVarP(&f.profile, "profile", "p", "", `health profile JSON file, or "-" for stdin`)
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "free-text query (derived from the profile when empty)")
	cmd.Flags().IntVarP(&f.max, "max", "n", 0, "maximum results (0 uses the configured default)")
	cmd.Flags().BoolVar(&f.fallback, "fallback", false, "rank with keyword and context scores only")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

func newCorpusCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "corpus",
		Short: "Load the intervention corpus and print its summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := buildComponents(g)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), g.timeout)
			defer cancel()

			if _, err := c.Store.Refresh(ctx); err != nil {
				return fmt.Errorf("load corpus: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), c.Store.Stats())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// buildComponents loads configuration, applies flag overrides and wires
// the engine.
func buildComponents(g *globalFlags) (*app.Components, error) {
	logging.Init(logging.Config{
		Level:     g.logLevel,
		Format:    "console",
		Timestamp: true,
		Output:    os.Stderr,
	})

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if g.corpus != "" {
		cfg.Corpus.URL = g.corpus
	}
	if g.noEmbeddings {
		cfg.Embedding.Enabled = false
	}
	return app.Build(cfg, logging.Logger())
}

// readProfile decodes a health profile from path, or from stdin for "-".
func readProfile(stdin io.Reader, path string) (recommend.HealthProfile, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return recommend.HealthProfile{}, fmt.Errorf("read profile: %w", err)
	}

	var profile recommend.HealthProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return recommend.HealthProfile{}, fmt.Errorf("parse profile: %w", err)
	}
	return profile, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
