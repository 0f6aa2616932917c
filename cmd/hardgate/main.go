// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command hardgate evaluates source repositories against fifteen
// engineering-practice hard gates.
//
// Usage:
//
//	hardgate serve                       # start the scan API server
//	hardgate serve --port 9090
//	hardgate scan /path/to/repo          # one-shot local scan
//	hardgate scan /path/to/repo --json
//	hardgate scan /path/to/repo --report out.html
//
// Example requests against the server:
//
//	curl http://localhost:8080/api/v1/health
//
//	curl -X POST http://localhost:8080/api/v1/scan \
//	  -H "Content-Type: application/json" \
//	  -d '{"repository_url": "file:///path/to/repo"}'
//
//	curl http://localhost:8080/api/v1/scan/<id>/status | jq
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/AleutianAI/hardgate/services/llm"
	"github.com/AleutianAI/hardgate/services/scan"
	"github.com/AleutianAI/hardgate/services/scan/config"
	"github.com/AleutianAI/hardgate/services/validation"
	"github.com/AleutianAI/hardgate/services/validation/enhance"
	"github.com/AleutianAI/hardgate/services/validation/language"
)

func main() {
	root := &cobra.Command{
		Use:           "hardgate",
		Short:         "Hard-gate engineering practice scanner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newScanCommand())

	if err := root.Execute(); err != nil {
		slog.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// =============================================================================
// serve
// =============================================================================

func newServeCommand() *cobra.Command {
	var (
		configPath string
		port       int
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the scan API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				settings.Port = port
			}
			return runServer(settings, debug)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to hardgate.config.yaml")
	cmd.Flags().IntVar(&port, "port", 8080, "HTTP listen port")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging and gin request logs")
	return cmd
}

func runServer(settings config.Settings, debug bool) error {
	setupLogging(debug)
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	opts := []scan.Option{}
	if settings.StoreDir != "" {
		store, err := scan.OpenBadgerStore(settings.StoreDir)
		if err != nil {
			return err
		}
		opts = append(opts, scan.WithStore(store))
		slog.Info("scan store opened", slog.String("dir", settings.StoreDir))
	}
	if enhancer := buildEnhancer(settings); enhancer != nil {
		opts = append(opts, scan.WithEnhancer(enhancer))
	}

	service := scan.NewService(settings, opts...)
	handlers := scan.NewHandlers(service)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("hardgate"))
	router.Use(scan.RequestIDMiddleware())
	if debug {
		router.Use(gin.Logger())
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1", scan.RateLimitMiddleware(settings.RateLimitRPS, settings.RateLimitBurst))
	scan.RegisterRoutes(v1, handlers)

	printBanner(settings)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", settings.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		slog.Info("shutting down hardgate server")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Warn("http shutdown incomplete", slog.String("error", err.Error()))
		}
		if err := service.Shutdown(); err != nil {
			slog.Warn("service shutdown failed", slog.String("error", err.Error()))
		}
	}()

	slog.Info("starting hardgate server", slog.Int("port", settings.Port))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// buildEnhancer wires the LLM hook when enabled and configured. A missing
// client configuration downgrades to no enhancement rather than failing
// startup.
func buildEnhancer(settings config.Settings) enhance.Enhancer {
	if !settings.EnhancementEnabled {
		return nil
	}
	client, err := llm.NewOpenAIClient()
	if err != nil {
		slog.Warn("enhancement disabled", slog.String("error", err.Error()))
		return nil
	}
	return enhance.NewLLMEnhancer(client, time.Duration(settings.LLMDeadline))
}

func printBanner(settings config.Settings) {
	fmt.Printf(`
  _                   _             _
 | |__   __ _ _ __ __| | __ _  __ _| |_ ___
 | '_ \ / _' | '__/ _' |/ _' |/ _' | __/ _ \
 | | | | (_| | | | (_| | (_| | (_| | ||  __/
 |_| |_|\__,_|_|  \__,_|\__, |\__,_|\__\___|
                        |___/

  listening on :%d
  api:      /api/v1  (health, scan, reports)
  metrics:  /metrics
  workers:  %d concurrent scans

`, settings.Port, settings.MaxConcurrentScans)
}

// =============================================================================
// scan (one-shot CLI)
// =============================================================================

func newScanCommand() *cobra.Command {
	var (
		languages  []string
		jsonOutput bool
		reportPath string
		deadline   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Run a one-shot scan against a local repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			setupLogging(false)

			opts := validation.Options{ScanDeadline: &deadline}
			for _, l := range languages {
				lang, ok := language.Parse(l)
				if !ok {
					return fmt.Errorf("unknown language %q", l)
				}
				opts.Languages = append(opts.Languages, lang)
			}

			result, err := validation.Validate(context.Background(), args[0], opts)
			if err != nil {
				return err
			}

			if reportPath != "" {
				payload, renderErr := (scan.HTMLRenderer{}).Render(result, "", "", "local")
				if renderErr != nil {
					return renderErr
				}
				if writeErr := os.WriteFile(reportPath, payload, 0o644); writeErr != nil {
					return writeErr
				}
				fmt.Printf("report written to %s\n", reportPath)
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printSummary(result)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&languages, "languages", nil, "override language detection (java, python, javascript, typescript, csharp)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the full ValidationResult as JSON")
	cmd.Flags().StringVar(&reportPath, "report", "", "write the HTML report to this path")
	cmd.Flags().DurationVar(&deadline, "deadline", 180*time.Second, "overall scan deadline")
	return cmd
}

func printSummary(result *validation.ValidationResult) {
	fmt.Printf("\n%s — overall %.1f/100 (%d passed, %d warnings, %d failed)\n\n",
		result.ProjectName, result.OverallScore,
		result.PassedGates, result.WarningGates, result.FailedGates)

	for _, gs := range result.GateScores {
		fmt.Printf("  %-14s %-42s %6.1f  (found %d of %d)\n",
			gs.Status, gs.DisplayName, gs.FinalScore, gs.Found, gs.Expected)
	}
	if len(result.CriticalIssues) > 0 {
		fmt.Printf("\ncritical issues:\n")
		for _, issue := range result.CriticalIssues {
			fmt.Printf("  - %s\n", issue)
		}
	}
	fmt.Println()
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug || strings.EqualFold(os.Getenv("HARDGATE_LOG_LEVEL"), "debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
