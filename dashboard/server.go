// Copyright 2025 The PotholeMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package dashboard serves the Home, Map and Report Pothole pages and the
// JSON API behind them.
package dashboard

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xensor/potholemap/mapview"
	"github.com/xensor/potholemap/reports"
	"github.com/xensor/potholemap/spatial"
	"github.com/xensor/potholemap/suburbs"
)

//go:embed templates
var templatesFS embed.FS

// nearbyRadius is how far from a found suburb sample markers are listed.
const nearbyRadius = 5000 // meters

// Server serves the dashboard pages and the JSON API.
type Server struct {
	directory *suburbs.Directory
	intake    *reports.Intake
	repo      reports.Repository
	metrics   *metrics
}

// NewServer creates a dashboard over directory. When repo is nil accepted
// reports are discarded and the report listing endpoints answer 404.
func NewServer(directory *suburbs.Directory, repo reports.Repository) *Server {
	var store reports.Store
	if repo != nil {
		store = repo
	}

	return &Server{
		directory: directory,
		intake:    reports.NewIntake(store),
		repo:      repo,
		metrics:   newMetrics(directory.Len()),
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")))

	static, err := fs.Sub(templatesFS, "templates/static")
	if err != nil {
		panic(err)
	}

	r.StaticFS("/static", http.FS(static))

	r.GET("/", s.homeView)
	r.GET("/map", s.mapView)
	r.GET("/report", s.reportView)
	r.POST("/report", s.submitReportForm)
	r.GET("/api/lookup", s.lookup)
	r.GET("/api/markers", s.listMarkers)
	r.POST("/api/reports", s.submitReport)
	r.GET("/api/reports", s.listReports)
	r.GET("/api/reports/density", s.reportDensity)
	r.GET("/healthz", s.health)
	r.GET("/metrics", s.metrics.handler())

	return r
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Printf("Serving dashboard on http://%s", addr)

		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down dashboard...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	return nil
}

type markerResponse struct {
	mapview.Marker
	Tooltip string `json:"tooltip"`
}

func markerLayer() []markerResponse {
	markers := mapview.Markers()
	out := make([]markerResponse, 0, len(markers))

	for _, m := range markers {
		out = append(out, markerResponse{Marker: m, Tooltip: m.Tooltip()})
	}

	return out
}

func (s *Server) homeView(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "home.html", gin.H{"Section": "home"})
}

func (s *Server) mapView(ctx *gin.Context) {
	query := ctx.Query("q")
	result := s.directory.Lookup(query)
	s.metrics.observeLookup(result.Status)

	viewState, err := mapview.Resolve(result)

	ctx.HTML(http.StatusOK, "map.html", gin.H{
		"Section":   "map",
		"Query":     query,
		"Found":     result.Status == suburbs.Found,
		"IsError":   err != nil,
		"Message":   mapview.StatusMessage(result),
		"ViewState": viewState,
		"Markers":   markerLayer(),
	})
}

func (s *Server) reportView(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "report.html", gin.H{"Section": "report"})
}

func (s *Server) submitReportForm(ctx *gin.Context) {
	var sub reports.Submission
	if err := ctx.ShouldBind(&sub); err != nil {
		sub.Suburb = ctx.PostForm("suburb")
		sub.Description = ctx.PostForm("description")

		if sub.Suburb == "" {
			err = reports.Validate(sub)
			s.metrics.observeReport(err)
			s.renderReportError(ctx, http.StatusOK, err.Error(), sub)

			return
		}

		s.metrics.observeInvalidInput()
		s.renderReportError(ctx, http.StatusOK, "Latitude and longitude must be numbers.", sub)

		return
	}

	_, err := s.intake.Submit(ctx.Request.Context(), sub)
	s.metrics.observeReport(err)

	switch {
	case err == nil:
		ctx.HTML(http.StatusOK, "report.html", gin.H{
			"Section": "report",
			"Message": sub.SuccessMessage(),
		})
	case reports.IsValidationError(err):
		s.renderReportError(ctx, http.StatusOK, err.Error(), sub)
	default:
		log.Printf("Saving report failed: %v", err)
		s.renderReportError(ctx, http.StatusInternalServerError, "Your report could not be saved, please try again.", sub)
	}
}

func (s *Server) renderReportError(ctx *gin.Context, code int, message string, sub reports.Submission) {
	ctx.HTML(code, "report.html", gin.H{
		"Section": "report",
		"IsError": true,
		"Message": message,
		"Form":    sub,
	})
}

// LookupResponse is the body of GET /api/lookup.
type LookupResponse struct {
	Query         string                 `json:"query"`
	Status        string                 `json:"status"`
	Suburb        *suburbs.Record        `json:"suburb,omitempty"`
	ViewState     mapview.ViewState      `json:"view_state"`
	Message       string                 `json:"message,omitempty"`
	Error         string                 `json:"error,omitempty"`
	NearbyMarkers []mapview.NearbyMarker `json:"nearby_markers,omitempty"`
}

func (s *Server) lookup(ctx *gin.Context) {
	result := s.directory.Lookup(ctx.Query("q"))
	s.metrics.observeLookup(result.Status)

	viewState, err := mapview.Resolve(result)

	resp := LookupResponse{
		Query:     result.Query,
		Status:    result.Status.String(),
		ViewState: viewState,
	}

	if err != nil {
		resp.Error = mapview.StatusMessage(result)
		ctx.JSON(http.StatusNotFound, resp)

		return
	}

	if result.Status == suburbs.Found {
		resp.Suburb = &result.Record
		resp.Message = mapview.StatusMessage(result)
		resp.NearbyMarkers = mapview.MarkersNear(viewState, nearbyRadius)
	}

	ctx.JSON(http.StatusOK, resp)
}

func (s *Server) listMarkers(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, markerLayer())
}

// SubmitReportResponse is the body of an accepted POST /api/reports.
type SubmitReportResponse struct {
	Report    *reports.Report `json:"report"`
	Message   string          `json:"message"`
	Persisted bool            `json:"persisted"`
}

func (s *Server) submitReport(ctx *gin.Context) {
	var sub reports.Submission
	if err := ctx.ShouldBindJSON(&sub); err != nil {
		s.metrics.observeInvalidInput()
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	report, err := s.intake.Submit(ctx.Request.Context(), sub)
	s.metrics.observeReport(err)

	if err != nil {
		var vErr *reports.ValidationError
		if errors.As(err, &vErr) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "code": vErr.Type.String()})

			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusCreated, SubmitReportResponse{
		Report:    report,
		Message:   sub.SuccessMessage(),
		Persisted: s.repo != nil,
	})
}

func (s *Server) requireRepo(ctx *gin.Context) bool {
	if s.repo == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "review log is disabled"})

		return false
	}

	return true
}

func (s *Server) listReports(ctx *gin.Context) {
	if !s.requireRepo(ctx) {
		return
	}

	page := 1
	perPage := 50

	if p := ctx.Query("page"); p != "" {
		if _, err := fmt.Sscanf(p, "%d", &page); err != nil || page < 1 {
			page = 1
		}
	}

	if pp := ctx.Query("per_page"); pp != "" {
		if _, err := fmt.Sscanf(pp, "%d", &perPage); err != nil || perPage < 1 {
			perPage = 50
		}
	}

	offset := (page - 1) * perPage

	list, err := s.repo.List(ctx.Request.Context(), perPage, offset)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	total, err := s.repo.Count(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"reports":  list,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

func (s *Server) reportDensity(ctx *gin.Context) {
	if !s.requireRepo(ctx) {
		return
	}

	res := spatial.SuburbResolution

	if r := ctx.Query("res"); r != "" {
		var err error

		res, err = strconv.Atoi(r)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid res parameter"})

			return
		}
	}

	if res != spatial.SuburbResolution && res != spatial.StreetResolution {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("res must be %d or %d", spatial.SuburbResolution, spatial.StreetResolution),
		})

		return
	}

	cells, err := s.repo.Density(ctx.Request.Context(), res)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"resolution": res, "cells": cells})
}

func (s *Server) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"suburbs":    s.directory.Len(),
		"review_log": s.repo != nil,
	})
}
