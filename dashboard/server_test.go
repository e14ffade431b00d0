// Copyright 2025 The PotholeMap Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xensor/potholemap/mapview"
	"github.com/xensor/potholemap/reports"
	"github.com/xensor/potholemap/suburbs"
)

func testDirectory() *suburbs.Directory {
	return suburbs.NewDirectory([]suburbs.Record{
		{Name: "Alpha", Latitude: -33.1, Longitude: 151.1},
		{Name: "Alphington", Latitude: -33.2, Longitude: 151.2},
		{Name: "Dundas", Latitude: -33.8, Longitude: 151.053},
	})
}

// setupServerTest initializes a router over the test directory. With persist
// set, accepted reports go to an in-memory DuckDB review log.
func setupServerTest(t *testing.T, persist bool) (*gin.Engine, *Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var repo reports.Repository

	if persist {
		db, err := sql.Open("duckdb", "")
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		repo = reports.NewSQLReportRepository(db)
		require.NoError(t, repo.CreateSchema())
	}

	server := NewServer(testDirectory(), repo)

	return server.Router(), server
}

func do(router *gin.Engine, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}

	req, _ := http.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func postJSON(router *gin.Engine, target string, v any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(v)

	return do(router, http.MethodPost, target, bytes.NewBuffer(b), "application/json")
}

func postForm(router *gin.Engine, target string, form url.Values) *httptest.ResponseRecorder {
	return do(router, http.MethodPost, target, bytes.NewBufferString(form.Encode()), "application/x-www-form-urlencoded")
}

func TestLookupAPI(t *testing.T) {
	router, _ := setupServerTest(t, false)

	w := do(router, http.MethodGet, "/api/lookup?q=ALPH", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp LookupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "found", resp.Status)
	require.NotNil(t, resp.Suburb)
	assert.Equal(t, "Alpha", resp.Suburb.Name)
	assert.Equal(t, mapview.ViewState{Latitude: -33.1, Longitude: 151.1, Zoom: 14}, resp.ViewState)
	assert.Equal(t, "Found ALPH! Latitude: -33.1, Longitude: 151.1", resp.Message)
}

func TestLookupAPINearbyMarkers(t *testing.T) {
	router, _ := setupServerTest(t, false)

	w := do(router, http.MethodGet, "/api/lookup?q=dundas", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp LookupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.NearbyMarkers, 2)
	assert.Equal(t, "Dundas", resp.NearbyMarkers[0].Name)
	assert.Equal(t, "Parramatta", resp.NearbyMarkers[1].Name)
}

func TestLookupAPINotFound(t *testing.T) {
	router, _ := setupServerTest(t, false)

	w := do(router, http.MethodGet, "/api/lookup?q=atlantis", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp LookupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "not_found", resp.Status)
	assert.Nil(t, resp.Suburb)
	assert.Equal(t, "Suburb not found.", resp.Error)
	assert.Equal(t, mapview.DefaultViewState(), resp.ViewState)
}

func TestLookupAPINoQuery(t *testing.T) {
	router, _ := setupServerTest(t, false)

	w := do(router, http.MethodGet, "/api/lookup", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp LookupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "no_query", resp.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, mapview.DefaultViewState(), resp.ViewState)
}

func TestMarkersAPI(t *testing.T) {
	router, _ := setupServerTest(t, false)

	w := do(router, http.MethodGet, "/api/markers", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var markers []markerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &markers))
	require.Len(t, markers, 3)
	assert.Equal(t, "Bondi Beach", markers[0].Name)
	assert.Equal(t, "Suburb: Bondi Beach, Latitude: -33.89388, Longitude: 151.2635", markers[0].Tooltip)
}

func TestSubmitReportAPI(t *testing.T) {
	tests := []struct {
		name     string
		body     reports.Submission
		wantCode int
		wantErr  string
	}{
		{"missing suburb", reports.Submission{Latitude: 1, Longitude: 1}, http.StatusBadRequest, "missing_suburb"},
		{"zero coordinates", reports.Submission{Suburb: "Bondi"}, http.StatusBadRequest, "missing_coordinates"},
		{"accepted", reports.Submission{Suburb: "Bondi", Latitude: -33.89, Longitude: 151.27}, http.StatusCreated, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := setupServerTest(t, false)

			w := postJSON(router, "/api/reports", tt.body)
			require.Equal(t, tt.wantCode, w.Code)

			if tt.wantErr != "" {
				var resp map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantErr, resp["code"])

				return
			}

			var resp SubmitReportResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Persisted)
			assert.Equal(t, "Thank you for reporting! A pothole in Bondi has been logged for review.", resp.Message)
		})
	}
}

func TestSubmitReportAPIBadJSON(t *testing.T) {
	router, _ := setupServerTest(t, false)

	w := do(router, http.MethodPost, "/api/reports", bytes.NewBufferString(`{"latitude": "north"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportsAPIDisabledWithoutReviewLog(t *testing.T) {
	router, _ := setupServerTest(t, false)

	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/api/reports", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/api/reports/density", nil, "").Code)
}

func TestReportsAPIWithReviewLog(t *testing.T) {
	router, _ := setupServerTest(t, true)

	for _, sub := range []reports.Submission{
		{Suburb: "Dundas", Latitude: -33.8, Longitude: 151.053},
		{Suburb: "Dundas", Latitude: -33.8001, Longitude: 151.0531, Description: "second one"},
		{Suburb: "Dundas"},
	} {
		postJSON(router, "/api/reports", sub)
	}

	w := do(router, http.MethodGet, "/api/reports?per_page=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Reports []reports.Report `json:"reports"`
		Total   int              `json:"total"`
		PerPage int              `json:"per_page"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 1, list.PerPage)
	require.Len(t, list.Reports, 1)
	assert.Equal(t, "second one", list.Reports[0].Description)

	w = do(router, http.MethodGet, "/api/reports/density?res=6", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var density struct {
		Resolution int                 `json:"resolution"`
		Cells      []reports.CellCount `json:"cells"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &density))
	assert.Equal(t, 6, density.Resolution)
	require.Len(t, density.Cells, 1)
	assert.Equal(t, 2, density.Cells[0].Count)

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/api/reports/density?res=2", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/api/reports/density?res=x", nil, "").Code)
}

func TestPages(t *testing.T) {
	router, _ := setupServerTest(t, false)

	tests := []struct {
		target string
		want   []string
	}{
		{"/", []string{"Welcome to Pothole Detection", "Developed by Xavier Ensor", `class="active">Home`}},
		{"/map", []string{"Suburb Search", "Suburb: Parramatta, Latitude: -33.7952747, Longitude: 151.0116649"}},
		{"/map?q=dundas", []string{"Found dundas! Latitude: -33.8, Longitude: 151.053", `value="dundas"`}},
		{"/map?q=atlantis", []string{"Suburb not found.", `class="status error"`}},
		{"/report", []string{"Report a Pothole", "Describe the pothole (optional)"}},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := do(router, http.MethodGet, tt.target, nil, "")
			require.Equal(t, http.StatusOK, w.Code)

			for _, want := range tt.want {
				assert.Contains(t, w.Body.String(), want)
			}
		})
	}
}

func TestMapPageViewState(t *testing.T) {
	router, _ := setupServerTest(t, false)

	w := do(router, http.MethodGet, "/map?q=alph", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `"latitude":-33.1`)
	assert.Contains(t, body, `"zoom":14`)
	assert.NotContains(t, body, `"latitude":-33.2`)
}

func TestReportForm(t *testing.T) {
	tests := []struct {
		name     string
		form     url.Values
		wantCode int
		want     string
	}{
		{
			name:     "missing suburb",
			form:     url.Values{"suburb": {""}, "latitude": {"1"}, "longitude": {"1"}},
			wantCode: http.StatusOK,
			want:     "Please enter the suburb.",
		},
		{
			name:     "zero coordinates",
			form:     url.Values{"suburb": {"Bondi"}, "latitude": {"0.00000"}, "longitude": {"0.00000"}},
			wantCode: http.StatusOK,
			want:     "Please enter both latitude and longitude coordinates.",
		},
		{
			name:     "empty coordinates",
			form:     url.Values{"suburb": {"Bondi"}, "latitude": {""}, "longitude": {""}},
			wantCode: http.StatusOK,
			want:     "Please enter both latitude and longitude coordinates.",
		},
		{
			name:     "accepted",
			form:     url.Values{"suburb": {"Bondi"}, "latitude": {"-33.89"}, "longitude": {"151.27"}, "description": {""}},
			wantCode: http.StatusOK,
			want:     "Thank you for reporting! A pothole in Bondi has been logged for review.",
		},
		{
			name:     "not a number",
			form:     url.Values{"suburb": {"Bondi"}, "latitude": {"north"}, "longitude": {"151.27"}},
			wantCode: http.StatusOK,
			want:     "Latitude and longitude must be numbers.",
		},
		{
			name:     "not a number without suburb",
			form:     url.Values{"suburb": {""}, "latitude": {"north"}, "longitude": {"151.27"}},
			wantCode: http.StatusOK,
			want:     "Please enter the suburb.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := setupServerTest(t, false)

			w := postForm(router, "/report", tt.form)
			require.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestReportFormKeepsInputOnError(t *testing.T) {
	router, _ := setupServerTest(t, false)

	w := postForm(router, "/report", url.Values{"suburb": {"Glebe"}, "latitude": {"0"}, "longitude": {"151.18"}, "description": {"by the lights"}})
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `value="Glebe"`)
	assert.Contains(t, body, `value="151.18000"`)
	assert.Contains(t, body, "by the lights")
}

func TestReportFormUndecodableInputMetrics(t *testing.T) {
	router, _ := setupServerTest(t, false)

	w := postForm(router, "/report", url.Values{"suburb": {"Bondi"}, "latitude": {"north"}, "longitude": {"151.27"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="Bondi"`)

	postForm(router, "/report", url.Values{"suburb": {""}, "latitude": {"north"}, "longitude": {"151.27"}})

	body := do(router, http.MethodGet, "/metrics", nil, "").Body.String()
	assert.Contains(t, body, `potholemap_reports_total{outcome="invalid_input"} 1`)
	assert.Contains(t, body, `potholemap_reports_total{outcome="missing_suburb"} 1`)
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := setupServerTest(t, false)

	w := do(router, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","suburbs":3,"review_log":false}`, w.Body.String())

	do(router, http.MethodGet, "/api/lookup?q=alph", nil, "")
	do(router, http.MethodGet, "/map?q=atlantis", nil, "")
	postJSON(router, "/api/reports", reports.Submission{Suburb: "Bondi"})

	w = do(router, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	for _, want := range []string{
		`potholemap_suburb_lookups_total{status="found"} 1`,
		`potholemap_suburb_lookups_total{status="not_found"} 1`,
		`potholemap_reports_total{outcome="missing_coordinates"} 1`,
		`potholemap_suburbs_loaded 3`,
	} {
		assert.True(t, strings.Contains(body, want), "metrics missing %q", want)
	}
}
