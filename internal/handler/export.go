package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/trip-planner/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "trip_name", "trip_destination", "trip_start_date", "trip_end_date",
	"status", "title", "description", "location", "date", "start_time", "end_time",
	"yes_votes", "no_votes",
}

// ExportRow is one JSON row of a trip export.
type ExportRow struct {
	TripID          uuid.UUID `json:"trip_id"`
	TripName        string    `json:"trip_name"`
	TripDestination string    `json:"trip_destination,omitempty"`
	TripStartDate   string    `json:"trip_start_date"`
	TripEndDate     string    `json:"trip_end_date"`
	Status          string    `json:"status"`
	Title           string    `json:"title"`
	Description     *string   `json:"description,omitempty"`
	Location        *string   `json:"location,omitempty"`
	Date            string    `json:"date"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	YesVotes        int       `json:"yes_votes"`
	NoVotes         int       `json:"no_votes"`
}

// GetExport implements GET /trips/{tripId}/export.
// Use ?format=csv to receive CSV; default is JSON. Members only.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	actorID, ok := s.actor(w, r)
	if !ok {
		return
	}
	ids, ok := pathIDs(w, r, "tripId")
	if !ok {
		return
	}
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", "invalid format"))
		return
	}
	if format != nil && *format != "csv" && *format != "json" {
		writeJSON(w, http.StatusBadRequest, errorBody("bad_request", `format must be "csv" or "json"`))
		return
	}

	rows, err := s.svc.Export.ExportTrip(r.Context(), ids[0], actorID)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}

	if format != nil && *format == "csv" {
		writeCSV(w, ids[0], rows)
		return
	}
	writeJSON(w, http.StatusOK, buildJSONRows(rows))
}

// buildJSONRows converts domain rows to the JSON response.
func buildJSONRows(rows []domain.ExportRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, domainRowToJSONRow(r))
	}
	return out
}

// writeCSV encodes rows as CSV with a header row and serves it as a
// download named after the trip.
func writeCSV(w http.ResponseWriter, tripID uuid.UUID, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(domainRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="trip-%s.csv"`, tripID))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(buf.Bytes())
}

// domainRowToJSONRow maps a domain.ExportRow to its JSON shape.
// Empty optional strings become nil pointers (omitempty in JSON).
func domainRowToJSONRow(r domain.ExportRow) ExportRow {
	tripID, _ := uuid.Parse(r.TripID)
	row := ExportRow{
		TripID:          tripID,
		TripName:        r.TripName,
		TripDestination: r.TripDestination,
		TripStartDate:   r.TripStartDate,
		TripEndDate:     r.TripEndDate,
		Status:          r.Status,
		Title:           r.Title,
		Date:            r.Date,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		YesVotes:        r.YesVotes,
		NoVotes:         r.NoVotes,
	}
	if r.Description != "" {
		row.Description = &r.Description
	}
	if r.Location != "" {
		row.Location = &r.Location
	}
	return row
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice in
// csvHeaders order.
func domainRowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		r.TripID,
		r.TripName,
		r.TripDestination,
		r.TripStartDate,
		r.TripEndDate,
		r.Status,
		r.Title,
		r.Description,
		r.Location,
		r.Date,
		r.StartTime,
		r.EndTime,
		strconv.Itoa(r.YesVotes),
		strconv.Itoa(r.NoVotes),
	}
}
