package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"nregadash/internal/core"
	"nregadash/internal/log"
)

// DefaultFinYear is served when the caller does not name a year.
const DefaultFinYear = "2023-2024"

const handlerTimeout = 7 * time.Second

func finYearParam(r *http.Request) string {
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		return v
	}
	return DefaultFinYear
}

func (s *Server) handleYearPerformance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	finYear := finYearParam(r)

	if report, found := s.yearCache.Get(finYear); found {
		s.structured.LogReportServed(ctx, finYear, "", len(report.Records), true)
		writeJSON(w, http.StatusOK, report)
		return
	}

	cctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()
	report, err := s.reader.YearReport(cctx, finYear)
	if err != nil {
		if errors.Is(err, core.ErrNoRecords) {
			writeError(w, http.StatusNotFound, "no records found for year "+finYear)
			return
		}
		log.FromContext(ctx).ErrorContext(ctx, "year report failed",
			log.FieldFinYear, finYear,
			log.FieldError, err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	s.yearCache.Set(finYear, report)
	s.structured.LogReportServed(ctx, finYear, "", len(report.Records), false)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleDistrictPerformance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	finYear := finYearParam(r)
	district := strings.TrimSpace(r.PathValue("district"))
	if district == "" {
		writeError(w, http.StatusBadRequest, "district is required")
		return
	}

	key := finYear + "|" + district
	if report, found := s.districtCache.Get(key); found {
		s.structured.LogReportServed(ctx, finYear, district, len(report.Records), true)
		writeJSON(w, http.StatusOK, report)
		return
	}

	cctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()
	report, err := s.reader.DistrictReport(cctx, district, finYear)
	if err != nil {
		if errors.Is(err, core.ErrNoRecords) {
			writeError(w, http.StatusNotFound, "no records found for district "+district+" in "+finYear)
			return
		}
		log.FromContext(ctx).ErrorContext(ctx, "district report failed",
			log.FieldFinYear, finYear,
			log.FieldDistrict, district,
			log.FieldError, err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	s.districtCache.Set(key, report)
	s.structured.LogReportServed(ctx, finYear, district, len(report.Records), false)
	writeJSON(w, http.StatusOK, report)
}

// DistrictsResponse lists the known districts together with every
// financial year that has data.
type DistrictsResponse struct {
	Districts      []core.District `json:"districts"`
	AvailableYears []string        `json:"availableYears"`
}

func (s *Server) handleDistricts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	districts, err := s.reader.Districts(cctx)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "district listing failed",
			log.FieldError, err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "failed to list districts")
		return
	}
	years, err := s.reader.Years(cctx)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "year listing failed",
			log.FieldError, err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "failed to list districts")
		return
	}

	if districts == nil {
		districts = []core.District{}
	}
	if years == nil {
		years = []string{}
	}
	writeJSON(w, http.StatusOK, DistrictsResponse{Districts: districts, AvailableYears: years})
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	years, err := s.reader.Years(cctx)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "year listing failed",
			log.FieldError, err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "failed to list years")
		return
	}
	if years == nil {
		years = []string{}
	}
	writeJSON(w, http.StatusOK, years)
}
