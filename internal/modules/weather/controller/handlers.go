package controller

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"meteo-server/internal/modules/weather/repository"
	"meteo-server/internal/modules/weather/service"
	"meteo-server/internal/modules/weather/types"
	"meteo-server/internal/modules/weather/views"
	"meteo-server/internal/usage"
	"meteo-server/internal/utils"
)

func (c *weatherControllerImpl) handleData(w http.ResponseWriter, r *http.Request) {
	c.counters.Inc(usage.EndpointData)

	p, err := decodePayload(r.Body)
	if err != nil {
		c.metrics.Rejected("http")
		utils.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := c.service.Ingest(r.Context(), p)
	switch {
	case errors.Is(err, service.ErrMissingField):
		c.metrics.Rejected("http")
		utils.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		c.metrics.Rejected("http")
		slog.Error("store reading failed", "error", err)
		utils.WriteErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	c.metrics.Ingested("http")
	slog.Debug("reading stored", "id", rec.ID, "source", "http", "timestamp", rec.Timestamp)
	utils.WriteStatus(w, http.StatusCreated, "Data saved")
}

func (c *weatherControllerImpl) handleCurrent(w http.ResponseWriter, r *http.Request) {
	c.counters.Inc(usage.EndpointCurrent)

	current, err := c.service.Current(r.Context())
	if errors.Is(err, repository.ErrNotFound) {
		utils.WriteErrorMessage(w, http.StatusNotFound, "No data available")
		return
	}
	if err != nil {
		slog.Error("get current reading failed", "error", err)
		utils.WriteErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, current)
}

func (c *weatherControllerImpl) handleHistory(w http.ResponseWriter, r *http.Request) {
	c.counters.Inc(usage.EndpointHistory)

	history, err := c.service.History(r.Context())
	if err != nil {
		slog.Error("get history failed", "error", err)
		utils.WriteErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if history == nil {
		history = []types.DerivedPoint{}
	}
	utils.WriteJSON(w, http.StatusOK, history)
}

func (c *weatherControllerImpl) handleSimpleChart(w http.ResponseWriter, r *http.Request) {
	c.counters.Inc(usage.EndpointSimpleChart)

	points, err := c.service.Chart(r.Context())
	if err != nil {
		slog.Error("sample chart failed", "error", err)
		utils.WriteErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if points == nil {
		points = []types.ChartPoint{}
	}
	utils.WriteJSON(w, http.StatusOK, points)
}

func (c *weatherControllerImpl) handleForecast(w http.ResponseWriter, r *http.Request) {
	c.counters.Inc(usage.EndpointForecast)

	f, err := c.service.Forecast(r.Context())
	if err != nil {
		slog.Error("forecast failed", "error", err)
		utils.WriteErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, f)
}

func (c *weatherControllerImpl) handleStats(w http.ResponseWriter, r *http.Request) {
	visits, err := c.visits.Get(r.Context())
	if err != nil {
		slog.Error("read visits failed", "error", err)
		utils.WriteErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, statsResponse{
		APICalls:      c.counters.Snapshot(),
		TotalAPICalls: c.counters.Total(),
		TotalVisits:   visits,
	})
}

func (c *weatherControllerImpl) handleVisits(w http.ResponseWriter, r *http.Request) {
	visits, err := c.visits.Get(r.Context())
	if err != nil {
		slog.Error("read visits failed", "error", err)
		utils.WriteErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]int64{"total_visits": visits})
}

func (c *weatherControllerImpl) handleResetStats(w http.ResponseWriter, r *http.Request) {
	c.counters.Reset()
	if err := c.visits.Reset(r.Context()); err != nil {
		slog.Error("reset visits failed", "error", err)
		utils.WriteErrorMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	slog.Info("usage statistics reset")
	utils.WriteStatus(w, http.StatusOK, "Statistics reset")
}

func (c *weatherControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	visits, err := c.visits.Increment(r.Context())
	if err != nil {
		// A broken visit store must not take the page down.
		slog.Warn("count visit failed", "error", err)
	}
	c.metrics.Visit()
	slog.Debug("dashboard visit", "total_visits", visits)

	data := views.DashboardData{TotalVisits: visits}
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		if data.Current, err = c.current(r.WithContext(ctx)); err != nil {
			return fmt.Errorf("get current: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if data.Chart, err = c.service.Chart(ctx); err != nil {
			return fmt.Errorf("sample chart: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if data.Forecast, err = c.service.Forecast(ctx); err != nil {
			return fmt.Errorf("forecast: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		slog.Error("dashboard load failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	var buf bytes.Buffer
	if err := views.RenderDashboard(&buf, &data); err != nil {
		slog.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	writeHTML(w, buf.Bytes())
}

func (c *weatherControllerImpl) handleCurrentPartial(w http.ResponseWriter, r *http.Request) {
	current, err := c.current(r)
	if err != nil {
		slog.Error("current partial: get current failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load current reading")
		return
	}
	c.renderPartial(w, func(b *bytes.Buffer) error { return views.RenderCurrentPartial(b, current) })
}

func (c *weatherControllerImpl) handleChartPartial(w http.ResponseWriter, r *http.Request) {
	points, err := c.service.Chart(r.Context())
	if err != nil {
		slog.Error("chart partial: sample chart failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load chart")
		return
	}
	c.renderPartial(w, func(b *bytes.Buffer) error { return views.RenderChartPartial(b, points) })
}

func (c *weatherControllerImpl) handleForecastPartial(w http.ResponseWriter, r *http.Request) {
	f, err := c.service.Forecast(r.Context())
	if err != nil {
		slog.Error("forecast partial: forecast failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load forecast")
		return
	}
	c.renderPartial(w, func(b *bytes.Buffer) error { return views.RenderForecastPartial(b, f) })
}

// current returns nil without error when nothing has been stored yet.
func (c *weatherControllerImpl) current(r *http.Request) (*types.DerivedPoint, error) {
	p, err := c.service.Current(r.Context())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *weatherControllerImpl) renderPartial(w http.ResponseWriter, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		slog.Error("partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	writeHTML(w, buf.Bytes())
}
