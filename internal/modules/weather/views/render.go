package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
	"strconv"

	"meteo-server/internal/modules/weather/types"
)

var dashboardTmpl *template.Template

var funcs = template.FuncMap{
	"f1": func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
}

// loadTemplatesFromFS loads dashboard templates from the given fs and dir.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	dashboardTmpl = tmpl
	return nil
}

// LoadTemplates loads embedded dashboard templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// DashboardData is the view model for the full page.
type DashboardData struct {
	// Current is nil until the first reading arrives.
	Current     *types.DerivedPoint
	Chart       []types.ChartPoint
	Forecast    types.Forecast
	TotalVisits int64
}

func RenderDashboard(w io.Writer, data *DashboardData) error {
	return execute(w, "dashboard.html", data)
}

// RenderCurrentPartial renders the current conditions card. current may be nil.
func RenderCurrentPartial(w io.Writer, current *types.DerivedPoint) error {
	return execute(w, "partials/current.html", current)
}

func RenderChartPartial(w io.Writer, points []types.ChartPoint) error {
	return execute(w, "partials/chart.html", points)
}

func RenderForecastPartial(w io.Writer, f types.Forecast) error {
	return execute(w, "partials/forecast.html", f)
}

func execute(w io.Writer, name string, data any) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, name, data)
}
