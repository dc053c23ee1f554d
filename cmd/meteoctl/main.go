// Command meteoctl inspects and maintains the readings database offline.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"meteo-server/internal/config"
	"meteo-server/internal/db"
	"meteo-server/internal/logging"
	"meteo-server/internal/migrate"
	weather "meteo-server/internal/modules/weather"
	"meteo-server/internal/modules/weather/derive"
	"meteo-server/internal/modules/weather/repository"
	"meteo-server/internal/modules/weather/service"
	"meteo-server/internal/modules/weather/types"
)

const appName = "meteoctl"

var version = "dev"

const usage = `usage: meteoctl <command> [flags]
  migrate                    apply pending schema migrations
  pending                    list migrations not applied yet
  count                      print the number of stored readings
  latest [-n N]              print the newest readings with feels-like
  chart                      print the two-hour chart series
  forecast                   print the pressure-trend forecast
  add -t T -h H -p P         store a reading stamped now
`

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	// Logs go to stderr so command output stays parseable.
	slog.SetDefault(logging.NewWithWriter(os.Stderr, cfg, version, appName))

	os.Exit(run(context.Background(), cfg, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command: %s\n%s", args[0], usage)
		return 2
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	exec := cmd(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	conn, err := db.Open(cfg, slog.Default())
	if err != nil {
		fmt.Fprintf(stderr, "db open: %v\n", err)
		return 1
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	env := &cmdEnv{cfg: cfg, conn: conn, out: stdout}
	if err := exec(ctx, env); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", args[0], err)
		return 1
	}
	return 0
}

type cmdEnv struct {
	cfg  config.Config
	conn *sql.DB
	out  io.Writer
}

func (e *cmdEnv) repository() repository.WeatherRepository {
	return repository.NewRepository(e.conn, e.cfg.Location)
}

func (e *cmdEnv) service() *service.Service {
	return service.NewService(e.repository(), weather.ServiceOptions(e.cfg))
}

func (e *cmdEnv) printJSON(v any) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// A command registers its flags on fs and returns the action to run after parsing.
type command func(fs *flag.FlagSet) func(ctx context.Context, env *cmdEnv) error

var commands = map[string]command{
	"migrate": func(*flag.FlagSet) func(context.Context, *cmdEnv) error {
		return func(ctx context.Context, env *cmdEnv) error {
			if err := migrate.Run(ctx, env.conn); err != nil {
				return err
			}
			fmt.Fprintln(env.out, "migrations applied")
			return nil
		}
	},
	"pending": func(*flag.FlagSet) func(context.Context, *cmdEnv) error {
		return func(ctx context.Context, env *cmdEnv) error {
			pending, err := migrate.Pending(ctx, env.conn)
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Fprintln(env.out, "no pending migrations")
				return nil
			}
			for _, m := range pending {
				fmt.Fprintf(env.out, "%s_%s\n", m.Version, m.Name)
			}
			return nil
		}
	},
	"count": func(*flag.FlagSet) func(context.Context, *cmdEnv) error {
		return func(ctx context.Context, env *cmdEnv) error {
			n, err := env.repository().CountReadings(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(env.out, n)
			return nil
		}
	},
	"latest": func(fs *flag.FlagSet) func(context.Context, *cmdEnv) error {
		n := fs.Int("n", 1, "number of readings")
		return func(ctx context.Context, env *cmdEnv) error {
			if *n < 1 {
				return fmt.Errorf("-n must be positive, got %d", *n)
			}
			readings, err := env.repository().GetLatestReadings(ctx, *n)
			if err != nil {
				return err
			}
			return env.printJSON(derive.Points(readings))
		}
	},
	"chart": func(*flag.FlagSet) func(context.Context, *cmdEnv) error {
		return func(ctx context.Context, env *cmdEnv) error {
			points, err := env.service().Chart(ctx)
			if err != nil {
				return err
			}
			if points == nil {
				points = []types.ChartPoint{}
			}
			return env.printJSON(points)
		}
	},
	"forecast": func(*flag.FlagSet) func(context.Context, *cmdEnv) error {
		return func(ctx context.Context, env *cmdEnv) error {
			fc, err := env.service().Forecast(ctx)
			if err != nil {
				return err
			}
			return env.printJSON(fc)
		}
	},
	"add": func(fs *flag.FlagSet) func(context.Context, *cmdEnv) error {
		var t, h, p optionalFloat
		fs.Var(&t, "t", "temperature in °C")
		fs.Var(&h, "h", "relative humidity in %")
		fs.Var(&p, "p", "pressure in hPa")
		return func(ctx context.Context, env *cmdEnv) error {
			rec, err := env.service().Ingest(ctx, types.Payload{Temperature: t.v, Humidity: h.v, Pressure: p.v})
			if errors.Is(err, service.ErrMissingField) {
				return fmt.Errorf("%w (use -t, -h and -p)", err)
			}
			if err != nil {
				return err
			}
			return env.printJSON(derive.Point(rec))
		}
	},
}
