// Package netcdf loads gridded anomaly fields from NetCDF files such as
// ERSSTv5 subsets or CMIP6/CESM2-LENS ensemble member extracts.
package netcdf

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	gonc "github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/oceanobs/ecindex/internal/domain"
)

// fillThreshold flags missing cells: ERSST and CMIP output uses fill values
// around ±1e20 or ±9.97e36, far beyond any physical anomaly. Values of that
// magnitude become NaN.
const fillThreshold = 1e19

// Loader reads a (time, lat, lon) variable from a NetCDF file. It
// implements pipeline.FieldLoader.
type Loader struct {
	// Variable is the anomaly variable name. Defaults to "sst".
	Variable string

	// TimeUnits overrides the time variable's own CF units attribute, for
	// files that lack one or carry a wrong one.
	TimeUnits string
}

func (l Loader) variable() string {
	if l.Variable != "" {
		return l.Variable
	}
	return "sst"
}

// timeUnits picks the units string for decoding the time axis: an explicit
// override wins, then the variable's CF units attribute, then the ERSSTv5
// convention.
func (l Loader) timeUnits(tv api.VarGetter) string {
	if l.TimeUnits != "" {
		return l.TimeUnits
	}
	if attrs := tv.Attributes(); attrs != nil {
		if u, has := attrs.Get("units"); has {
			if s, ok := u.(string); ok && s != "" {
				return s
			}
		}
	}
	return "days since 1800-01-01"
}

// Load reads the whole variable into memory and assembles a GriddedField.
func (l Loader) Load(_ context.Context, path string) (*domain.GriddedField, error) {
	nc, err := gonc.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open netcdf %s: %w", path, err)
	}
	defer nc.Close()

	lat, err := axisValues(nc, "lat", "latitude")
	if err != nil {
		return nil, fmt.Errorf("netcdf %s: %w", path, err)
	}
	lon, err := axisValues(nc, "lon", "longitude")
	if err != nil {
		return nil, fmt.Errorf("netcdf %s: %w", path, err)
	}
	tv, _, err := findVar(nc, "time")
	if err != nil {
		return nil, fmt.Errorf("netcdf %s: %w", path, err)
	}
	rawv, err := tv.Values()
	if err != nil {
		return nil, fmt.Errorf("netcdf %s: read time: %w", path, err)
	}
	rawTime, err := toFloat64s(rawv)
	if err != nil {
		return nil, fmt.Errorf("netcdf %s: time axis: %w", path, err)
	}
	times, err := decodeTimes(rawTime, l.timeUnits(tv))
	if err != nil {
		return nil, fmt.Errorf("netcdf %s: %w", path, err)
	}

	vg, err := nc.GetVarGetter(l.variable())
	if err != nil {
		return nil, fmt.Errorf("netcdf %s: variable %q: %w", path, l.variable(), err)
	}
	v, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("netcdf %s: read %q: %w", path, l.variable(), err)
	}
	values, err := flatten(v, len(times), len(lat), len(lon))
	if err != nil {
		return nil, fmt.Errorf("netcdf %s: variable %q: %w", path, l.variable(), err)
	}

	return domain.NewGriddedField(times, lat, lon, values)
}

// findVar returns the first variable present among the candidate names,
// along with the name that matched.
func findVar(nc api.Group, names ...string) (api.VarGetter, string, error) {
	for _, name := range names {
		if vg, err := nc.GetVarGetter(name); err == nil {
			return vg, name, nil
		}
	}
	return nil, "", fmt.Errorf("no coordinate variable named %s", strings.Join(names, " or "))
}

// axisValues reads a 1-D coordinate variable, trying each candidate name in
// order.
func axisValues(nc api.Group, names ...string) ([]float64, error) {
	vg, name, err := findVar(nc, names...)
	if err != nil {
		return nil, err
	}
	v, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", name, err)
	}
	return toFloat64s(v)
}

func toFloat64s(v any) ([]float64, error) {
	switch vv := v.(type) {
	case []float64:
		return vv, nil
	case []float32:
		out := make([]float64, len(vv))
		for i, x := range vv {
			out[i] = float64(x)
		}
		return out, nil
	case []int64:
		out := make([]float64, len(vv))
		for i, x := range vv {
			out[i] = float64(x)
		}
		return out, nil
	case []int32:
		out := make([]float64, len(vv))
		for i, x := range vv {
			out[i] = float64(x)
		}
		return out, nil
	case []int16:
		out := make([]float64, len(vv))
		for i, x := range vv {
			out[i] = float64(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported coordinate type %T", v)
	}
}

// decodeTimes converts raw CF time offsets into timestamps using a units
// string of the form "<unit> since <date>", e.g. "days since 1800-01-01".
func decodeTimes(raw []float64, units string) ([]time.Time, error) {
	fields := strings.Fields(units)
	if len(fields) < 3 || fields[1] != "since" {
		return nil, fmt.Errorf("unsupported time units %q", units)
	}

	var step float64 // seconds per unit
	switch fields[0] {
	case "days", "day":
		step = 86400
	case "hours", "hour":
		step = 3600
	case "minutes", "minute":
		step = 60
	case "seconds", "second":
		step = 1
	default:
		return nil, fmt.Errorf("unsupported time unit %q", fields[0])
	}

	baseStr := strings.Join(fields[2:], " ")
	var base time.Time
	var err error
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05Z", "2006-01-02"} {
		base, err = time.Parse(layout, baseStr)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("unsupported time epoch %q", baseStr)
	}

	times := make([]time.Time, len(raw))
	for i, v := range raw {
		// Split whole seconds from the fraction so large offsets (two
		// centuries of days) stay exact in integer math.
		secs := v * step
		whole := math.Trunc(secs)
		times[i] = base.
			Add(time.Duration(whole) * time.Second).
			Add(time.Duration((secs - whole) * float64(time.Second))).
			UTC()
	}
	return times, nil
}

// flatten copies a nested [time][lat][lon] array into the field's flat
// layout, mapping fill values to NaN.
func flatten(v any, nt, nlat, nlon int) ([]float64, error) {
	out := make([]float64, nt*nlat*nlon)

	switch data := v.(type) {
	case [][][]float64:
		if err := checkShape(len(data), nt, "time"); err != nil {
			return nil, err
		}
		for t := range data {
			if err := checkShape(len(data[t]), nlat, "lat"); err != nil {
				return nil, err
			}
			for j := range data[t] {
				if err := checkShape(len(data[t][j]), nlon, "lon"); err != nil {
					return nil, err
				}
				for i, x := range data[t][j] {
					out[(t*nlat+j)*nlon+i] = sanitizeFill(x)
				}
			}
		}
	case [][][]float32:
		if err := checkShape(len(data), nt, "time"); err != nil {
			return nil, err
		}
		for t := range data {
			if err := checkShape(len(data[t]), nlat, "lat"); err != nil {
				return nil, err
			}
			for j := range data[t] {
				if err := checkShape(len(data[t][j]), nlon, "lon"); err != nil {
					return nil, err
				}
				for i, x := range data[t][j] {
					out[(t*nlat+j)*nlon+i] = sanitizeFill(float64(x))
				}
			}
		}
	default:
		return nil, fmt.Errorf("unsupported variable type %T, want [time][lat][lon] floats", v)
	}

	return out, nil
}

func checkShape(have, want int, dim string) error {
	if have != want {
		return fmt.Errorf("%s dimension holds %d entries, coordinate has %d", dim, have, want)
	}
	return nil
}

func sanitizeFill(v float64) float64 {
	if math.Abs(v) >= fillThreshold {
		return math.NaN()
	}
	return v
}
