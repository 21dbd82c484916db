package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/couchcryptid/crime-forecast-dashboard/internal/domain"
)

const (
	daysPerYear  = 365.25
	hoursPerYear = 24 * daysPerYear

	// DefaultFourierOrder is the number of yearly harmonics.
	DefaultFourierOrder = 3
	// DefaultIntervalWidth is the coverage of the prediction interval.
	DefaultIntervalWidth = 0.80
	// DefaultSeasonalPenalty is the ridge penalty on seasonal coefficients,
	// applied to counts scaled into [0, 1].
	DefaultSeasonalPenalty = 1.0
)

// AdditiveFitter fits y(t) = trend(t) + seasonal(t) where the trend is linear
// in fractional years and the seasonal term is a yearly Fourier series. All
// coefficients are estimated jointly by ridge least squares; only the seasonal
// block is penalized.
type AdditiveFitter struct {
	FourierOrder    int
	IntervalWidth   float64
	SeasonalPenalty float64
}

// NewAdditiveFitter returns a fitter with the given harmonic order and interval width.
func NewAdditiveFitter(order int, width float64) *AdditiveFitter {
	return &AdditiveFitter{
		FourierOrder:    order,
		IntervalWidth:   width,
		SeasonalPenalty: DefaultSeasonalPenalty,
	}
}

// Fit estimates the model coefficients for series.
func (f *AdditiveFitter) Fit(ctx context.Context, series domain.Series) (Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := series.Len()
	if n < domain.MinForecastObservations {
		return nil, domain.ErrInsufficientData
	}
	if f.FourierOrder < 1 {
		return nil, fmt.Errorf("fourier order %d: must be at least 1", f.FourierOrder)
	}
	if f.IntervalWidth <= 0 || f.IntervalWidth >= 1 {
		return nil, fmt.Errorf("interval width %g: must be in (0, 1)", f.IntervalWidth)
	}

	ts := series.Timestamps()
	y := series.Values()

	m := &additiveModel{
		order:  f.FourierOrder,
		origin: ts[0],
		last:   ts[n-1],
		scale:  floats.Max(y),
		z:      distuv.UnitNormal.Quantile(0.5 + f.IntervalWidth/2),
	}
	if m.scale <= 0 {
		m.scale = 1
	}

	p := m.width()
	x := mat.NewDense(n, p, nil)
	for i, t := range ts {
		x.SetRow(i, m.features(t))
	}
	scaled := make([]float64, n)
	floats.ScaleTo(scaled, 1/m.scale, y)
	yv := mat.NewVecDense(n, scaled)

	// Normal equations (X'X + L) b = X'y with L diagonal over the seasonal block.
	var xtx mat.SymDense
	xtx.SymOuterK(1, x.T())
	for j := 2; j < p; j++ {
		xtx.SetSym(j, j, xtx.At(j, j)+f.SeasonalPenalty)
	}
	var xty mat.VecDense
	xty.MulVec(x.T(), yv)

	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, errors.New("normal equations are not positive definite")
	}
	var beta mat.VecDense
	if err := chol.SolveVecTo(&beta, &xty); err != nil {
		return nil, fmt.Errorf("solve normal equations: %w", err)
	}
	m.coef = make([]float64, p)
	for j := range m.coef {
		m.coef[j] = beta.AtVec(j)
	}

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)
	resid := make([]float64, n)
	floats.SubTo(resid, scaled, fitted.RawVector().Data)
	dof := max(n-2, 1)
	m.sigma = math.Sqrt(floats.Dot(resid, resid)/float64(dof)) * m.scale

	return m, nil
}

type additiveModel struct {
	order  int
	origin time.Time
	last   time.Time
	scale  float64
	coef   []float64 // intercept, slope, then cos/sin pairs per harmonic
	sigma  float64
	z      float64
}

// width is the number of regression columns.
func (m *additiveModel) width() int {
	return 2 + 2*m.order
}

func (m *additiveModel) features(t time.Time) []float64 {
	row := make([]float64, m.width())
	row[0] = 1
	row[1] = t.Sub(m.origin).Hours() / hoursPerYear
	days := float64(t.Unix()) / 86400
	for k := 1; k <= m.order; k++ {
		arg := 2 * math.Pi * float64(k) * days / daysPerYear
		row[2*k] = math.Cos(arg)
		row[2*k+1] = math.Sin(arg)
	}
	return row
}

// Predict evaluates the model at each timestamp. The interval widens with the
// number of years past the last observation.
func (m *additiveModel) Predict(ctx context.Context, timestamps []time.Time) ([]domain.ForecastPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	points := make([]domain.ForecastPoint, len(timestamps))
	for i, t := range timestamps {
		row := m.features(t)
		trend := (m.coef[0] + m.coef[1]*row[1]) * m.scale
		seasonal := floats.Dot(m.coef[2:], row[2:]) * m.scale
		yhat := trend + seasonal

		h := 0.0
		if t.After(m.last) {
			h = t.Sub(m.last).Hours() / hoursPerYear
		}
		half := m.z * m.sigma * math.Sqrt(1+h)

		points[i] = domain.ForecastPoint{
			Timestamp: t,
			Predicted: yhat,
			Lower:     yhat - half,
			Upper:     yhat + half,
			Trend:     trend,
			Seasonal:  seasonal,
		}
	}
	return points, nil
}
