package service

import (
	"errors"
	"math"
)

// ErrDegenerateFit indicates the regressor cannot produce a model from the
// supplied points (too few, or no variance in x).
var ErrDegenerateFit = errors.New("insufficient or degenerate points for fit")

// Point is one (day ordinal, balance) observation.
type Point struct {
	X float64
	Y float64
}

// Model predicts a balance at a day ordinal.
type Model interface {
	Predict(x float64) float64
}

// Regressor fits a Model to a series of points. The forecast engine composes
// a list of regressors and averages their predictions, so deployments can
// run a single linear model or add further strategies without touching the
// horizon-scanning logic.
type Regressor interface {
	Fit(points []Point) (Model, error)
}

// LinearRegressor fits y = slope*x + intercept by ordinary least squares.
type LinearRegressor struct{}

// LinearModel is the fitted line. Slope is exported so the forecaster can
// reject non-growing trends.
type LinearModel struct {
	Slope     float64
	Intercept float64
}

func (m LinearModel) Predict(x float64) float64 {
	return m.Slope*x + m.Intercept
}

func (LinearRegressor) Fit(points []Point) (Model, error) {
	if len(points) < 2 {
		return nil, ErrDegenerateFit
	}
	n := float64(len(points))
	var sumX, sumY, sumXY, sumX2 float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
		sumXY += p.X * p.Y
		sumX2 += p.X * p.X
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return nil, ErrDegenerateFit
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n
	return LinearModel{Slope: slope, Intercept: intercept}, nil
}

// QuadraticRegressor fits y = a*x^2 + b*x + c by least squares on the normal
// equations, the polynomial-feature analogue of the linear fit.
type QuadraticRegressor struct{}

type quadraticModel struct {
	a, b, c float64
}

func (m quadraticModel) Predict(x float64) float64 {
	return m.a*x*x + m.b*x + m.c
}

func (QuadraticRegressor) Fit(points []Point) (Model, error) {
	if len(points) < 3 {
		return nil, ErrDegenerateFit
	}
	n := float64(len(points))
	var sx, sx2, sx3, sx4, sy, sxy, sx2y float64
	for _, p := range points {
		x2 := p.X * p.X
		sx += p.X
		sx2 += x2
		sx3 += x2 * p.X
		sx4 += x2 * x2
		sy += p.Y
		sxy += p.X * p.Y
		sx2y += x2 * p.Y
	}
	m := [3][4]float64{
		{sx4, sx3, sx2, sx2y},
		{sx3, sx2, sx, sxy},
		{sx2, sx, n, sy},
	}
	coef, ok := solve3(m)
	if !ok {
		return nil, ErrDegenerateFit
	}
	return quadraticModel{a: coef[0], b: coef[1], c: coef[2]}, nil
}

// solve3 solves a 3x3 augmented system by Gaussian elimination with partial
// pivoting.
func solve3(m [3][4]float64) ([3]float64, bool) {
	for col := 0; col < 3; col++ {
		pivot := col
		for row := col + 1; row < 3; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}
		if m[pivot][col] == 0 {
			return [3]float64{}, false
		}
		m[col], m[pivot] = m[pivot], m[col]
		for row := col + 1; row < 3; row++ {
			f := m[row][col] / m[col][col]
			for k := col; k < 4; k++ {
				m[row][k] -= f * m[col][k]
			}
		}
	}
	var out [3]float64
	for row := 2; row >= 0; row-- {
		v := m[row][3]
		for k := row + 1; k < 3; k++ {
			v -= m[row][k] * out[k]
		}
		out[row] = v / m[row][row]
	}
	return out, true
}
