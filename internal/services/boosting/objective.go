package boosting

import "math"

// Probabilities are clamped to [probEpsilon, 1-probEpsilon] before logs.
const probEpsilon = 1e-15

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clampProb(p float64) float64 {
	return math.Min(math.Max(p, probEpsilon), 1-probEpsilon)
}

// initScore is the constant raw score the ensemble starts from.
func (o Objective) initScore(y []float64) float64 {
	var sum float64
	for _, v := range y {
		sum += v
	}
	mean := sum / float64(len(y))
	if o == Binary {
		p := clampProb(mean)
		return math.Log(p / (1 - p))
	}
	return mean
}

func (o Objective) gradients(y, score, grad, hess []float64) {
	for i := range y {
		if o == Binary {
			p := sigmoid(score[i])
			grad[i] = p - y[i]
			hess[i] = p * (1 - p)
			continue
		}
		grad[i] = score[i] - y[i]
		hess[i] = 1
	}
}

// loss evaluates the objective's metric on raw scores.
func (o Objective) loss(y, score []float64) float64 {
	var sum float64
	for i := range y {
		if o == Binary {
			p := clampProb(sigmoid(score[i]))
			sum -= y[i]*math.Log(p) + (1-y[i])*math.Log(1-p)
			continue
		}
		d := score[i] - y[i]
		sum += d * d
	}
	mean := sum / float64(len(y))
	if o == Binary {
		return mean
	}
	return math.Sqrt(mean)
}

func (o Objective) transform(raw float64) float64 {
	if o == Binary {
		return sigmoid(raw)
	}
	return raw
}
