package forecast

import (
	"math"
	"sort"

	"StockCast/internal/domain/models"
	"StockCast/internal/services/features"
)

type DirectionModel interface {
	Ready() bool
	PredictProba(r features.Row) (float64, error)
	Attributions(r features.Row) ([]models.Attribution, error)
}

type ReturnModel interface {
	Ready() bool
	PredictReturn(r features.Row) (float64, error)
}

// Assembler combines both model outputs for the latest row into a result.
type Assembler struct {
	HorizonDays int
	Decay       float64
	TopK        int
}

func NewAssembler(cfg Config) *Assembler {
	return &Assembler{HorizonDays: cfg.HorizonDays, Decay: cfg.Decay, TopK: cfg.TopAttributions}
}

func (a *Assembler) Assemble(dir DirectionModel, ret ReturnModel, latest features.Row) (*models.ForecastResult, error) {
	if dir == nil || ret == nil || !dir.Ready() || !ret.Ready() {
		return nil, models.ErrModelNotReady
	}

	pUp, err := dir.PredictProba(latest)
	if err != nil {
		return nil, err
	}
	r, err := ret.PredictReturn(latest)
	if err != nil {
		return nil, err
	}
	attrs, err := dir.Attributions(latest)
	if err != nil {
		return nil, err
	}

	res := &models.ForecastResult{
		ProbabilityUp:   pUp,
		ProbabilityDown: 1 - pUp,
		CurrentPrice:    latest.Close,
		PredictedReturn: r,
		FuturePrices:    ProjectPath(latest.Close, r, a.HorizonDays, a.Decay),
		Attributions:    RankAttributions(attrs, a.TopK),
		AsOf:            latest.Date,
	}
	// Strictly above one half is UP; a tie reads as DOWN.
	if pUp > 0.5 {
		res.Direction = models.DirectionUp
		res.Confidence = pUp
	} else {
		res.Direction = models.DirectionDown
		res.Confidence = 1 - pUp
	}
	if len(res.FuturePrices) > 0 {
		res.PredictedPrice = res.FuturePrices[0]
	} else {
		res.PredictedPrice = latest.Close * (1 + r)
	}
	return res, nil
}

// ProjectPath compounds r over horizon days, shrinking the daily return by
// decay each day after the first. It is a deterministic expected path.
func ProjectPath(current, r float64, horizon int, decay float64) []float64 {
	if horizon < 1 {
		return nil
	}
	path := make([]float64, horizon)
	price := current * (1 + r)
	path[0] = price
	for d := 1; d < horizon; d++ {
		price *= 1 + r*math.Pow(decay, float64(d))
		path[d] = price
	}
	return path
}

// RankAttributions orders by absolute value, largest first, keeping input
// order among ties, and returns at most k entries.
func RankAttributions(attrs []models.Attribution, k int) []models.Attribution {
	out := append([]models.Attribution(nil), attrs...)
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Value) > math.Abs(out[j].Value)
	})
	if k >= 0 && len(out) > k {
		out = out[:k]
	}
	return out
}
