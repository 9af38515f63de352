package yahoo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"StockCast/internal/domain/models"
	drepo "StockCast/internal/domain/repository"
	xhttp "StockCast/pkg/http"
	"StockCast/pkg/util"
)

// Client implements a BarSource backed by the Yahoo Finance chart API.
type Client struct {
	baseURL  string
	rng      string
	interval string
	http     *xhttp.Client
	attempts int
	backoff  time.Duration
}

// New creates a chart client. rng and interval are Yahoo's range and
// interval parameters, e.g. "2y" and "1d".
func New(baseURL, rng, interval string, opts ...xhttp.ClientOption) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		rng:      rng,
		interval: interval,
		http:     xhttp.NewClient(opts...),
		attempts: 3,
		backoff:  250 * time.Millisecond,
	}
}

// SetRetry sets how many times a transient failure (429, 5xx, transport
// error) is attempted. The wait grows linearly with backoff.
func (c *Client) SetRetry(attempts int, backoff time.Duration) {
	if attempts < 1 {
		attempts = 1
	}
	c.attempts = attempts
	c.backoff = backoff
}

// Range and Interval identify the requested window, e.g. for cache keys.
func (c *Client) Range() string    { return c.rng }
func (c *Client) Interval() string { return c.interval }

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Currency  string `json:"currency"`
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortName"`
		LongName  string `json:"longName"`
		GMTOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// FetchDaily downloads the configured window for symbol.
func (c *Client) FetchDaily(ctx context.Context, symbol string) (*models.History, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	resp, err := c.fetchChart(ctx, symbol)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("yahoo %s: %w", symbol, drepo.ErrSymbolNotFound)
		}
		return nil, fmt.Errorf("yahoo %s: %w", symbol, err)
	}
	if e := resp.Chart.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, fmt.Errorf("yahoo %s: %w", symbol, drepo.ErrSymbolNotFound)
		}
		return nil, fmt.Errorf("yahoo %s: %s: %s", symbol, e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, drepo.ErrSymbolNotFound)
	}

	res := resp.Chart.Result[0]
	return &models.History{
		Symbol:      symbol,
		CompanyName: CompanyName(symbol, res.Meta.ShortName, res.Meta.LongName),
		Currency:    Currency(symbol, res.Meta.Currency),
		Bars:        decodeBars(res),
	}, nil
}

func (c *Client) fetchChart(ctx context.Context, symbol string) (*chartResponse, error) {
	opts := &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, url.PathEscape(symbol)),
		QueryParams: map[string][]string{
			"range":    {c.rng},
			"interval": {c.interval},
			"events":   {"div,splits"},
		},
		Headers: map[string]string{"Accept": "application/json"},
	}

	var err error
	for i := 1; i <= c.attempts; i++ {
		var resp chartResponse
		err = c.http.SendAndParse(ctx, opts, &resp)
		if err == nil {
			return &resp, nil
		}
		if i == c.attempts || !transient(err) {
			break
		}
		select {
		case <-time.After(time.Duration(i) * c.backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, err
}

func transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	return true
}

// decodeBars drops bars with a missing price, keys each bar by its exchange
// trading day and keeps the last bar seen for a day.
func decodeBars(res chartResult) []models.Bar {
	if len(res.Indicators.Quote) == 0 {
		return nil
	}
	q := res.Indicators.Quote[0]
	byDay := make(map[time.Time]models.Bar, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		o, h, l, cl := at(q.Open, i), at(q.High, i), at(q.Low, i), at(q.Close, i)
		if math.IsNaN(o) || math.IsNaN(h) || math.IsNaN(l) || math.IsNaN(cl) {
			continue
		}
		v := at(q.Volume, i)
		if math.IsNaN(v) {
			v = 0
		}
		day := util.TradingDay(ts, res.Meta.GMTOffset)
		byDay[day] = models.Bar{Date: day, Open: o, High: h, Low: l, Close: cl, Volume: v}
	}

	bars := make([]models.Bar, 0, len(byDay))
	for _, b := range byDay {
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars
}

func at(xs []*float64, i int) float64 {
	if i >= len(xs) || xs[i] == nil {
		return math.NaN()
	}
	v := *xs[i]
	if math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// Currency reports INR for NSE/BSE listings and otherwise trusts the
// provider, defaulting to USD.
func Currency(symbol, provided string) string {
	s := strings.ToUpper(symbol)
	if strings.HasSuffix(s, ".NS") || strings.HasSuffix(s, ".BO") {
		return "INR"
	}
	if provided != "" {
		return provided
	}
	return "USD"
}

// CompanyName prefers the short name, then the long name, then the symbol.
func CompanyName(symbol, shortName, longName string) string {
	if shortName != "" {
		return shortName
	}
	if longName != "" {
		return longName
	}
	return symbol
}
