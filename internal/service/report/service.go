package report

import (
	"context"
	"time"

	"pcparts-backend/internal/domain"
	reportrepo "pcparts-backend/internal/repository/report"
)

// Periods accepted by the revenue series endpoint.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

const defaultWindowDays = 30

type Service struct {
	repo reportrepo.Repository
	now  func() time.Time
}

func New(repo reportrepo.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// QueryInput carries the raw window parameters from the HTTP layer. Dates
// accept RFC 3339 or plain YYYY-MM-DD.
type QueryInput struct {
	From   string
	To     string
	Period string
	Limit  int
}

// Summary is the sales overview with growth against the preceding window of
// equal length.
type Summary struct {
	reportrepo.Totals
	RevenueGrowthPercent float64 `json:"revenueGrowthPercent"`
	OrdersGrowthPercent  float64 `json:"ordersGrowthPercent"`
}

// Summary aggregates paid orders in the window and compares against the
// window immediately preceding it.
func (s *Service) Summary(ctx context.Context, in QueryInput) (*Summary, error) {
	w, err := s.window(in)
	if err != nil {
		return nil, err
	}
	current, err := s.repo.Totals(ctx, w)
	if err != nil {
		return nil, err
	}
	previous, err := s.repo.Totals(ctx, precedingWindow(w))
	if err != nil {
		return nil, err
	}
	return &Summary{
		Totals:               *current,
		RevenueGrowthPercent: growth(float64(current.RevenueCents), float64(previous.RevenueCents)),
		OrdersGrowthPercent:  growth(float64(current.Orders), float64(previous.Orders)),
	}, nil
}

// RevenueSeries returns per-period buckets over the window with empty
// periods filled in as zero rows.
func (s *Service) RevenueSeries(ctx context.Context, in QueryInput) ([]reportrepo.Bucket, error) {
	period := in.Period
	if period == "" {
		period = PeriodDay
	}
	if period != PeriodDay && period != PeriodWeek && period != PeriodMonth {
		return nil, domain.Invalid("period must be day, week or month")
	}
	w, err := s.window(in)
	if err != nil {
		return nil, err
	}
	buckets, err := s.repo.RevenueBuckets(ctx, period, w)
	if err != nil {
		return nil, err
	}
	return fillGaps(buckets, period, *w.From, *w.To), nil
}

func (s *Service) TopProducts(ctx context.Context, in QueryInput) ([]reportrepo.TopProduct, error) {
	limit := in.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	w, err := s.window(in)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopProducts(ctx, limit, w)
	if err != nil {
		return nil, err
	}
	if top == nil {
		top = []reportrepo.TopProduct{}
	}
	return top, nil
}

func (s *Service) StatusBreakdown(ctx context.Context, in QueryInput) ([]reportrepo.StatusStat, error) {
	w, err := s.window(in)
	if err != nil {
		return nil, err
	}
	return s.repo.StatusCounts(ctx, w)
}

func (s *Service) PaymentMethodBreakdown(ctx context.Context, in QueryInput) ([]reportrepo.PaymentMethodStat, error) {
	w, err := s.window(in)
	if err != nil {
		return nil, err
	}
	return s.repo.PaymentMethodCounts(ctx, w)
}

func (s *Service) Customers(ctx context.Context, in QueryInput) (*reportrepo.CustomerStats, error) {
	w, err := s.window(in)
	if err != nil {
		return nil, err
	}
	return s.repo.CustomerStats(ctx, w)
}

// Conversion is the share of shipped-or-delivered orders among decided ones.
type Conversion struct {
	Completed      int     `json:"completed"`
	Cancelled      int     `json:"cancelled"`
	ConversionRate float64 `json:"conversionRate"`
}

func (s *Service) Conversion(ctx context.Context, in QueryInput) (*Conversion, error) {
	w, err := s.window(in)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.ConversionCounts(ctx, w)
	if err != nil {
		return nil, err
	}
	c := Conversion{Completed: counts.Completed, Cancelled: counts.Cancelled}
	if decided := counts.Completed + counts.Cancelled; decided > 0 {
		c.ConversionRate = float64(counts.Completed) / float64(decided) * 100
	}
	return &c, nil
}

func (s *Service) OrderValues(ctx context.Context, in QueryInput) (*reportrepo.ValueStats, error) {
	w, err := s.window(in)
	if err != nil {
		return nil, err
	}
	return s.repo.ValueStats(ctx, w)
}

func (s *Service) SalesByLocation(ctx context.Context, in QueryInput) ([]reportrepo.LocationStat, error) {
	w, err := s.window(in)
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.SalesByLocation(ctx, w)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []reportrepo.LocationStat{}
	}
	return stats, nil
}

// Dashboard bundles the overview widgets into one payload.
type Dashboard struct {
	Summary        *Summary                       `json:"summary"`
	Revenue        []reportrepo.Bucket            `json:"revenue"`
	TopProducts    []reportrepo.TopProduct        `json:"topProducts"`
	StatusCounts   []reportrepo.StatusStat        `json:"statusCounts"`
	PaymentMethods []reportrepo.PaymentMethodStat `json:"paymentMethods"`
	Customers      *reportrepo.CustomerStats      `json:"customers"`
	Conversion     *Conversion                    `json:"conversion"`
}

func (s *Service) Dashboard(ctx context.Context, in QueryInput) (*Dashboard, error) {
	var (
		d   Dashboard
		err error
	)
	if d.Summary, err = s.Summary(ctx, in); err != nil {
		return nil, err
	}
	if d.Revenue, err = s.RevenueSeries(ctx, in); err != nil {
		return nil, err
	}
	if d.TopProducts, err = s.TopProducts(ctx, in); err != nil {
		return nil, err
	}
	if d.StatusCounts, err = s.StatusBreakdown(ctx, in); err != nil {
		return nil, err
	}
	if d.PaymentMethods, err = s.PaymentMethodBreakdown(ctx, in); err != nil {
		return nil, err
	}
	if d.Customers, err = s.Customers(ctx, in); err != nil {
		return nil, err
	}
	if d.Conversion, err = s.Conversion(ctx, in); err != nil {
		return nil, err
	}
	return &d, nil
}

// window parses the bounds, defaulting to the trailing 30 days. From after To
// is rejected.
func (s *Service) window(in QueryInput) (reportrepo.Window, error) {
	to := s.now().UTC()
	if in.To != "" {
		parsed, err := parseDate(in.To)
		if err != nil {
			return reportrepo.Window{}, domain.Invalid("invalid to date %q", in.To)
		}
		to = parsed
	}
	from := to.AddDate(0, 0, -defaultWindowDays)
	if in.From != "" {
		parsed, err := parseDate(in.From)
		if err != nil {
			return reportrepo.Window{}, domain.Invalid("invalid from date %q", in.From)
		}
		from = parsed
	}
	if from.After(to) {
		return reportrepo.Window{}, domain.Invalid("from must not be after to")
	}
	return reportrepo.Window{From: &from, To: &to}, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// precedingWindow shifts the window back by its own length.
func precedingWindow(w reportrepo.Window) reportrepo.Window {
	length := w.To.Sub(*w.From)
	prevTo := w.From.Add(-time.Nanosecond)
	prevFrom := prevTo.Add(-length)
	return reportrepo.Window{From: &prevFrom, To: &prevTo}
}

func growth(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

// fillGaps expands the sparse query result into a dense series from the
// truncated window start to its end.
func fillGaps(buckets []reportrepo.Bucket, period string, from, to time.Time) []reportrepo.Bucket {
	byStart := make(map[time.Time]reportrepo.Bucket, len(buckets))
	for _, b := range buckets {
		byStart[b.Start.UTC()] = b
	}

	var out []reportrepo.Bucket
	for cursor := truncate(from, period); !cursor.After(to); cursor = step(cursor, period) {
		if b, ok := byStart[cursor]; ok {
			out = append(out, b)
		} else {
			out = append(out, reportrepo.Bucket{Start: cursor})
		}
	}
	return out
}

// truncate mirrors postgres date_trunc for the supported periods: midnight,
// Monday of the week, or the first of the month, all in UTC.
func truncate(t time.Time, period string) time.Time {
	t = t.UTC()
	switch period {
	case PeriodWeek:
		day := t.Truncate(24 * time.Hour)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return t.Truncate(24 * time.Hour)
	}
}

func step(t time.Time, period string) time.Time {
	switch period {
	case PeriodWeek:
		return t.AddDate(0, 0, 7)
	case PeriodMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}
