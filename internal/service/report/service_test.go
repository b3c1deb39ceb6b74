package report

import (
	"context"
	"testing"
	"time"

	reportrepo "pcparts-backend/internal/repository/report"
)

type stubReportRepo struct {
	totalsByWindow func(w reportrepo.Window) *reportrepo.Totals
	buckets        []reportrepo.Bucket
	conversion     reportrepo.ConversionCounts

	windows []reportrepo.Window
	periods []string
}

func (s *stubReportRepo) Totals(_ context.Context, w reportrepo.Window) (*reportrepo.Totals, error) {
	s.windows = append(s.windows, w)
	if s.totalsByWindow != nil {
		return s.totalsByWindow(w), nil
	}
	return &reportrepo.Totals{}, nil
}

func (s *stubReportRepo) RevenueBuckets(_ context.Context, period string, w reportrepo.Window) ([]reportrepo.Bucket, error) {
	s.periods = append(s.periods, period)
	s.windows = append(s.windows, w)
	return s.buckets, nil
}

func (s *stubReportRepo) TopProducts(context.Context, int, reportrepo.Window) ([]reportrepo.TopProduct, error) {
	return nil, nil
}

func (s *stubReportRepo) StatusCounts(context.Context, reportrepo.Window) ([]reportrepo.StatusStat, error) {
	return nil, nil
}

func (s *stubReportRepo) PaymentMethodCounts(context.Context, reportrepo.Window) ([]reportrepo.PaymentMethodStat, error) {
	return nil, nil
}

func (s *stubReportRepo) CustomerStats(context.Context, reportrepo.Window) (*reportrepo.CustomerStats, error) {
	return &reportrepo.CustomerStats{}, nil
}

func (s *stubReportRepo) ConversionCounts(context.Context, reportrepo.Window) (*reportrepo.ConversionCounts, error) {
	c := s.conversion
	return &c, nil
}

func (s *stubReportRepo) ValueStats(context.Context, reportrepo.Window) (*reportrepo.ValueStats, error) {
	return &reportrepo.ValueStats{}, nil
}

func (s *stubReportRepo) SalesByLocation(context.Context, reportrepo.Window) ([]reportrepo.LocationStat, error) {
	return nil, nil
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
}

func newTestService(repo *stubReportRepo) *Service {
	return &Service{repo: repo, now: fixedNow}
}

func TestSummaryComparesPrecedingWindow(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	repo := &stubReportRepo{
		totalsByWindow: func(w reportrepo.Window) *reportrepo.Totals {
			if !w.From.Before(from) {
				return &reportrepo.Totals{RevenueCents: 30000, Orders: 3}
			}
			return &reportrepo.Totals{RevenueCents: 20000, Orders: 4}
		},
	}
	svc := newTestService(repo)

	sum, err := svc.Summary(context.Background(), QueryInput{From: "2024-06-01", To: "2024-06-10"})
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.RevenueGrowthPercent != 50 {
		t.Errorf("revenue growth = %v, want 50", sum.RevenueGrowthPercent)
	}
	if sum.OrdersGrowthPercent != -25 {
		t.Errorf("orders growth = %v, want -25", sum.OrdersGrowthPercent)
	}

	if len(repo.windows) != 2 {
		t.Fatalf("windows queried = %d, want 2", len(repo.windows))
	}
	prev := repo.windows[1]
	if !prev.To.Before(from) {
		t.Errorf("preceding window end %v not before %v", prev.To, from)
	}
	wantLen := repo.windows[0].To.Sub(*repo.windows[0].From)
	if got := prev.To.Sub(*prev.From); got != wantLen {
		t.Errorf("preceding window length = %v, want %v", got, wantLen)
	}
}

func TestSummaryGrowthFromZeroBase(t *testing.T) {
	repo := &stubReportRepo{
		totalsByWindow: func(w reportrepo.Window) *reportrepo.Totals {
			if w.To.After(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
				return &reportrepo.Totals{RevenueCents: 5000, Orders: 1}
			}
			return &reportrepo.Totals{}
		},
	}
	svc := newTestService(repo)

	sum, err := svc.Summary(context.Background(), QueryInput{From: "2024-06-01", To: "2024-06-10"})
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.RevenueGrowthPercent != 100 {
		t.Errorf("growth from zero base = %v, want 100", sum.RevenueGrowthPercent)
	}
}

func TestWindowDefaultsToTrailing30Days(t *testing.T) {
	repo := &stubReportRepo{}
	svc := newTestService(repo)

	if _, err := svc.Summary(context.Background(), QueryInput{}); err != nil {
		t.Fatalf("Summary: %v", err)
	}
	w := repo.windows[0]
	if !w.To.Equal(fixedNow()) {
		t.Errorf("to = %v, want now", w.To)
	}
	if !w.From.Equal(fixedNow().AddDate(0, 0, -30)) {
		t.Errorf("from = %v, want now-30d", w.From)
	}
}

func TestWindowRejectsInvertedRange(t *testing.T) {
	svc := newTestService(&stubReportRepo{})
	if _, err := svc.Summary(context.Background(), QueryInput{From: "2024-06-10", To: "2024-06-01"}); err == nil {
		t.Fatal("inverted range accepted")
	}
}

func TestRevenueSeriesFillsDayGaps(t *testing.T) {
	repo := &stubReportRepo{buckets: []reportrepo.Bucket{
		{Start: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), RevenueCents: 1000, Orders: 1},
		{Start: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), RevenueCents: 2000, Orders: 2},
	}}
	svc := newTestService(repo)

	series, err := svc.RevenueSeries(context.Background(), QueryInput{From: "2024-06-01", To: "2024-06-04"})
	if err != nil {
		t.Fatalf("RevenueSeries: %v", err)
	}
	if len(series) != 4 {
		t.Fatalf("series length = %d, want 4", len(series))
	}
	if series[1].RevenueCents != 0 || series[1].Orders != 0 {
		t.Errorf("gap day not zero-filled: %+v", series[1])
	}
	if series[2].RevenueCents != 2000 {
		t.Errorf("day 3 revenue = %d, want 2000", series[2].RevenueCents)
	}
	if repo.periods[0] != PeriodDay {
		t.Errorf("period = %q, want day", repo.periods[0])
	}
}

func TestRevenueSeriesRejectsUnknownPeriod(t *testing.T) {
	svc := newTestService(&stubReportRepo{})
	if _, err := svc.RevenueSeries(context.Background(), QueryInput{Period: "hour"}); err == nil {
		t.Fatal("unknown period accepted")
	}
}

func TestTruncateWeekStartsMonday(t *testing.T) {
	// 2024-06-15 is a Saturday; its week starts Monday 2024-06-10.
	got := truncate(time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC), PeriodWeek)
	want := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("truncate week = %v, want %v", got, want)
	}
}

func TestConversionRate(t *testing.T) {
	repo := &stubReportRepo{conversion: reportrepo.ConversionCounts{Completed: 3, Cancelled: 1}}
	svc := newTestService(repo)

	c, err := svc.Conversion(context.Background(), QueryInput{})
	if err != nil {
		t.Fatalf("Conversion: %v", err)
	}
	if c.ConversionRate != 75 {
		t.Errorf("rate = %v, want 75", c.ConversionRate)
	}
}

func TestConversionRateNoDecidedOrders(t *testing.T) {
	svc := newTestService(&stubReportRepo{})
	c, err := svc.Conversion(context.Background(), QueryInput{})
	if err != nil {
		t.Fatalf("Conversion: %v", err)
	}
	if c.ConversionRate != 0 {
		t.Errorf("rate = %v, want 0", c.ConversionRate)
	}
}
