package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/iliyamo/travel-reservations/internal/model"
)

// StatsService builds the admin reservation report.
type StatsService struct {
	stats StatsStore
}

func NewStatsService(stats StatsStore) *StatsService { return &StatsService{stats: stats} }

// Reservations reports on reservations created between from and to,
// both days inclusive.
func (s *StatsService) Reservations(ctx context.Context, from, to time.Time) (*model.ReservationStats, error) {
	start := dateOnly(from)
	end := dateOnly(to)
	if start.After(end) {
		return nil, invalidRequest("from (%s) must not be after to (%s)", start.Format(dateLayout), end.Format(dateLayout))
	}
	// inclusive dates -> [from 00:00, to+1 00:00)
	rep, err := s.stats.Reservations(ctx, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("reservation stats: %w", err)
	}
	if rep.TotalCount > 0 {
		rep.CancelRatePercent = math.Round(float64(rep.CanceledCount)*10000/float64(rep.TotalCount)) / 100
	}
	rep.ByType = []model.LabelValue{
		{Label: string(model.KindFlight), Value: rep.FlightCount},
		{Label: string(model.KindHotel), Value: rep.HotelCount},
	}
	rep.ByStatus = []model.LabelValue{
		{Label: string(model.StatusPendingPayment), Value: rep.PendingCount},
		{Label: string(model.StatusConfirmed), Value: rep.ConfirmedCount},
		{Label: string(model.StatusCanceled), Value: rep.CanceledCount},
	}
	return rep, nil
}
