package model

// LabelValue is one bucket of a per-status or per-kind breakdown.
type LabelValue struct {
    Label string `json:"label"`
    Value int64  `json:"value"`
}

// MonthPoint is one month of the reservation time series.  Revenue
// counts confirmed reservations only.
type MonthPoint struct {
    Month        string `json:"month"` // YYYY-MM
    Count        int64  `json:"count"`
    RevenueCents int64  `json:"revenue_cents"`
}

// TopClient ranks a client by number of reservations, then by confirmed
// revenue.
type TopClient struct {
    ClientID          uint64 `json:"client_id"`
    ClientName        string `json:"client_name"`
    ClientEmail       string `json:"client_email"`
    ReservationsCount int64  `json:"reservations_count"`
    RevenueCents      int64  `json:"revenue_confirmed_cents"`
}

// TopItem ranks a flight or hotel by number of reservations.
type TopItem struct {
    ItemID uint64 `json:"item_id"`
    Label  string `json:"label"`
    Count  int64  `json:"count"`
}

// ReservationStats is the admin report over both reservation tables for
// a creation-date window.
type ReservationStats struct {
    TotalCount        int64        `json:"total_count"`
    FlightCount       int64        `json:"flight_count"`
    HotelCount        int64        `json:"hotel_count"`
    PendingCount      int64        `json:"pending_count"`
    ConfirmedCount    int64        `json:"confirmed_count"`
    CanceledCount     int64        `json:"canceled_count"`
    CancelRatePercent float64      `json:"cancel_rate_percent"`
    RevenueConfirmed  int64        `json:"revenue_confirmed_cents"`
    Monthly           []MonthPoint `json:"monthly"`
    ByType            []LabelValue `json:"by_type"`
    ByStatus          []LabelValue `json:"by_status"`
    TopClients        []TopClient  `json:"top_clients"`
    TopFlights        []TopItem    `json:"top_flights"`
    TopHotels         []TopItem    `json:"top_hotels"`
}
