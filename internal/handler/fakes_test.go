package handler

import (
    "bytes"
    "context"
    "encoding/json"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"

    "github.com/iliyamo/travel-reservations/internal/middleware"
    "github.com/iliyamo/travel-reservations/internal/model"
    "github.com/iliyamo/travel-reservations/internal/repository"
    "github.com/iliyamo/travel-reservations/internal/service"
    "github.com/iliyamo/travel-reservations/internal/utils"
)

const testSecret = "handler-test-secret"

// newEcho mirrors the production echo setup without the Redis layers.
func newEcho() *echo.Echo {
    e := echo.New()
    e.Validator = NewValidator()
    e.HTTPErrorHandler = middleware.ErrorHandler(zap.NewNop())
    return e
}

func tokenFor(t *testing.T, id uint64, role string) string {
    t.Helper()
    tok, err := utils.NewAccessToken(testSecret, id, role, 5)
    require.NoError(t, err)
    return tok.Token
}

func do(e *echo.Echo, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
    var buf bytes.Buffer
    if body != nil {
        switch b := body.(type) {
        case string:
            buf.WriteString(b)
        default:
            _ = json.NewEncoder(&buf).Encode(b)
        }
    }
    req := httptest.NewRequest(method, path, &buf)
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    if token != "" {
        req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
    t.Helper()
    var m map[string]interface{}
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
    return m
}

// ----- function-field fakes -----

type fakeBookings struct {
    bookFlight   func(ctx context.Context, clientID uint64, in service.BookFlightInput) (*service.ReservationView, error)
    bookHotel    func(ctx context.Context, clientID uint64, in service.BookHotelInput) (*service.ReservationView, error)
    cancelFlight func(ctx context.Context, clientID, id uint64) (*service.ReservationView, error)
    cancelHotel  func(ctx context.Context, clientID, id uint64) (*service.ReservationView, error)
    mine         func(ctx context.Context, clientID uint64) ([]service.ReservationView, error)
}

func (f *fakeBookings) BookFlight(ctx context.Context, clientID uint64, in service.BookFlightInput) (*service.ReservationView, error) {
    return f.bookFlight(ctx, clientID, in)
}

func (f *fakeBookings) BookHotel(ctx context.Context, clientID uint64, in service.BookHotelInput) (*service.ReservationView, error) {
    return f.bookHotel(ctx, clientID, in)
}

func (f *fakeBookings) CancelFlight(ctx context.Context, clientID, id uint64) (*service.ReservationView, error) {
    return f.cancelFlight(ctx, clientID, id)
}

func (f *fakeBookings) CancelHotel(ctx context.Context, clientID, id uint64) (*service.ReservationView, error) {
    return f.cancelHotel(ctx, clientID, id)
}

func (f *fakeBookings) MyReservations(ctx context.Context, clientID uint64) ([]service.ReservationView, error) {
    return f.mine(ctx, clientID)
}

type fakePayments struct {
    payFlight func(ctx context.Context, clientID, id uint64, method string) (*service.PaymentView, error)
    payHotel  func(ctx context.Context, clientID, id uint64, method string) (*service.PaymentView, error)
}

func (f *fakePayments) PayFlight(ctx context.Context, clientID, id uint64, method string) (*service.PaymentView, error) {
    return f.payFlight(ctx, clientID, id, method)
}

func (f *fakePayments) PayHotel(ctx context.Context, clientID, id uint64, method string) (*service.PaymentView, error) {
    return f.payHotel(ctx, clientID, id, method)
}

type fakeAccounts struct {
    register     func(ctx context.Context, fullName, email, password string) (*model.User, error)
    authenticate func(ctx context.Context, email, password string) (*model.User, error)
    getUser      func(ctx context.Context, id uint64) (*model.User, error)
}

func (f *fakeAccounts) Register(ctx context.Context, fullName, email, password string) (*model.User, error) {
    return f.register(ctx, fullName, email, password)
}

func (f *fakeAccounts) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
    return f.authenticate(ctx, email, password)
}

func (f *fakeAccounts) GetUser(ctx context.Context, id uint64) (*model.User, error) {
    return f.getUser(ctx, id)
}

// fakeTokens keeps refresh hashes in memory.
type fakeTokens struct {
    active     map[string]uint64
    revokedAll []uint64
}

func newFakeTokens() *fakeTokens { return &fakeTokens{active: map[string]uint64{}} }

func (f *fakeTokens) StoreRefresh(_ context.Context, userID uint64, hash string, _ time.Time) error {
    f.active[hash] = userID
    return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
    id, ok := f.active[hash]
    if !ok {
        return 0, repository.ErrNotFound
    }
    return id, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
    delete(f.active, hash)
    return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
    for h, id := range f.active {
        if id == userID {
            delete(f.active, h)
        }
    }
    f.revokedAll = append(f.revokedAll, userID)
    return nil
}

type fakeAdmin struct {
    rows      []service.AdminReservationRow
    canceled  []uint64
    deleted   []uint64
    deleteErr error
}

func (f *fakeAdmin) List(context.Context) ([]service.AdminReservationRow, error) { return f.rows, nil }

func (f *fakeAdmin) CancelFlight(_ context.Context, id uint64) (*service.ReservationView, error) {
    f.canceled = append(f.canceled, id)
    return &service.ReservationView{ID: id, Kind: model.KindFlight, Status: model.StatusCanceled}, nil
}

func (f *fakeAdmin) CancelHotel(_ context.Context, id uint64) (*service.ReservationView, error) {
    f.canceled = append(f.canceled, id)
    return &service.ReservationView{ID: id, Kind: model.KindHotel, Status: model.StatusCanceled}, nil
}

func (f *fakeAdmin) DeleteFlight(_ context.Context, id uint64) error {
    f.deleted = append(f.deleted, id)
    return f.deleteErr
}

func (f *fakeAdmin) DeleteHotel(_ context.Context, id uint64) error {
    f.deleted = append(f.deleted, id)
    return f.deleteErr
}

type fakeStats struct {
    from, to time.Time
    calls    int
}

func (f *fakeStats) Reservations(_ context.Context, from, to time.Time) (*model.ReservationStats, error) {
    f.from, f.to = from, to
    f.calls++
    return &model.ReservationStats{TotalCount: 3, ConfirmedCount: 1}, nil
}

// fakeInventory records the last filter and input it received.
type fakeInventory struct {
    flightFilter repository.FlightFilter
    hotelFilter  repository.HotelFilter
    flightIn     service.FlightInput
    hotelIn      service.HotelInput
    flights      map[uint64]*model.Flight
    err          error
}

func (f *fakeInventory) ListFlights(_ context.Context, flt repository.FlightFilter) ([]model.Flight, int64, error) {
    f.flightFilter = flt
    out := []model.Flight{}
    for _, fl := range f.flights {
        out = append(out, *fl)
    }
    return out, int64(len(out)), f.err
}

func (f *fakeInventory) GetFlight(_ context.Context, id uint64) (*model.Flight, error) {
    if fl, ok := f.flights[id]; ok {
        return fl, nil
    }
    return nil, &service.Error{Kind: service.KindNotFound, Message: "flight not found"}
}

func (f *fakeInventory) CreateFlight(_ context.Context, in service.FlightInput) (*model.Flight, error) {
    f.flightIn = in
    if f.err != nil {
        return nil, f.err
    }
    return &model.Flight{ID: 1, FlightNumber: in.FlightNumber, AvailableSeats: in.AvailableSeats}, nil
}

func (f *fakeInventory) UpdateFlight(_ context.Context, id uint64, in service.FlightInput) (*model.Flight, error) {
    f.flightIn = in
    return &model.Flight{ID: id, FlightNumber: in.FlightNumber}, f.err
}

func (f *fakeInventory) DeleteFlight(context.Context, uint64) error { return f.err }

func (f *fakeInventory) ListHotels(_ context.Context, flt repository.HotelFilter) ([]model.Hotel, int64, error) {
    f.hotelFilter = flt
    return []model.Hotel{}, 0, f.err
}

func (f *fakeInventory) GetHotel(_ context.Context, id uint64) (*model.Hotel, error) {
    return &model.Hotel{ID: id, Name: "Atlas"}, f.err
}

func (f *fakeInventory) CreateHotel(_ context.Context, in service.HotelInput) (*model.Hotel, error) {
    f.hotelIn = in
    return &model.Hotel{ID: 1, Name: in.Name, TotalRooms: in.TotalRooms}, f.err
}

func (f *fakeInventory) UpdateHotel(_ context.Context, id uint64, in service.HotelInput) (*model.Hotel, error) {
    f.hotelIn = in
    return &model.Hotel{ID: id, Name: in.Name}, f.err
}

func (f *fakeInventory) DeleteHotel(context.Context, uint64) error { return f.err }

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

var (
    _ Bookings          = (*fakeBookings)(nil)
    _ Payments          = (*fakePayments)(nil)
    _ Accounts          = (*fakeAccounts)(nil)
    _ RefreshTokens     = (*fakeTokens)(nil)
    _ AdminReservations = (*fakeAdmin)(nil)
    _ Stats             = (*fakeStats)(nil)
    _ Inventory         = (*fakeInventory)(nil)
)
