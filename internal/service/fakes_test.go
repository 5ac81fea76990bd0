package service

import (
    "context"
    "sync"
    "time"

    "github.com/iliyamo/event-seat-inventory/internal/model"
    "github.com/iliyamo/event-seat-inventory/internal/queue"
    "github.com/iliyamo/event-seat-inventory/internal/repository"
)

// In-memory store fakes backing the coordinator, availability and
// reaper tests.  They mirror the MySQL repositories' observable
// behavior, including the slot-uniqueness conflict in CreateLeases,
// so the exactly-one-winner tests exercise the same contract the real
// store provides.

type fakeEventStore struct {
    mu     sync.Mutex
    events map[string]*model.Event
}

func newFakeEventStore() *fakeEventStore {
    return &fakeEventStore{events: make(map[string]*model.Event)}
}

func (s *fakeEventStore) Create(_ context.Context, ev *model.Event) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    ev.CreatedAt = time.Now().UTC()
    cp := *ev
    cp.Seats = append([]string(nil), ev.Seats...)
    s.events[ev.Code] = &cp
    return nil
}

func (s *fakeEventStore) FindByCode(_ context.Context, code string) (*model.Event, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    ev, ok := s.events[code]
    if !ok {
        return nil, repository.ErrEventNotFound
    }
    cp := *ev
    cp.Seats = append([]string(nil), ev.Seats...)
    return &cp, nil
}

func (s *fakeEventStore) ListSeats(_ context.Context, code string) ([]string, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    ev, ok := s.events[code]
    if !ok {
        return nil, repository.ErrEventNotFound
    }
    return append([]string(nil), ev.Seats...), nil
}

func (s *fakeEventStore) AddSeats(_ context.Context, code string, seats []string, eventDate time.Time, durationMin uint32) (int64, int64, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    ev, ok := s.events[code]
    if !ok {
        return 0, 0, repository.ErrEventNotFound
    }
    ev.StartsAt = eventDate
    ev.DurationMin = durationMin
    existing := make(map[string]struct{}, len(ev.Seats))
    for _, l := range ev.Seats {
        existing[l] = struct{}{}
    }
    var added int64
    for _, l := range seats {
        if _, ok := existing[l]; ok {
            continue
        }
        existing[l] = struct{}{}
        ev.Seats = append(ev.Seats, l)
        added++
    }
    return added, int64(len(ev.Seats)), nil
}

type fakeLeaseStore struct {
    mu     sync.Mutex
    nextID uint64
    leases map[string]model.Lease // keyed by eventCode + "|" + seatLabel

    countErr         error
    deleteExpiredErr error
    deleteExpired    int // DeleteExpired invocations
}

func newFakeLeaseStore() *fakeLeaseStore {
    return &fakeLeaseStore{leases: make(map[string]model.Lease)}
}

func leaseKey(eventCode, seat string) string { return eventCode + "|" + seat }

func (s *fakeLeaseStore) FindActive(_ context.Context, eventCode string, seats []string, now time.Time) ([]model.Lease, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []model.Lease
    for _, seat := range seats {
        if l, ok := s.leases[leaseKey(eventCode, seat)]; ok && l.Active(now) {
            out = append(out, l)
        }
    }
    return out, nil
}

func (s *fakeLeaseStore) ActiveSeats(_ context.Context, eventCode string, now time.Time) ([]string, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []string
    for _, l := range s.leases {
        if l.EventCode == eventCode && l.Active(now) {
            out = append(out, l.SeatLabel)
        }
    }
    return out, nil
}

func (s *fakeLeaseStore) CreateLeases(_ context.Context, leases []model.Lease) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if len(leases) == 0 {
        return nil
    }
    // The coordinator stamps every batch with ExpiresAt = now + hold
    // duration; recover its notion of now so expiry checks track the
    // test clock instead of the wall clock.
    now := leases[0].ExpiresAt.Add(-HoldDuration)
    // All-or-nothing, like the transactional insert: reject the whole
    // batch when any slot holds an unexpired lease.
    for _, l := range leases {
        if cur, ok := s.leases[leaseKey(l.EventCode, l.SeatLabel)]; ok && cur.Active(now) {
            return repository.ErrLeaseConflict
        }
    }
    for _, l := range leases {
        s.nextID++
        l.ID = s.nextID
        l.CreatedAt = now
        s.leases[leaseKey(l.EventCode, l.SeatLabel)] = l
    }
    return nil
}

func (s *fakeLeaseStore) DeleteLeases(_ context.Context, eventCode string, seats []string) (int64, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var n int64
    for _, seat := range seats {
        k := leaseKey(eventCode, seat)
        if _, ok := s.leases[k]; ok {
            delete(s.leases, k)
            n++
        }
    }
    return n, nil
}

func (s *fakeLeaseStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.deleteExpired++
    if s.deleteExpiredErr != nil {
        return 0, s.deleteExpiredErr
    }
    var n int64
    for k, l := range s.leases {
        if !l.Active(now) {
            delete(s.leases, k)
            n++
        }
    }
    return n, nil
}

func (s *fakeLeaseStore) Count(_ context.Context) (int64, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.countErr != nil {
        return 0, s.countErr
    }
    return int64(len(s.leases)), nil
}

type fakeBookingStore struct {
    mu       sync.Mutex
    nextID   uint64
    bookings map[uint64]*model.Booking
}

func newFakeBookingStore() *fakeBookingStore {
    return &fakeBookingStore{bookings: make(map[uint64]*model.Booking)}
}

func (s *fakeBookingStore) Create(_ context.Context, b *model.Booking) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.nextID++
    b.ID = s.nextID
    b.CreatedAt = time.Now().UTC()
    cp := *b
    cp.Seats = append([]string(nil), b.Seats...)
    s.bookings[b.ID] = &cp
    return nil
}

func (s *fakeBookingStore) FindByID(_ context.Context, id uint64) (*model.Booking, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    b, ok := s.bookings[id]
    if !ok {
        return nil, repository.ErrBookingNotFound
    }
    cp := *b
    cp.Seats = append([]string(nil), b.Seats...)
    return &cp, nil
}

func (s *fakeBookingStore) BookedSeats(_ context.Context, eventCode, status, paymentStatus string) ([]string, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []string
    for _, b := range s.bookings {
        if b.EventCode == eventCode && b.Status == status && b.PaymentStatus == paymentStatus {
            out = append(out, b.Seats...)
        }
    }
    return out, nil
}

func (s *fakeBookingStore) UpdatePayment(_ context.Context, id uint64, paymentID string, paymentDate time.Time) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    b, ok := s.bookings[id]
    if !ok {
        return repository.ErrBookingNotFound
    }
    b.PaymentID = &paymentID
    b.PaymentDate = &paymentDate
    b.PaymentStatus = model.PaymentCompleted
    b.Status = model.BookingConfirmed
    return nil
}

func (s *fakeBookingStore) MarkCancelled(_ context.Context, id uint64, canceledAt time.Time) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    b, ok := s.bookings[id]
    if !ok {
        return repository.ErrBookingNotFound
    }
    b.Status = model.BookingCancelled
    b.CanceledAt = &canceledAt
    return nil
}

type fakePriceStore struct {
    mu     sync.Mutex
    prices map[string]uint32
}

func newFakePriceStore() *fakePriceStore {
    return &fakePriceStore{prices: make(map[string]uint32)}
}

func (s *fakePriceStore) Find(_ context.Context, eventCode string) (*model.Price, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    p, ok := s.prices[eventCode]
    if !ok {
        return nil, nil
    }
    return &model.Price{EventCode: eventCode, SeatPrice: p, Currency: model.DefaultCurrency}, nil
}

func (s *fakePriceStore) Upsert(_ context.Context, eventCode string, seatPrice uint32) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.prices[eventCode] = seatPrice
    return nil
}

type fakePublisher struct {
    mu     sync.Mutex
    events []queue.BookingEvent
    err    error
}

func (p *fakePublisher) PublishBookingEvent(_ context.Context, ev queue.BookingEvent) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.err != nil {
        return p.err
    }
    p.events = append(p.events, ev)
    return nil
}

func (p *fakePublisher) published() []queue.BookingEvent {
    p.mu.Lock()
    defer p.mu.Unlock()
    return append([]queue.BookingEvent(nil), p.events...)
}

// testEnv bundles a coordinator with its fakes and a controllable
// clock.
type testEnv struct {
    coord    *Coordinator
    events   *fakeEventStore
    leases   *fakeLeaseStore
    bookings *fakeBookingStore
    prices   *fakePriceStore
    pub      *fakePublisher

    mu  sync.Mutex
    now time.Time
}

func newTestEnv() *testEnv {
    env := &testEnv{
        events:   newFakeEventStore(),
        leases:   newFakeLeaseStore(),
        bookings: newFakeBookingStore(),
        prices:   newFakePriceStore(),
        pub:      &fakePublisher{},
        now:      time.Date(2026, time.March, 14, 18, 0, 0, 0, time.UTC),
    }
    env.coord = NewCoordinator(env.events, env.leases, env.bookings, env.prices, env.pub)
    env.coord.now = func() time.Time {
        env.mu.Lock()
        defer env.mu.Unlock()
        return env.now
    }
    return env
}

func (e *testEnv) advance(d time.Duration) {
    e.mu.Lock()
    defer e.mu.Unlock()
    e.now = e.now.Add(d)
}

func (e *testEnv) clock() time.Time {
    e.mu.Lock()
    defer e.mu.Unlock()
    return e.now
}
