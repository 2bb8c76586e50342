package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"ridebooking/internal/domain"
	"ridebooking/internal/redis"
	"ridebooking/internal/repository"
	"ridebooking/internal/telemetry"
)

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
	GetError    error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0, len(m.rides))
	for _, ride := range m.rides {
		copy := *ride
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockRideRepository) GetByDepartureDate(ctx context.Context, from, to time.Time) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Ride
	for _, ride := range m.rides {
		if !ride.DepartureTime.Before(from) && ride.DepartureTime.Before(to) {
			copy := *ride
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DepartureTime.Before(result[j].DepartureTime)
	})
	return result, nil
}

func (m *MockRideRepository) GetOverlapping(ctx context.Context, from, to time.Time) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Ride
	for _, ride := range m.rides {
		if ride.Overlaps(from, to) {
			copy := *ride
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DepartureTime.Before(result[j].DepartureTime)
	})
	return result, nil
}

func (m *MockRideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[ride.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *ride
	m.rides[ride.ID] = &copy
	return nil
}

// GetRide returns the stored ride for test assertions.
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

// adjustSeats applies a seat delta under the repository mutex, honoring the
// same bounds the SQL schema enforces.
func (m *MockRideRepository) adjustSeats(rideID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	next := ride.SeatsAvailable + delta
	if next < 0 {
		return repository.ErrInsufficientSeats
	}
	if next > ride.Capacity {
		next = ride.Capacity
	}
	ride.SeatsAvailable = next
	return nil
}

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository. It
// shares a MockRideRepository so Create/Update adjust seat counts with the
// same atomicity the PostgreSQL implementation provides.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings []*domain.Booking
	rides    *MockRideRepository

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
	GetError    error
}

// NewMockBookingRepository creates a new mock booking repository backed by
// the given ride repository.
func NewMockBookingRepository(rides *MockRideRepository) *MockBookingRepository {
	return &MockBookingRepository{rides: rides}
}

// AddBooking adds a booking without touching seat counts.
func (m *MockBookingRepository) AddBooking(booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = append(m.bookings, booking)
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.bookings {
		if b.RideID == booking.RideID && b.PassengerID == booking.PassengerID && b.Status == domain.BookingStatusBooked {
			return repository.ErrDuplicate
		}
	}

	if err := m.rides.adjustSeats(booking.RideID, -1); err != nil {
		return err
	}

	copy := *booking
	m.bookings = append(m.bookings, &copy)
	return nil
}

func (m *MockBookingRepository) GetByRideAndPassenger(ctx context.Context, rideID, passengerID string) (*domain.Booking, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	// Latest booking for the pair wins (insertion order).
	for i := len(m.bookings) - 1; i >= 0; i-- {
		b := m.bookings[i]
		if b.RideID == rideID && b.PassengerID == passengerID {
			copy := *b
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockBookingRepository) GetByRide(ctx context.Context, rideID string) ([]*domain.Booking, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range m.bookings {
		if b.RideID == rideID {
			copy := *b
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockBookingRepository) GetBookedByPassenger(ctx context.Context, passengerID string) ([]*domain.Booking, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range m.bookings {
		if b.PassengerID == passengerID && b.Status == domain.BookingStatusBooked {
			copy := *b
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, b := range m.bookings {
		if b.ID == booking.ID && b.Status == domain.BookingStatusBooked {
			if booking.Status == domain.BookingStatusCancelled {
				if err := m.rides.adjustSeats(booking.RideID, 1); err != nil {
					return err
				}
			}
			copy := *booking
			m.bookings[i] = &copy
			return nil
		}
	}
	return repository.ErrNotFound
}

// CountByStatus returns the number of bookings for a ride with the status.
func (m *MockBookingRepository) CountByStatus(rideID string, status domain.BookingStatus) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, b := range m.bookings {
		if b.RideID == rideID && b.Status == status {
			count++
		}
	}
	return count
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	GetError error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a passenger to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

// RemoveUser deletes a passenger, for data-integrity scenarios.
func (m *MockUserRepository) RemoveUser(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Phone == phone {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		copy := *u
		result = append(result, &copy)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore provides real per-ride mutual exclusion in process.
// Acquire blocks until the ride's lock is free, so lifecycle operations
// serialize deterministically in concurrency tests.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex

	AcquireCallCount int32
	ReleaseCallCount int32
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]*sync.Mutex),
	}
}

func (m *MockLockStore) AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	m.keyLock(rideID).Lock()
	return true, nil
}

func (m *MockLockStore) ReleaseRideLock(ctx context.Context, rideID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.keyLock(rideID).Unlock()
	return nil
}

func (m *MockLockStore) keyLock(rideID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[rideID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[rideID] = lock
	}
	return lock
}

// ──────────────────────────────────────────────
// MOCK TELEMETRY RECORDER
// ──────────────────────────────────────────────

// MockRecorder counts telemetry calls for assertions.
type MockRecorder struct {
	mu sync.Mutex

	BookingsCreated   int
	BookingsCancelled int
	RidesCreated      int
	Failures          map[string]int
	Durations         []string
}

// NewMockRecorder creates a new MockRecorder.
func NewMockRecorder() *MockRecorder {
	return &MockRecorder{Failures: make(map[string]int)}
}

func (m *MockRecorder) BookingCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BookingsCreated++
}

func (m *MockRecorder) BookingCancelled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BookingsCancelled++
}

func (m *MockRecorder) ValidationFailure(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failures[code]++
}

func (m *MockRecorder) RideCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RidesCreated++
}

func (m *MockRecorder) RecordDuration(name string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Durations = append(m.Durations, name)
}

// FailureCount returns the recorded failures for a rejection code.
func (m *MockRecorder) FailureCount(code string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Failures[code]
}

// Ensure mocks satisfy the interfaces they stand in for.
var (
	_ repository.RideRepository    = (*MockRideRepository)(nil)
	_ repository.BookingRepository = (*MockBookingRepository)(nil)
	_ repository.UserRepository    = (*MockUserRepository)(nil)
	_ redis.LockStoreInterface     = (*MockLockStore)(nil)
	_ telemetry.Recorder           = (*MockRecorder)(nil)
)
