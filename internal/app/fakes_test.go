package app

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/cimillas/bloodbank/internal/domain"
)

// fakeStore backs every repository interface with maps. WithTx serialises
// callers and restores a snapshot when fn fails.
type fakeStore struct {
	mu     sync.Mutex
	txMu   sync.Mutex
	stock  map[string]domain.BloodStock
	donors map[int64]domain.Donor
	reqs   map[int64]domain.Request
	recips map[int64]domain.Recipient
	nextID int64

	failSetStatus error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		stock:  make(map[string]domain.BloodStock),
		donors: make(map[int64]domain.Donor),
		reqs:   make(map[int64]domain.Request),
		recips: make(map[int64]domain.Recipient),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	f.mu.Lock()
	stock := make(map[string]domain.BloodStock, len(f.stock))
	for k, v := range f.stock {
		stock[k] = v
	}
	reqs := make(map[int64]domain.Request, len(f.reqs))
	for k, v := range f.reqs {
		reqs[k] = v
	}
	f.mu.Unlock()

	if err := fn(ctx); err != nil {
		f.mu.Lock()
		f.stock = stock
		f.reqs = reqs
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeStore) ListStock(_ context.Context) ([]domain.BloodStock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.BloodStock, 0, len(f.stock))
	for _, s := range f.stock {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BloodType < out[j].BloodType })
	return out, nil
}

func (f *fakeStore) UpsertStock(_ context.Context, s domain.BloodStock) (domain.BloodStock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stock[s.BloodType] = s
	return s, nil
}

func (f *fakeStore) CreateDonor(_ context.Context, d domain.Donor) (domain.Donor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.donors {
		if existing.Email == d.Email {
			return domain.Donor{}, domain.ErrEmailTaken
		}
	}
	d.ID = f.id()
	f.donors[d.ID] = d
	return d, nil
}

func (f *fakeStore) GetDonor(_ context.Context, id int64) (domain.Donor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.donors[id]
	if !ok {
		return domain.Donor{}, domain.ErrDonorNotFound
	}
	return d, nil
}

func (f *fakeStore) FindDonorByEmail(_ context.Context, email string) (*domain.Donor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.donors {
		if d.Email == email {
			found := d
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListDonors(_ context.Context, offset, limit int) ([]domain.Donor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]domain.Donor, 0, len(f.donors))
	for _, d := range f.donors {
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return []domain.Donor{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f *fakeStore) UpdateDonor(_ context.Context, d domain.Donor) (domain.Donor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.donors[d.ID]; !ok {
		return domain.Donor{}, domain.ErrDonorNotFound
	}
	f.donors[d.ID] = d
	return d, nil
}

func (f *fakeStore) DeleteDonor(_ context.Context, id int64) (domain.Donor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.donors[id]
	if !ok {
		return domain.Donor{}, domain.ErrDonorNotFound
	}
	delete(f.donors, id)
	return d, nil
}

func (f *fakeStore) CreateRequest(_ context.Context, req domain.Request, rec domain.Recipient) (domain.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec.ID = f.id()
	f.recips[rec.ID] = rec
	req.ID = f.id()
	req.RecipientID = rec.ID
	f.reqs[req.ID] = req
	req.Recipient = &rec
	return req, nil
}

func (f *fakeStore) ListRequests(_ context.Context) ([]domain.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Request, 0, len(f.reqs))
	for _, r := range f.reqs {
		rec := f.recips[r.RecipientID]
		r.Recipient = &rec
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (f *fakeStore) GetRequestForUpdate(_ context.Context, id int64) (domain.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reqs[id]
	if !ok {
		return domain.Request{}, domain.ErrRequestNotFound
	}
	return r, nil
}

func (f *fakeStore) DecrementStock(_ context.Context, bloodType string, volume int, at time.Time) (domain.BloodStock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stock[bloodType]
	if !ok || s.Volume < volume {
		return domain.BloodStock{}, domain.ErrInsufficientStock
	}
	s.Volume -= volume
	s.UpdatedAt = at
	f.stock[bloodType] = s
	return s, nil
}

func (f *fakeStore) SetRequestStatus(_ context.Context, id int64, status domain.RequestStatus) (domain.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSetStatus != nil {
		return domain.Request{}, f.failSetStatus
	}
	r, ok := f.reqs[id]
	if !ok {
		return domain.Request{}, domain.ErrRequestNotFound
	}
	if r.Status != domain.RequestStatusPending {
		return domain.Request{}, domain.ErrRequestNotPending
	}
	r.Status = status
	f.reqs[id] = r
	return r, nil
}

func (f *fakeStore) stockOf(bloodType string) (domain.BloodStock, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stock[bloodType]
	return s, ok
}

func (f *fakeStore) requestOf(id int64) domain.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reqs[id]
}

// recordingCache mimics the generation guard of the Redis cache in memory.
type recordingCache struct {
	mu          sync.Mutex
	stored      []domain.BloodStock
	has         bool
	generation  int
	loads       int
	invalidated int
}

func (c *recordingCache) Load(context.Context) ([]domain.BloodStock, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads++
	return c.stored, strconv.Itoa(c.generation), c.has
}

func (c *recordingCache) Store(_ context.Context, generation string, stock []domain.BloodStock) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != strconv.Itoa(c.generation) {
		return
	}
	c.stored = stock
	c.has = true
}

func (c *recordingCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored = nil
	c.has = false
	c.generation++
	c.invalidated++
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []observed
}

type observed struct {
	status domain.RequestStatus
	err    error
}

func (o *recordingObserver) ObserveTransition(status domain.RequestStatus, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, observed{status: status, err: err})
}
