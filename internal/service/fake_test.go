package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/peseat/api/internal/database"
)

// fakeDB is an in-memory stand-in for the orders and daily_sequences tables.
// It models the locks the real queries take: the per-customer advisory lock
// and the daily_sequences row lock are held until the transaction ends, and
// writes made inside a transaction are undone on rollback.
type fakeDB struct {
	mu        sync.Mutex
	userLocks map[uuid.UUID]*sync.Mutex
	seqLocks  map[string]*sync.Mutex
	carts     map[uuid.UUID]database.Order // keyed by user
	orders    map[uuid.UUID]database.Order // keyed by order id
	seq       map[string]int32

	// optional failure hooks
	allocateErr error
	sealHook    func(userID uuid.UUID) error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		userLocks: map[uuid.UUID]*sync.Mutex{},
		seqLocks:  map[string]*sync.Mutex{},
		carts:     map[uuid.UUID]database.Order{},
		orders:    map[uuid.UUID]database.Order{},
		seq:       map[string]int32{},
	}
}

func (db *fakeDB) lockFor(m map[uuid.UUID]*sync.Mutex, key uuid.UUID) *sync.Mutex {
	db.mu.Lock()
	defer db.mu.Unlock()
	l, ok := m[key]
	if !ok {
		l = &sync.Mutex{}
		m[key] = l
	}
	return l
}

func (db *fakeDB) seqLock(key string) *sync.Mutex {
	db.mu.Lock()
	defer db.mu.Unlock()
	l, ok := db.seqLocks[key]
	if !ok {
		l = &sync.Mutex{}
		db.seqLocks[key] = l
	}
	return l
}

// putCart seeds an open cart for user with the given lines.
func (db *fakeDB) putCart(userID uuid.UUID, items []LineItem) database.Order {
	items, totals := RecomputeTotals(items)
	raw, _ := encodeItems(items)
	row := database.Order{
		ID:                uuid.New(),
		UserID:            userID,
		PlacementStatus:   database.PlacementStatusCart,
		FulfillmentStatus: database.FulfillmentStatusMaking,
		PaymentStatus:     database.PaymentStatusPending,
		Items:             raw,
		Subtotal:          decimalToNumeric(totals.Subtotal),
		Tax:               decimalToNumeric(totals.Tax),
		Total:             decimalToNumeric(totals.Total),
		Version:           1,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	db.mu.Lock()
	db.carts[userID] = row
	db.mu.Unlock()
	return row
}

// putOrder seeds a placed order directly.
func (db *fakeDB) putOrder(row database.Order) database.Order {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.PlacementStatus == "" {
		row.PlacementStatus = database.PlacementStatusPlaced
	}
	if row.Items == nil {
		row.Items = []byte("[]")
	}
	db.mu.Lock()
	db.orders[row.ID] = row
	db.mu.Unlock()
	return row
}

func (db *fakeDB) placedOrders() []database.Order {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []database.Order
	for _, o := range db.orders {
		if o.PlacementStatus == database.PlacementStatusPlaced {
			out = append(out, o)
		}
	}
	return out
}

// --- pool / tx ---

type fakePool struct {
	db *fakeDB
}

func (p *fakePool) Begin(ctx context.Context) (pgx.Tx, error) {
	return &fakeTx{db: p.db}, nil
}
func (p *fakePool) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (p *fakePool) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	panic("not implemented")
}
func (p *fakePool) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	panic("not implemented")
}

// fakeTx embeds pgx.Tx so unused methods panic on the nil interface.
type fakeTx struct {
	pgx.Tx
	db        *fakeDB
	held      []*sync.Mutex
	undo      []func()
	finished  bool
	committed bool
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	if tx.finished {
		return pgx.ErrTxClosed
	}
	tx.committed = true
	tx.finish()
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	if tx.finished {
		return pgx.ErrTxClosed
	}
	tx.db.mu.Lock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.db.mu.Unlock()
	tx.finish()
	return nil
}

func (tx *fakeTx) finish() {
	tx.finished = true
	for i := len(tx.held) - 1; i >= 0; i-- {
		tx.held[i].Unlock()
	}
	tx.held = nil
	tx.undo = nil
}

// --- store ---

type fakeOrderStore struct {
	db *fakeDB
	tx *fakeTx // nil outside a transaction
}

func newFakeOrderStore(db *fakeDB) NewOrderStore {
	return func(dbtx database.DBTX) OrderStore {
		tx, _ := dbtx.(*fakeTx)
		return &fakeOrderStore{db: db, tx: tx}
	}
}

func (s *fakeOrderStore) onRollback(fn func()) {
	if s.tx != nil {
		s.tx.undo = append(s.tx.undo, fn)
	}
}

func (s *fakeOrderStore) LockCustomerCheckout(ctx context.Context, userID uuid.UUID) error {
	l := s.db.lockFor(s.db.userLocks, userID)
	l.Lock()
	if s.tx != nil {
		s.tx.held = append(s.tx.held, l)
	} else {
		l.Unlock()
	}
	return nil
}

func (s *fakeOrderStore) CountActiveOrders(ctx context.Context, userID uuid.UUID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for _, o := range s.db.orders {
		if o.UserID == userID && o.PlacementStatus == database.PlacementStatusPlaced &&
			(o.FulfillmentStatus == database.FulfillmentStatusMaking || o.FulfillmentStatus == database.FulfillmentStatusReady) &&
			!o.CompletedAt.Valid {
			n++
		}
	}
	return n, nil
}

func (s *fakeOrderStore) GetCartForUpdate(ctx context.Context, userID uuid.UUID) (database.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.carts[userID]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	return c, nil
}

func (s *fakeOrderStore) AllocateDailySequence(ctx context.Context, dateKey string) (int32, error) {
	if s.db.allocateErr != nil {
		return 0, s.db.allocateErr
	}
	// Row lock on the day's counter, held until the transaction ends.
	if s.tx != nil && !s.holdsSeq(dateKey) {
		l := s.db.seqLock(dateKey)
		l.Lock()
		s.tx.held = append(s.tx.held, l)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.seq[dateKey]++
	n := s.db.seq[dateKey]
	s.onRollback(func() { s.db.seq[dateKey]-- })
	return n, nil
}

func (s *fakeOrderStore) holdsSeq(dateKey string) bool {
	l := s.db.seqLock(dateKey)
	for _, h := range s.tx.held {
		if h == l {
			return true
		}
	}
	return false
}

func (s *fakeOrderStore) SealCart(ctx context.Context, arg database.SealCartParams) (database.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var cart database.Order
	found := false
	for _, c := range s.db.carts {
		if c.ID == arg.ID {
			cart, found = c, true
			break
		}
	}
	if !found || cart.Version != arg.Version {
		return database.Order{}, pgx.ErrNoRows
	}
	if s.db.sealHook != nil {
		if err := s.db.sealHook(cart.UserID); err != nil {
			return database.Order{}, err
		}
	}

	placed := cart
	placed.PlacementStatus = database.PlacementStatusPlaced
	placed.FulfillmentStatus = database.FulfillmentStatusMaking
	placed.PaymentStatus = database.PaymentStatusPaid
	placed.OrderDayKey = arg.OrderDayKey
	placed.OrderNumber = arg.OrderNumber
	placed.Items = arg.Items
	placed.Subtotal = arg.Subtotal
	placed.Tax = arg.Tax
	placed.Total = arg.Total
	placed.PickupTime = arg.PickupTime
	placed.PlacedAt = arg.PlacedAt
	placed.Version = cart.Version + 1

	delete(s.db.carts, cart.UserID)
	s.db.orders[placed.ID] = placed
	s.onRollback(func() {
		delete(s.db.orders, placed.ID)
		s.db.carts[cart.UserID] = cart
	})
	return placed, nil
}

func (s *fakeOrderStore) GetOrderByID(ctx context.Context, id uuid.UUID) (database.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if o, ok := s.db.orders[id]; ok {
		return o, nil
	}
	for _, c := range s.db.carts {
		if c.ID == id {
			return c, nil
		}
	}
	return database.Order{}, pgx.ErrNoRows
}

func (s *fakeOrderStore) GetLastOrder(ctx context.Context, userID uuid.UUID) (database.Order, error) {
	rows, _ := s.ListOrdersByUser(ctx, database.ListOrdersByUserParams{UserID: userID, Limit: 1})
	if len(rows) == 0 {
		return database.Order{}, pgx.ErrNoRows
	}
	return rows[0], nil
}

func (s *fakeOrderStore) ListOrdersByUser(ctx context.Context, arg database.ListOrdersByUserParams) ([]database.Order, error) {
	s.db.mu.Lock()
	var rows []database.Order
	for _, o := range s.db.orders {
		if o.UserID == arg.UserID && o.PlacementStatus == database.PlacementStatusPlaced {
			rows = append(rows, o)
		}
	}
	s.db.mu.Unlock()

	sort.Slice(rows, func(i, j int) bool { return rows[i].PlacedAt.Time.After(rows[j].PlacedAt.Time) })
	if int(arg.Offset) >= len(rows) {
		return nil, nil
	}
	rows = rows[arg.Offset:]
	if arg.Limit > 0 && int(arg.Limit) < len(rows) {
		rows = rows[:arg.Limit]
	}
	return rows, nil
}

func (s *fakeOrderStore) ListQueueOrders(ctx context.Context, includeDone bool) ([]database.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var rows []database.Order
	for _, o := range s.db.orders {
		if o.PlacementStatus != database.PlacementStatusPlaced {
			continue
		}
		active := (o.FulfillmentStatus == database.FulfillmentStatusMaking ||
			o.FulfillmentStatus == database.FulfillmentStatusReady) && !o.CompletedAt.Valid
		if includeDone || active {
			rows = append(rows, o)
		}
	}
	return rows, nil
}

func (s *fakeOrderStore) UpdateFulfillmentStatus(ctx context.Context, arg database.UpdateFulfillmentStatusParams) (database.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	o, ok := s.db.orders[arg.ID]
	if !ok || o.PlacementStatus != database.PlacementStatusPlaced || o.FulfillmentStatus != arg.FulfillmentStatus_2 {
		return database.Order{}, pgx.ErrNoRows
	}
	o.FulfillmentStatus = arg.FulfillmentStatus
	if arg.FulfillmentStatus == database.FulfillmentStatusCollected {
		o.CompletedAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	}
	o.Version++
	s.db.orders[o.ID] = o
	return o, nil
}

// --- side-effect recorders ---

type recordingStats struct {
	mu    sync.Mutex
	calls []database.IncrementItemOrdersParams
	err   error
}

func (r *recordingStats) IncrementItemOrders(ctx context.Context, arg database.IncrementItemOrdersParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, arg)
	return r.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []OrderEvent
	err    error
}

func (r *recordingPublisher) Publish(ctx context.Context, ev OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}
