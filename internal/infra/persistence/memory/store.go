// Package memory provides an in-memory implementation of the core persistence
// store used for tests, ephemeral environments, and as the transactional
// engine behind the durable backends.
package memory

import (
	"context"
	"slices"
	"sync"

	"kittycore/pkg/domain"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var (
	_ domain.PersistentStore = (*Store)(nil)
	_ domain.Transaction     = (*transaction)(nil)
)

type (
	// AccountID aliases domain.AccountID.
	AccountID = domain.AccountID
	// KittyID aliases domain.KittyID.
	KittyID = domain.KittyID
	// Kitty aliases domain.Kitty.
	Kitty = domain.Kitty
	// Parents aliases domain.Parents.
	Parents = domain.Parents
	// ParentPair aliases domain.ParentPair.
	ParentPair = domain.ParentPair
	// Balance aliases domain.Balance.
	Balance = domain.Balance
	// AccountBalance aliases domain.AccountBalance.
	AccountBalance = domain.AccountBalance
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Snapshot aliases domain.Snapshot.
	Snapshot = domain.Snapshot
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

// memoryState is the single state container owning every keyed store. All
// indices live side by side so one clone captures a consistent cut.
type memoryState struct {
	count    KittyID
	nonce    uint64
	kitties  map[KittyID]Kitty
	owners   map[KittyID]AccountID
	rosters  map[AccountID][]KittyID
	parents  map[KittyID]Parents
	children map[ParentPair][]KittyID
	siblings map[KittyID][]KittyID
	partners map[KittyID]KittyID
	accounts map[AccountID]AccountBalance
}

func newMemoryState() memoryState {
	return memoryState{
		kitties:  make(map[KittyID]Kitty),
		owners:   make(map[KittyID]AccountID),
		rosters:  make(map[AccountID][]KittyID),
		parents:  make(map[KittyID]Parents),
		children: make(map[ParentPair][]KittyID),
		siblings: make(map[KittyID][]KittyID),
		partners: make(map[KittyID]KittyID),
		accounts: make(map[AccountID]AccountBalance),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	cloned.count = s.count
	cloned.nonce = s.nonce
	for k, v := range s.kitties {
		cloned.kitties[k] = v
	}
	for k, v := range s.owners {
		cloned.owners[k] = v
	}
	for k, v := range s.rosters {
		cloned.rosters[k] = slices.Clone(v)
	}
	for k, v := range s.parents {
		cloned.parents[k] = v
	}
	for k, v := range s.children {
		cloned.children[k] = slices.Clone(v)
	}
	for k, v := range s.siblings {
		cloned.siblings[k] = slices.Clone(v)
	}
	for k, v := range s.partners {
		cloned.partners[k] = v
	}
	for k, v := range s.accounts {
		cloned.accounts[k] = v
	}
	return cloned
}

// CommitFunc receives the candidate state of a transaction after the rules
// pass. A non-nil error aborts the commit and the previous state is kept.
type CommitFunc func(ctx context.Context, snapshot Snapshot) error

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	commit CommitFunc
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
	}
}

// OnCommit installs fn as the durable write of every later transaction and
// import. fn runs under the store lock, before the candidate state becomes
// visible to readers.
func (s *Store) OnCommit(fn CommitFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit = fn
}

func (s *Store) swap(ctx context.Context, state memoryState) error {
	if s.commit != nil {
		if err := s.commit(ctx, snapshotFromMemoryState(state)); err != nil {
			return err
		}
	}
	s.state = state
	return nil
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot after
// normalizing it and checking it against the registered rules.
func (s *Store) ImportState(ctx context.Context, snapshot Snapshot) error {
	state := memoryStateFromSnapshot(migrateSnapshot(snapshot))
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, newTransactionView(&state), nil)
		if err != nil {
			return err
		}
		if res.HasBlocking() {
			return domain.RuleViolationError{Result: res}
		}
	}
	return s.swap(ctx, state)
}

// RulesEngine exposes the currently configured engine for integration points.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// transaction represents a mutation set applied to a clone of the store state.
type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
}

// RunInTransaction executes fn within a transactional copy of the store state.
// The copy replaces the committed state only when fn succeeds, no rule
// blocks and the commit hook accepts it, so a failed call leaves every index
// untouched.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	if err := s.swap(ctx, tx.state); err != nil {
		return result, err
	}
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

// helper to record and append change entries.
func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// Read helpers ---------------------------------------------------------------

func (s *Store) read() transactionView {
	return transactionView{state: &s.state}
}

// KittiesCount returns the next identifier to be assigned.
func (s *Store) KittiesCount() KittyID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().KittiesCount()
}

// GetKitty retrieves a kitty by ID from committed state.
func (s *Store) GetKitty(id KittyID) (Kitty, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().FindKitty(id)
}

// ListKitties returns all kitties ordered by ID.
func (s *Store) ListKitties() []Kitty {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ListKitties()
}

// OwnerOf returns the recorded owner of a kitty.
func (s *Store) OwnerOf(id KittyID) (AccountID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().OwnerOf(id)
}

// KittiesOf returns the roster of an account in insertion order.
func (s *Store) KittiesOf(account AccountID) []KittyID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().KittiesOf(account)
}

// ParentsOf returns the breeding pair of a kitty.
func (s *Store) ParentsOf(id KittyID) (Parents, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ParentsOf(id)
}

// ChildrenOf returns children of the ordered parent pair in breeding order.
func (s *Store) ChildrenOf(father, mother KittyID) []KittyID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ChildrenOf(father, mother)
}

// SiblingsOf returns the cached sibling list of a kitty.
func (s *Store) SiblingsOf(id KittyID) []KittyID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().SiblingsOf(id)
}

// PartnerOf returns the most recent breeding counterpart of a kitty.
func (s *Store) PartnerOf(id KittyID) (KittyID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().PartnerOf(id)
}

// Account returns the free and reserved balance of an account.
func (s *Store) Account(account AccountID) AccountBalance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().Account(account)
}
