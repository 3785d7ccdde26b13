package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kittycore/internal/entropy"
	"kittycore/internal/infra/persistence/memory"
	"kittycore/pkg/domain"
)

const (
	opCreate   = "create_kitty"
	opBreed    = "breed_kitty"
	opTransfer = "transfer_kitty"
	opEndow    = "endow_account"
	opRestore  = "restore_snapshot"
)

// Service is the breeding engine. Every mutating call runs in a single store
// transaction and emits its event only after the transaction commits.
type Service struct {
	store      PersistentStore
	clock      Clock
	logger     Logger
	audit      AuditRecorder
	metrics    MetricsRecorder
	tracer     Tracer
	randomness Randomness
	reserve    Balance
	events     *EventLog
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...ServiceOption) *Service {
	options := defaultServiceOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	events := options.events
	if events == nil {
		events = NewEventLog()
	}
	return &Service{
		store:      store,
		clock:      options.clock,
		logger:     options.logger,
		audit:      options.audit,
		metrics:    options.metrics,
		tracer:     options.tracer,
		randomness: options.randomness,
		reserve:    options.reserve,
		events:     events,
	}
}

// NewInMemoryService creates a service over a fresh in-memory store.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore { return s.store }

// Events returns the log receiving committed events.
func (s *Service) Events() *EventLog { return s.events }

// NewKittyReserve returns the stake reserved per new kitty.
func (s *Service) NewKittyReserve() Balance { return s.reserve }

// Create spawns a kitty with freshly derived DNA for caller.
func (s *Service) Create(ctx context.Context, caller AccountID) (KittyID, error) {
	var id KittyID
	err := s.run(ctx, opCreate, caller, &id, func(ctx context.Context) error {
		if err := requireAccounts(caller); err != nil {
			return err
		}
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			next, err := tx.NextKittyID()
			if err != nil {
				return err
			}
			dna := s.derive(tx, caller)
			if err := s.reserveStake(tx, caller); err != nil {
				return err
			}
			tx.InsertKitty(caller, Kitty{ID: next, DNA: dna})
			id = next
			return nil
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	s.events.Emit(domain.KittyCreated{Owner: caller, KittyID: id})
	return id, nil
}

// Breed derives a child of id1 and id2, both of which caller must own. The
// child's DNA takes each bit from id1 where a fresh selector has a 1 and
// from id2 elsewhere.
func (s *Service) Breed(ctx context.Context, caller AccountID, id1, id2 KittyID) (KittyID, error) {
	var child KittyID
	err := s.run(ctx, opBreed, caller, &child, func(ctx context.Context) error {
		if err := requireAccounts(caller); err != nil {
			return err
		}
		if id1 == id2 {
			return domain.ErrRequireDifferentParent
		}
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			view := tx.Snapshot()
			owners := make([]AccountID, 0, 2)
			for _, id := range []KittyID{id1, id2} {
				owner, ok := view.OwnerOf(id)
				if !ok {
					return fmt.Errorf("kitty %d: %w", id, domain.ErrKittyNotFound)
				}
				owners = append(owners, owner)
			}
			for i, id := range []KittyID{id1, id2} {
				if owners[i] != caller {
					return fmt.Errorf("kitty %d: %w", id, domain.ErrNotOwner)
				}
			}
			k1, ok := view.FindKitty(id1)
			if !ok {
				return fmt.Errorf("kitty %d: %w", id1, domain.ErrKittyNotFound)
			}
			k2, ok := view.FindKitty(id2)
			if !ok {
				return fmt.Errorf("kitty %d: %w", id2, domain.ErrKittyNotFound)
			}
			next, err := tx.NextKittyID()
			if err != nil {
				return err
			}
			tx.RecordPartner(id1, id2)
			tx.RecordPartner(id2, id1)
			tx.RecordParents(next, id1, id2)
			tx.RecordChild(id1, id2, next)
			tx.RecomputeSiblings(next)
			selector := s.derive(tx, caller)
			dna := domain.Combine(k1.DNA, k2.DNA, selector)
			if err := s.reserveStake(tx, caller); err != nil {
				return err
			}
			tx.InsertKitty(caller, Kitty{ID: next, DNA: dna})
			child = next
			return nil
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	s.events.Emit(domain.KittyCreated{Owner: caller, KittyID: child})
	return child, nil
}

// Transfer hands kitty id from caller to to. Lineage is untouched.
func (s *Service) Transfer(ctx context.Context, caller, to AccountID, id KittyID) error {
	err := s.run(ctx, opTransfer, caller, &id, func(ctx context.Context) error {
		if err := requireAccounts(caller, to); err != nil {
			return err
		}
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.TransferKitty(id, caller, to)
		})
		return err
	})
	if err != nil {
		return err
	}
	s.events.Emit(domain.KittyTransferred{From: caller, To: to, KittyID: id})
	return nil
}

// Endow credits free balance to account, as genesis configuration does.
func (s *Service) Endow(ctx context.Context, account AccountID, amount Balance) (AccountBalance, error) {
	var balance AccountBalance
	err := s.run(ctx, opEndow, account, nil, func(ctx context.Context) error {
		if err := requireAccounts(account); err != nil {
			return err
		}
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var err error
			balance, err = tx.Deposit(account, amount)
			return err
		})
		return err
	})
	return balance, err
}

// Endowment is one credit applied by EndowAll.
type Endowment struct {
	Account AccountID
	Amount  Balance
}

// GenesisActor is the audit actor of batch endowments.
const GenesisActor AccountID = "genesis"

// EndowAll credits every endowment in one transaction: either all balances
// land or none do.
func (s *Service) EndowAll(ctx context.Context, endowments []Endowment) error {
	return s.run(ctx, opEndow, GenesisActor, nil, func(ctx context.Context) error {
		for _, e := range endowments {
			if err := requireAccounts(e.Account); err != nil {
				return err
			}
		}
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			for _, e := range endowments {
				if _, err := tx.Deposit(e.Account, e.Amount); err != nil {
					return fmt.Errorf("endow %s: %w", e.Account, err)
				}
			}
			return nil
		})
		return err
	})
}

func requireAccounts(accounts ...AccountID) error {
	for _, account := range accounts {
		if account == "" {
			return domain.ErrInvalidAccount
		}
	}
	return nil
}

func (s *Service) derive(tx Transaction, caller AccountID) DNA {
	return entropy.Derive(s.randomness.RandomSeed(), caller, tx.NextNonce())
}

func (s *Service) reserveStake(tx Transaction, caller AccountID) error {
	if err := tx.Reserve(caller, s.reserve); err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			return fmt.Errorf("%w: %w", domain.ErrInsufficientStake, err)
		}
		return err
	}
	return nil
}

// run wraps fn with tracing, metrics, audit and logging. kittyID is read
// after fn returns so operations can fill it in.
func (s *Service) run(ctx context.Context, op string, actor AccountID, kittyID *KittyID, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, op)
	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, duration)
	if err != nil {
		s.recordAuditError(ctx, op, actor, duration, err)
		s.logger.Warn("operation failed", "operation", op, "actor", actor, "error", err)
		return err
	}
	var id *KittyID
	if kittyID != nil {
		v := *kittyID
		id = &v
	}
	s.recordAuditSuccess(ctx, op, actor, id, duration)
	if id != nil {
		s.logger.Info("operation committed", "operation", op, "actor", actor, "kitty_id", *id)
	} else {
		s.logger.Info("operation committed", "operation", op, "actor", actor)
	}
	return nil
}

func (s *Service) recordAuditSuccess(ctx context.Context, op string, actor AccountID, id *KittyID, duration time.Duration) {
	meta, ok := operationMeta[op]
	if !ok {
		return
	}
	s.audit.Record(ctx, AuditEntry{
		Timestamp: s.clock.Now(),
		Operation: op,
		Entity:    meta.entity,
		Action:    meta.action,
		Actor:     actor,
		KittyID:   id,
		Status:    AuditStatusSuccess,
		Duration:  duration,
	})
}

func (s *Service) recordAuditError(ctx context.Context, op string, actor AccountID, duration time.Duration, err error) {
	meta, ok := operationMeta[op]
	if !ok {
		return
	}
	s.audit.Record(ctx, AuditEntry{
		Timestamp: s.clock.Now(),
		Operation: op,
		Entity:    meta.entity,
		Action:    meta.action,
		Actor:     actor,
		Status:    AuditStatusError,
		Duration:  duration,
		Error:     err.Error(),
	})
}
