package core

import "context"

func (s *Service) view(ctx context.Context, fn func(TransactionView)) error {
	return s.store.View(ctx, func(v TransactionView) error {
		fn(v)
		return nil
	})
}

// KittiesCount returns the next identifier to be assigned.
func (s *Service) KittiesCount(ctx context.Context) (KittyID, error) {
	var count KittyID
	err := s.view(ctx, func(v TransactionView) { count = v.KittiesCount() })
	return count, err
}

// Kitty looks up a kitty record.
func (s *Service) Kitty(ctx context.Context, id KittyID) (Kitty, bool, error) {
	var (
		k  Kitty
		ok bool
	)
	err := s.view(ctx, func(v TransactionView) { k, ok = v.FindKitty(id) })
	return k, ok, err
}

// OwnerOf returns the current owner of a kitty.
func (s *Service) OwnerOf(ctx context.Context, id KittyID) (AccountID, bool, error) {
	var (
		owner AccountID
		ok    bool
	)
	err := s.view(ctx, func(v TransactionView) { owner, ok = v.OwnerOf(id) })
	return owner, ok, err
}

// KittiesOf lists the kitties owned by account in acquisition order.
func (s *Service) KittiesOf(ctx context.Context, account AccountID) ([]KittyID, error) {
	var ids []KittyID
	err := s.view(ctx, func(v TransactionView) { ids = v.KittiesOf(account) })
	return ids, err
}

// ParentsOf returns the breeding pair of a kitty. Spawned kitties have none.
func (s *Service) ParentsOf(ctx context.Context, id KittyID) (Parents, bool, error) {
	var (
		p  Parents
		ok bool
	)
	err := s.view(ctx, func(v TransactionView) { p, ok = v.ParentsOf(id) })
	return p, ok, err
}

// ChildrenOf lists the children of the ordered pair (father, mother).
func (s *Service) ChildrenOf(ctx context.Context, father, mother KittyID) ([]KittyID, error) {
	var ids []KittyID
	err := s.view(ctx, func(v TransactionView) { ids = v.ChildrenOf(father, mother) })
	return ids, err
}

// SiblingsOf returns the sibling list cached when id was born.
func (s *Service) SiblingsOf(ctx context.Context, id KittyID) ([]KittyID, error) {
	var ids []KittyID
	err := s.view(ctx, func(v TransactionView) { ids = v.SiblingsOf(id) })
	return ids, err
}

// PartnerOf returns the most recent breeding counterpart of id.
func (s *Service) PartnerOf(ctx context.Context, id KittyID) (KittyID, bool, error) {
	var (
		p  KittyID
		ok bool
	)
	err := s.view(ctx, func(v TransactionView) { p, ok = v.PartnerOf(id) })
	return p, ok, err
}

// Account returns the free and reserved balance of account.
func (s *Service) Account(ctx context.Context, account AccountID) (AccountBalance, error) {
	var bal AccountBalance
	err := s.view(ctx, func(v TransactionView) { bal = v.Account(account) })
	return bal, err
}
