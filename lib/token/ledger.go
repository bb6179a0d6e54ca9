package token

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ftchann/yevefi-simulator/lib/errcode"

	"github.com/ethereum/go-ethereum/common"
)

// Account is a token balance of one mint held by one owner.
type Account struct {
	Address common.Address
	Mint    common.Address
	Owner   common.Address
	Amount  uint64
	// transfer fees withheld on receipt, extension program only
	WithheldAmount uint64
}

// TransferHook runs after every transfer of a mint carrying the transfer
// hook extension. A returned error fails the transfer. Hooks run with the
// ledger locked and must not call back into it.
type TransferHook func(mint common.Address, from, to Account, amount uint64) error

// Program executes transfers for the mints it owns.
type Program interface {
	Kind() ProgramKind
	Transfer(l *Ledger, m *Mint, from, to *Account, amount uint64) error
}

type legacyProgram struct{}

func (legacyProgram) Kind() ProgramKind { return ProgramLegacy }

func (legacyProgram) Transfer(l *Ledger, _ *Mint, from, to *Account, amount uint64) error {
	if from.Amount < amount {
		return errcode.InsufficientFunds
	}
	l.save(from)
	l.save(to)
	from.Amount -= amount
	to.Amount += amount
	return nil
}

type extensionProgram struct{}

func (extensionProgram) Kind() ProgramKind { return ProgramExtension }

// Transfer withholds the epoch fee in the destination account and then runs
// the mint's hook, if any.
func (extensionProgram) Transfer(l *Ledger, m *Mint, from, to *Account, amount uint64) error {
	if m.HasExtension(ExtensionNonTransferable) {
		return fmt.Errorf("mint %s: non-transferable", m.Address)
	}
	if from.Amount < amount {
		return errcode.InsufficientFunds
	}
	fee := m.EpochTransferFee(l.epoch).CalculateFee(amount)
	l.save(from)
	l.save(to)
	from.Amount -= amount
	to.Amount += amount - fee
	to.WithheldAmount += fee

	if m.HasExtension(ExtensionTransferHook) {
		if hook, ok := l.hooks[m.Address]; ok {
			if err := hook(m.Address, *from, *to, amount); err != nil {
				return fmt.Errorf("transfer hook %s: %w", m.Address, err)
			}
		}
	}
	return nil
}

type badgeKey struct {
	config common.Hash
	mint   common.Address
}

// Ledger is an in-memory token world: mints, accounts, token badges and
// transfer hooks. Every mutation is journaled so a failed instruction can be
// rolled back to a Checkpoint.
type Ledger struct {
	mu       sync.Mutex
	epoch    uint64
	mints    map[common.Address]*Mint
	accounts map[common.Address]*Account
	badges   map[badgeKey]bool
	hooks    map[common.Address]TransferHook
	programs map[ProgramKind]Program
	journal  []func()
}

func NewLedger() *Ledger {
	return &Ledger{
		mints:    make(map[common.Address]*Mint),
		accounts: make(map[common.Address]*Account),
		badges:   make(map[badgeKey]bool),
		hooks:    make(map[common.Address]TransferHook),
		programs: map[ProgramKind]Program{
			ProgramLegacy:    legacyProgram{},
			ProgramExtension: extensionProgram{},
		},
	}
}

func (l *Ledger) SetEpoch(epoch uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.epoch = epoch
}

func (l *Ledger) Epoch() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.epoch
}

// Checkpoint marks the journal. Revert undoes every mutation after it.
func (l *Ledger) Checkpoint() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.journal)
}

func (l *Ledger) Revert(checkpoint int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.journal) - 1; i >= checkpoint; i-- {
		l.journal[i]()
	}
	l.journal = l.journal[:checkpoint]
}

// Release keeps every mutation after checkpoint and forgets how to undo
// them. Only the outermost checkpoint may be released.
func (l *Ledger) Release(checkpoint int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := checkpoint; i < len(l.journal); i++ {
		l.journal[i] = nil
	}
	l.journal = l.journal[:checkpoint]
}

// save records the current value of a so it can be restored.
func (l *Ledger) save(a *Account) {
	prev := *a
	l.journal = append(l.journal, func() { *a = prev })
}

func (l *Ledger) saveMint(m *Mint) {
	prev := *m
	l.journal = append(l.journal, func() { *m = prev })
}

func (l *Ledger) CreateMint(m Mint) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.createMint(m)
}

func (l *Ledger) createMint(m Mint) error {
	if _, ok := l.mints[m.Address]; ok {
		return fmt.Errorf("mint %s: %w", m.Address, errcode.AlreadyInitialized)
	}
	addr := m.Address
	l.mints[addr] = &m
	l.journal = append(l.journal, func() { delete(l.mints, addr) })
	return nil
}

// Mint returns a copy of the mint at addr.
func (l *Ledger) Mint(addr common.Address) (Mint, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.mints[addr]
	if !ok {
		return Mint{}, false
	}
	return *m, true
}

// TransferFee is the fee schedule addr charges at the current epoch.
func (l *Ledger) TransferFee(addr common.Address) (TransferFee, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.mints[addr]
	if !ok {
		return TransferFee{}, fmt.Errorf("mint %s: not found", addr)
	}
	return m.EpochTransferFee(l.epoch), nil
}

// OpenAccount creates an empty account, or returns nil if an account of the
// same mint and owner already lives at addr.
func (l *Ledger) OpenAccount(addr, mint, owner common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.openAccount(addr, mint, owner)
}

func (l *Ledger) openAccount(addr, mint, owner common.Address) error {
	if _, ok := l.mints[mint]; !ok {
		return fmt.Errorf("mint %s: not found", mint)
	}
	if a, ok := l.accounts[addr]; ok {
		if a.Mint != mint || a.Owner != owner {
			return fmt.Errorf("account %s: %w", addr, errcode.AlreadyInitialized)
		}
		return nil
	}
	l.accounts[addr] = &Account{Address: addr, Mint: mint, Owner: owner}
	l.journal = append(l.journal, func() { delete(l.accounts, addr) })
	return nil
}

func (l *Ledger) Account(addr common.Address) (Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[addr]
	if !ok {
		return Account{}, false
	}
	return *a, true
}

// Balance is zero for accounts that do not exist.
func (l *Ledger) Balance(addr common.Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if a, ok := l.accounts[addr]; ok {
		return a.Amount
	}
	return 0
}

// Accounts lists every account ordered by address.
func (l *Ledger) Accounts() []Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Account, 0, len(l.accounts))
	for _, a := range l.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Address.Cmp(out[j].Address) < 0
	})
	return out
}

func (l *Ledger) MintTo(mint, to common.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mintTo(mint, to, amount)
}

func (l *Ledger) mintTo(mint, to common.Address, amount uint64) error {
	m, ok := l.mints[mint]
	if !ok {
		return fmt.Errorf("mint %s: not found", mint)
	}
	a, ok := l.accounts[to]
	if !ok || a.Mint != mint {
		return fmt.Errorf("mint to %s: no %s account", to, mint)
	}
	if m.Supply+amount < m.Supply || a.Amount+amount < a.Amount {
		return fmt.Errorf("mint to %s: supply overflow", to)
	}
	l.saveMint(m)
	l.save(a)
	m.Supply += amount
	a.Amount += amount
	return nil
}

func (l *Ledger) Burn(from common.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[from]
	if !ok {
		return fmt.Errorf("burn from %s: account not found", from)
	}
	if a.Amount < amount {
		return errcode.InsufficientFunds
	}
	m := l.mints[a.Mint]
	l.saveMint(m)
	l.save(a)
	m.Supply -= amount
	a.Amount -= amount
	return nil
}

// Transfer moves amount from one account to another of the same mint through
// the program that owns the mint. On error the ledger may be partially
// changed; callers roll back with Revert.
func (l *Ledger) Transfer(from, to common.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	src, ok := l.accounts[from]
	if !ok {
		return fmt.Errorf("transfer from %s: account not found", from)
	}
	dst, ok := l.accounts[to]
	if !ok {
		return fmt.Errorf("transfer to %s: account not found", to)
	}
	if src.Mint != dst.Mint {
		return fmt.Errorf("transfer %s -> %s: mint mismatch", from, to)
	}
	m := l.mints[src.Mint]
	program, ok := l.programs[m.Program]
	if !ok {
		return fmt.Errorf("mint %s: unknown program %s", m.Address, m.Program)
	}
	if amount == 0 {
		return nil
	}
	return program.Transfer(l, m, src, dst, amount)
}

func (l *Ledger) RegisterTransferHook(mint common.Address, hook TransferHook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks[mint] = hook
}

func (l *Ledger) SetTokenBadge(config common.Hash, mint common.Address, badged bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := badgeKey{config, mint}
	prev, had := l.badges[key]
	if badged {
		l.badges[key] = true
	} else {
		delete(l.badges, key)
	}
	l.journal = append(l.journal, func() {
		if had {
			l.badges[key] = prev
		} else {
			delete(l.badges, key)
		}
	})
}

func (l *Ledger) IsBadged(config common.Hash, mint common.Address) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.badges[badgeKey{config, mint}]
}

// IsSupported reports whether pools under config may hold mint.
func (l *Ledger) IsSupported(config common.Hash, mint common.Address) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.mints[mint]
	if !ok {
		return false, fmt.Errorf("mint %s: not found", mint)
	}
	return IsSupportedTokenMint(m, l.badges[badgeKey{config, mint}]), nil
}

// MintPositionToken issues the one-of-one ownership token of a position to
// owner's account at to.
func (l *Ledger) MintPositionToken(mint, to, owner common.Address, metadata *Metadata) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.createMint(Mint{Address: mint, Program: ProgramLegacy, Metadata: metadata}); err != nil {
		return err
	}
	if err := l.openAccount(to, mint, owner); err != nil {
		return err
	}
	return l.mintTo(mint, to, 1)
}

// BurnPositionToken burns the ownership token held at from and closes both
// the account and the mint.
func (l *Ledger) BurnPositionToken(mint, from common.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[from]
	if !ok || a.Mint != mint || a.Amount != 1 {
		return fmt.Errorf("burn position token %s: not held by %s", mint, from)
	}
	m := l.mints[mint]
	delete(l.accounts, from)
	delete(l.mints, mint)
	l.journal = append(l.journal, func() {
		l.accounts[from] = a
		l.mints[mint] = m
	})
	return nil
}
