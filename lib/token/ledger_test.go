package token

import (
	"errors"
	"testing"

	"github.com/ftchann/yevefi-simulator/lib/errcode"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var (
	mintA  = common.HexToAddress("0xa0")
	mintB  = common.HexToAddress("0xb0")
	alice  = common.HexToAddress("0xa11ce")
	bob    = common.HexToAddress("0xb0b")
	aliceA = common.HexToAddress("0x1a")
	bobA   = common.HexToAddress("0x2a")
	aliceB = common.HexToAddress("0x1b")
	bobB   = common.HexToAddress("0x2b")
)

func newTestLedger(t *testing.T, b Mint) *Ledger {
	t.Helper()
	l := NewLedger()
	require.NoError(t, l.CreateMint(Mint{Address: mintA, Program: ProgramLegacy}))
	b.Address = mintB
	require.NoError(t, l.CreateMint(b))
	require.NoError(t, l.OpenAccount(aliceA, mintA, alice))
	require.NoError(t, l.OpenAccount(bobA, mintA, bob))
	require.NoError(t, l.OpenAccount(aliceB, mintB, alice))
	require.NoError(t, l.OpenAccount(bobB, mintB, bob))
	require.NoError(t, l.MintTo(mintA, aliceA, 1_000))
	require.NoError(t, l.MintTo(mintB, aliceB, 1_000_000))
	return l
}

func TestLegacyTransfer(t *testing.T) {
	l := newTestLedger(t, Mint{Program: ProgramLegacy})
	require.NoError(t, l.Transfer(aliceA, bobA, 400))
	require.Equal(t, uint64(600), l.Balance(aliceA))
	require.Equal(t, uint64(400), l.Balance(bobA))

	require.ErrorIs(t, l.Transfer(aliceA, bobA, 601), errcode.InsufficientFunds)
	require.Error(t, l.Transfer(aliceA, bobB, 1))
	require.Error(t, l.Transfer(common.HexToAddress("0xdead"), bobA, 1))

	m, ok := l.Mint(mintA)
	require.True(t, ok)
	require.Equal(t, uint64(1_000), m.Supply)
}

func TestExtensionTransferWithholdsFee(t *testing.T) {
	l := newTestLedger(t, Mint{
		Program:    ProgramExtension,
		Extensions: []Extension{ExtensionTransferFeeConfig},
		TransferFeeConfig: &TransferFeeConfig{
			OlderTransferFee: TransferFee{TransferFeeBasisPoints: 0},
			NewerTransferFee: TransferFee{Epoch: 5, TransferFeeBasisPoints: 100, MaximumFee: 1_000_000},
		},
	})

	require.NoError(t, l.Transfer(aliceB, bobB, 10_000))
	require.Equal(t, uint64(10_000), l.Balance(bobB))

	l.SetEpoch(5)
	fee, err := l.TransferFee(mintB)
	require.NoError(t, err)
	require.Equal(t, uint16(100), fee.TransferFeeBasisPoints)

	require.NoError(t, l.Transfer(aliceB, bobB, 10_000))
	require.Equal(t, uint64(980_000), l.Balance(aliceB))
	require.Equal(t, uint64(19_900), l.Balance(bobB))
	acct, ok := l.Account(bobB)
	require.True(t, ok)
	require.Equal(t, uint64(100), acct.WithheldAmount)
}

func TestTransferHook(t *testing.T) {
	l := newTestLedger(t, Mint{Program: ProgramExtension, Extensions: []Extension{ExtensionTransferHook}})
	var calls int
	refuse := errors.New("refused")
	l.RegisterTransferHook(mintB, func(mint common.Address, from, to Account, amount uint64) error {
		calls++
		require.Equal(t, mintB, mint)
		if amount > 500 {
			return refuse
		}
		return nil
	})

	require.NoError(t, l.Transfer(aliceB, bobB, 500))
	cp := l.Checkpoint()
	require.ErrorIs(t, l.Transfer(aliceB, bobB, 501), refuse)
	l.Revert(cp)
	require.Equal(t, 2, calls)
	require.Equal(t, uint64(500), l.Balance(bobB))
	require.Equal(t, uint64(999_500), l.Balance(aliceB))
}

func TestNonTransferable(t *testing.T) {
	l := newTestLedger(t, Mint{Program: ProgramExtension, Extensions: []Extension{ExtensionNonTransferable}})
	require.Error(t, l.Transfer(aliceB, bobB, 1))
}

func TestRevert(t *testing.T) {
	l := newTestLedger(t, Mint{Program: ProgramLegacy})
	cp := l.Checkpoint()

	carol := common.HexToAddress("0xc")
	require.NoError(t, l.OpenAccount(carol, mintA, carol))
	require.NoError(t, l.Transfer(aliceA, carol, 10))
	require.NoError(t, l.MintTo(mintA, carol, 5))
	l.SetTokenBadge(common.Hash{1}, mintA, true)
	require.NoError(t, l.MintPositionToken(common.HexToAddress("0x99"), common.HexToAddress("0x98"), alice, nil))

	l.Revert(cp)
	_, ok := l.Account(carol)
	require.False(t, ok)
	require.Equal(t, uint64(1_000), l.Balance(aliceA))
	m, _ := l.Mint(mintA)
	require.Equal(t, uint64(1_000), m.Supply)
	require.False(t, l.IsBadged(common.Hash{1}, mintA))
	_, ok = l.Mint(common.HexToAddress("0x99"))
	require.False(t, ok)
	require.Equal(t, cp, l.Checkpoint())
}

func TestPositionToken(t *testing.T) {
	l := NewLedger()
	mint := common.HexToAddress("0x99")
	acct := common.HexToAddress("0x98")
	require.NoError(t, l.MintPositionToken(mint, acct, alice, &Metadata{Name: "Yevefi Position", Symbol: "YVP"}))
	require.Equal(t, uint64(1), l.Balance(acct))
	m, ok := l.Mint(mint)
	require.True(t, ok)
	require.Equal(t, uint64(1), m.Supply)
	require.Equal(t, "YVP", m.Metadata.Symbol)

	require.Error(t, l.MintPositionToken(mint, acct, alice, nil))
	require.Error(t, l.BurnPositionToken(mint, common.HexToAddress("0x97")))

	require.NoError(t, l.BurnPositionToken(mint, acct))
	_, ok = l.Mint(mint)
	require.False(t, ok)
	_, ok = l.Account(acct)
	require.False(t, ok)
}

func TestOpenAccount(t *testing.T) {
	l := newTestLedger(t, Mint{Program: ProgramLegacy})
	require.NoError(t, l.OpenAccount(aliceA, mintA, alice))
	require.ErrorIs(t, l.OpenAccount(aliceA, mintB, alice), errcode.AlreadyInitialized)
	require.Error(t, l.OpenAccount(common.HexToAddress("0x5"), common.HexToAddress("0x6"), alice))
	require.Len(t, l.Accounts(), 4)
}

func TestBurn(t *testing.T) {
	l := newTestLedger(t, Mint{Program: ProgramLegacy})
	require.NoError(t, l.Burn(aliceA, 100))
	require.Equal(t, uint64(900), l.Balance(aliceA))
	require.ErrorIs(t, l.Burn(aliceA, 901), errcode.InsufficientFunds)
	m, _ := l.Mint(mintA)
	require.Equal(t, uint64(900), m.Supply)
}

func TestRelease(t *testing.T) {
	l := newTestLedger(t, Mint{Program: ProgramLegacy})
	cp := l.Checkpoint()
	require.NoError(t, l.Transfer(aliceA, bobA, 10))
	l.Release(cp)
	require.Equal(t, cp, l.Checkpoint())

	l.Revert(cp)
	require.Equal(t, uint64(10), l.Balance(bobA))
}
