// Package pda derives the stable identities of pool records. Every identity
// is a keccak256 hash over a seed label followed by the parent identities,
// so the same inputs always address the same record.
package pda

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

func derive(seed string, parts ...[]byte) common.Hash {
	data := make([][]byte, 0, len(parts)+1)
	data = append(data, []byte(seed))
	data = append(data, parts...)
	return crypto.Keccak256Hash(data...)
}

func be32(v int32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	return b[:]
}

func be16(v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return b[:]
}

func address(h common.Hash) common.Address {
	return common.BytesToAddress(h.Bytes())
}

// Config derives a pool config identity from an operator chosen label.
func Config(label string) common.Hash {
	return derive("config", []byte(label))
}

func Pool(config common.Hash, mintA, mintB common.Address, tickSpacing uint16) common.Hash {
	return derive("yevefi", config.Bytes(), mintA.Bytes(), mintB.Bytes(), be16(tickSpacing))
}

func TickArray(pool common.Hash, startTickIndex int32) common.Hash {
	return derive("tick_array", pool.Bytes(), be32(startTickIndex))
}

func Position(positionMint common.Address) common.Hash {
	return derive("position", positionMint.Bytes())
}

// PositionMint derives the ownership token mint of a position from a name
// the owner picks, unique per pool and owner.
func PositionMint(pool common.Hash, owner common.Address, name string) common.Address {
	return address(derive("position_mint", pool.Bytes(), owner.Bytes(), []byte(name)))
}

func Vault(pool common.Hash, mint common.Address) common.Address {
	return address(derive("vault", pool.Bytes(), mint.Bytes()))
}

func RewardVault(pool common.Hash, index int) common.Address {
	return address(derive("reward_vault", pool.Bytes(), []byte{byte(index)}))
}

func TokenBadge(config common.Hash, mint common.Address) common.Hash {
	return derive("token_badge", config.Bytes(), mint.Bytes())
}

// AssociatedTokenAccount is the default account of owner for mint.
func AssociatedTokenAccount(owner, mint common.Address) common.Address {
	return address(derive("ata", owner.Bytes(), mint.Bytes()))
}

// Wallet turns a human readable name into an address.
func Wallet(name string) common.Address {
	return address(derive("wallet", []byte(name)))
}

// Mint turns a token symbol into a mint address.
func Mint(symbol string) common.Address {
	return address(derive("mint", []byte(symbol)))
}
