package token

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ProgramKind names the token program that owns a mint.
type ProgramKind uint8

const (
	ProgramLegacy ProgramKind = iota
	ProgramExtension
)

func (k ProgramKind) String() string {
	switch k {
	case ProgramLegacy:
		return "legacy"
	case ProgramExtension:
		return "extension"
	}
	return fmt.Sprintf("program(%d)", uint8(k))
}

// Extension is a mint extension of the extension token program.
type Extension uint16

const (
	ExtensionTransferFeeConfig Extension = iota + 1
	ExtensionMintCloseAuthority
	ExtensionConfidentialTransferMint
	ExtensionDefaultAccountState
	ExtensionNonTransferable
	ExtensionInterestBearingConfig
	ExtensionPermanentDelegate
	ExtensionTransferHook
	ExtensionConfidentialTransferFeeConfig
	ExtensionMetadataPointer
	ExtensionTokenMetadata
)

var extensionNames = map[Extension]string{
	ExtensionTransferFeeConfig:             "TransferFeeConfig",
	ExtensionMintCloseAuthority:            "MintCloseAuthority",
	ExtensionConfidentialTransferMint:      "ConfidentialTransferMint",
	ExtensionDefaultAccountState:           "DefaultAccountState",
	ExtensionNonTransferable:               "NonTransferable",
	ExtensionInterestBearingConfig:         "InterestBearingConfig",
	ExtensionPermanentDelegate:             "PermanentDelegate",
	ExtensionTransferHook:                  "TransferHook",
	ExtensionConfidentialTransferFeeConfig: "ConfidentialTransferFeeConfig",
	ExtensionMetadataPointer:               "MetadataPointer",
	ExtensionTokenMetadata:                 "TokenMetadata",
}

func (e Extension) String() string {
	if name, ok := extensionNames[e]; ok {
		return name
	}
	return fmt.Sprintf("extension(%d)", uint16(e))
}

// ParseExtension accepts the names printed by Extension.String.
func ParseExtension(name string) (Extension, error) {
	for e, n := range extensionNames {
		if n == name {
			return e, nil
		}
	}
	return 0, fmt.Errorf("unknown mint extension %q", name)
}

// NativeMint is the wrapped native token, which pools never accept from the
// extension program.
var NativeMint = common.HexToAddress("0x0000000000000000000000000000000000000011")

type Metadata struct {
	Name   string
	Symbol string
	URI    string
}

type Mint struct {
	Address         common.Address
	Program         ProgramKind
	Decimals        uint8
	Supply          uint64
	MintAuthority   common.Address
	FreezeAuthority common.Address
	Extensions      []Extension

	// set when Extensions holds ExtensionTransferFeeConfig
	TransferFeeConfig *TransferFeeConfig
	Metadata          *Metadata
}

func (m *Mint) HasExtension(ext Extension) bool {
	for _, e := range m.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func (m *Mint) HasFreezeAuthority() bool {
	return m.FreezeAuthority != (common.Address{})
}

// EpochTransferFee returns the fee schedule in force at epoch. Mints without
// the transfer fee extension charge nothing.
func (m *Mint) EpochTransferFee(epoch uint64) TransferFee {
	if m.Program != ProgramExtension || m.TransferFeeConfig == nil || !m.HasExtension(ExtensionTransferFeeConfig) {
		return TransferFee{}
	}
	return m.TransferFeeConfig.EpochFee(epoch)
}

// IsSupportedTokenMint reports whether a pool or reward slot may hold mint.
// badged is true when the pool's config has issued a token badge for it,
// which unlocks freeze authorities and the delegating extensions.
func IsSupportedTokenMint(m *Mint, badged bool) bool {
	if m.Program == ProgramLegacy {
		return true
	}
	if m.Address == NativeMint {
		return false
	}
	if m.HasFreezeAuthority() && !badged {
		return false
	}
	for _, ext := range m.Extensions {
		switch ext {
		case ExtensionTransferFeeConfig,
			ExtensionInterestBearingConfig,
			ExtensionTokenMetadata,
			ExtensionMetadataPointer,
			ExtensionConfidentialTransferMint,
			ExtensionConfidentialTransferFeeConfig:
		case ExtensionPermanentDelegate,
			ExtensionTransferHook,
			ExtensionMintCloseAuthority,
			ExtensionDefaultAccountState:
			if !badged {
				return false
			}
		default:
			return false
		}
	}
	return true
}
