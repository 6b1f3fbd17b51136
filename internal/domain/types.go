package domain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// MilestoneScope distinguishes the two independent milestone claim tracks
type MilestoneScope string

const (
	// ScopeCampaign tracks claims against a donor's cumulative total for one campaign
	ScopeCampaign MilestoneScope = "campaign"
	// ScopeGlobal tracks claims against a donor's cumulative total across all campaigns
	ScopeGlobal MilestoneScope = "global"
)

// AuctionEscrow is the custody identity that holds a token while its listing is open.
// It is not a spendable account address; tokens move out of it only through
// auction settlement.
const AuctionEscrow = "escrow:auction"

// IsValidAddress checks whether an address is acceptable as a payout or caller
// destination. The ledger treats addresses as opaque beyond this check.
func IsValidAddress(address string) bool {
	return common.IsHexAddress(address)
}

// NormalizeAddress normalizes a hex address to its EIP-55 checksum form so that
// ledger keys are case-insensitive. Non-hex strings pass through unchanged.
func NormalizeAddress(address string) string {
	if strings.HasPrefix(address, "0x") || strings.HasPrefix(address, "0X") {
		return common.HexToAddress(address).Hex()
	}
	return address
}

// Amount is an unsigned arbitrary-precision monetary value. It is persisted as
// numeric(78,0) and carried through the API as a decimal string, so no balance
// or bid ever overflows or wraps.
type Amount struct {
	i *big.Int
}

// ZeroAmount returns the zero value
func ZeroAmount() Amount {
	return Amount{i: new(big.Int)}
}

// ParseAmount parses a base-10 amount string. Negative values, empty strings
// and non-numeric input are rejected.
func ParseAmount(s string) (Amount, error) {
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, ErrInvalidAmount
	}
	if i.Sign() < 0 {
		return Amount{}, ErrInvalidAmount
	}
	return Amount{i: i}, nil
}

// MustAmount parses a base-10 amount string and panics on invalid input.
// Intended for constants and tests.
func MustAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the canonical decimal representation
func (a Amount) String() string {
	if a.i == nil {
		return "0"
	}
	return a.i.String()
}

// IsZero reports whether the amount is zero
func (a Amount) IsZero() bool {
	return a.i == nil || a.i.Sign() == 0
}

// Add returns a + b
func (a Amount) Add(b Amount) Amount {
	return Amount{i: new(big.Int).Add(a.big(), b.big())}
}

// Sub returns a - b. The second result is false when b exceeds a; amounts are
// unsigned and never go negative.
func (a Amount) Sub(b Amount) (Amount, bool) {
	if a.Cmp(b) < 0 {
		return Amount{}, false
	}
	return Amount{i: new(big.Int).Sub(a.big(), b.big())}, true
}

// Cmp compares a against b, returning -1, 0 or 1
func (a Amount) Cmp(b Amount) int {
	return a.big().Cmp(b.big())
}

// AddBps returns a + (a * bps / 10000), floor-rounded. This is the auction
// price raise: 1000 bps raises 0.5 units to 0.55 units.
func (a Amount) AddBps(bps uint32) Amount {
	increment := new(big.Int).Mul(a.big(), big.NewInt(int64(bps)))
	increment.Div(increment, big.NewInt(10000))
	return Amount{i: new(big.Int).Add(a.big(), increment)}
}

func (a Amount) big() *big.Int {
	if a.i == nil {
		return new(big.Int)
	}
	return a.i
}
