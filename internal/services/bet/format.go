package bet

import (
	"fmt"
	"math/big"
	"strings"
)

// Masked stands in for any value that was not decrypted.
const Masked = "••••"

// amountDecimals is the number of ETH decimals shown.
const amountDecimals = 4

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

var errorMessages = map[uint8]string{
	0: "No error",
	1: "Betting is not active for this event",
	2: "Insufficient payment for the bet",
	3: "You have already placed a bet on this event",
	4: "Event has not been resolved yet",
	5: "No winnings available to claim",
}

// ErrorMessage maps a contract error code to its message.
func ErrorMessage(code uint8) string {
	if m, ok := errorMessages[code]; ok {
		return m
	}
	return fmt.Sprintf("Unknown error (code %d)", code)
}

// FormatAmount renders wei as ETH, truncated to four decimals with
// trailing zeros removed.
func FormatAmount(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	neg := wei.Sign() < 0
	abs := new(big.Int).Abs(wei)
	whole, frac := new(big.Int).QuoRem(abs, weiPerEther, new(big.Int))
	fs := frac.String()
	fs = strings.Repeat("0", 18-len(fs)) + fs
	fs = fs[:amountDecimals]
	fs = strings.TrimRight(fs, "0")
	out := whole.String()
	if fs != "" {
		out += "." + fs
	}
	if neg {
		out = "-" + out
	}
	return out
}

// FormatDirection renders a bet direction.
func FormatDirection(isYes bool) string {
	if isYes {
		return "YES"
	}
	return "NO"
}

// Columns returns the printable amount, shares and direction of r, masked
// when the reveal failed.
func (r RevealResult) Columns() (amount, shares, direction string) {
	if r.Err != nil {
		return Masked, Masked, Masked
	}
	return FormatAmount(new(big.Int).SetUint64(r.Reveal.AmountWei)) + " ETH",
		fmt.Sprint(r.Reveal.Shares),
		FormatDirection(r.Reveal.IsYes)
}
