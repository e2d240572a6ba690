package common

import (
	"fmt"
	"strconv"
	"strings"
)

// SOLDecimals is the number of decimal places between SOL and lamports.
const SOLDecimals = 9

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// LamportsToSOL converts lamports to a SOL string without float precision loss.
// Example: LamportsToSOL(24981836) = "0.024981836"
func LamportsToSOL(lamports uint64) string {
	s := strconv.FormatUint(lamports, 10)

	for len(s) <= SOLDecimals {
		s = "0" + s
	}

	pos := len(s) - SOLDecimals
	return s[:pos] + "." + s[pos:]
}

// SignedLamportsToSOL formats a lamport delta, keeping the sign.
func SignedLamportsToSOL(delta int64) string {
	if delta < 0 {
		// -(MinInt64) overflows; go through uint64 directly.
		return "-" + LamportsToSOL(uint64(-(delta+1))+1)
	}
	return LamportsToSOL(uint64(delta))
}

// LamportsToSOLFloat converts lamports to SOL for display only.
func LamportsToSOLFloat(lamports int64) float64 {
	return float64(lamports) / LamportsPerSOL
}

// SOLToLamports converts a SOL string to lamports without float precision
// loss. Digits beyond nine decimals are truncated.
// Example: SOLToLamports("0.002") = 2000000
func SOLToLamports(sol string) (uint64, error) {
	sol = strings.TrimSpace(sol)
	if sol == "" {
		return 0, fmt.Errorf("empty amount")
	}

	parts := strings.Split(sol, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("invalid decimal format %q", sol)
	}

	whole := parts[0]
	if whole == "" {
		whole = "0"
	}
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}

	if !allDigits(whole) || (len(parts) == 2 && frac != "" && !allDigits(frac)) {
		return 0, fmt.Errorf("invalid amount %q", sol)
	}

	if len(frac) < SOLDecimals {
		frac += strings.Repeat("0", SOLDecimals-len(frac))
	} else {
		frac = frac[:SOLDecimals]
	}

	n, err := strconv.ParseUint(whole+frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", sol, err)
	}
	return n, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
