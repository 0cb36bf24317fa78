package params

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coercion is the result of a textual-to-numeric coercion: the numeric
// value, whether the textual default was substituted for an absent input,
// and the failure reason when conversion produced NaN.
type Coercion struct {
	Value       float64
	UsedDefault bool
	Reason      string
}

// Coerce converts raw to a float64, substituting def when raw is absent
// (empty). The substitution happens before conversion, so an explicitly
// provided non-numeric string yields NaN rather than the default — that NaN
// propagates into rendering uncaught.
func Coerce(raw, def string) Coercion {
	src := raw
	usedDefault := false
	if src == "" {
		src = def
		usedDefault = true
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(src), 64)
	if err != nil {
		return Coercion{
			Value:       math.NaN(),
			UsedDefault: usedDefault,
			Reason:      fmt.Sprintf("cannot parse %q as number", src),
		}
	}
	return Coercion{Value: v, UsedDefault: usedDefault}
}
