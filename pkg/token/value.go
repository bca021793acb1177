package token

import (
	"errors"
	"strconv"
)

// ErrEmpty indicates an empty token has no value.
var ErrEmpty = errors.New("empty token")

// Value interprets a token as a number. The assembler never does this
// itself; malformed tokens like "1.2.3" are emitted as-is and fail here.
func Value(tok string) (float64, error) {
	if tok == "" {
		return 0, ErrEmpty
	}
	return strconv.ParseFloat(tok, 64)
}
