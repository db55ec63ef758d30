package rgbinfo

import (
	"errors"
	"strconv"
	"strings"
)

// MaxHexWord is the largest value the device encodes in one field (24 bits).
const MaxHexWord = 0xFFFFFF

// EncodeHexWord formats v as lowercase hex, left-padded with '0' to minWidth digits.
// Values wider than minWidth are never truncated.
func EncodeHexWord(v uint32, minWidth int) string {
	s := strconv.FormatUint(uint64(v), 16)
	if len(s) < minWidth {
		s = strings.Repeat("0", minWidth-len(s)) + s
	}
	return s
}

// DecodeHexWord parses an unprefixed, case-insensitive hexadecimal word.
func DecodeHexWord(s string) (uint32, error) {
	if s == "" {
		return 0, errors.New("empty hex word")
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			return 0, numErr.Err
		}
		return 0, err
	}
	return uint32(v), nil
}
