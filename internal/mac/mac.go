// Package mac нормализует MAC-адреса устройств к виду, в котором их
// хранит provd: шесть октетов в нижнем регистре через двоеточие.
package mac

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidMAC — строка не является MAC-адресом.
var ErrInvalidMAC = errors.New("invalid MAC string")

// Normalize приводит MAC-адрес к виду "00:11:22:aa:bb:cc".
//
// Принимаются группы из одной или двух hex-цифр с разделителем ':' или
// '-' (один и тот же во всей строке), либо ровно 12 hex-цифр без
// разделителя.
func Normalize(s string) (string, error) {
	groups, err := split(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidMAC, s)
	}

	octets := make([]string, len(groups))
	for i, g := range groups {
		b, err := strconv.ParseUint(g, 16, 8)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidMAC, s)
		}
		octets[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(octets, ":"), nil
}

func split(s string) ([]string, error) {
	sep := ""
	switch {
	case strings.Contains(s, ":"):
		sep = ":"
	case strings.Contains(s, "-"):
		sep = "-"
	}

	if sep == "" {
		if len(s) != 12 {
			return nil, ErrInvalidMAC
		}
		groups := make([]string, 6)
		for i := range groups {
			groups[i] = s[2*i : 2*i+2]
		}
		return groups, checkHex(groups)
	}

	groups := strings.Split(s, sep)
	if len(groups) != 6 {
		return nil, ErrInvalidMAC
	}
	for _, g := range groups {
		if len(g) < 1 || len(g) > 2 {
			return nil, ErrInvalidMAC
		}
	}
	return groups, checkHex(groups)
}

func checkHex(groups []string) error {
	for _, g := range groups {
		for _, r := range g {
			if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
				return ErrInvalidMAC
			}
		}
	}
	return nil
}
