package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"
)

// verifyValue — значение флага --verify: true, false или путь к CA-файлу.
type verifyValue struct {
	value string
}

var _ pflag.Value = (*verifyValue)(nil)

func (v *verifyValue) String() string {
	return v.value
}

func (v *verifyValue) Set(s string) error {
	if _, err := strconv.ParseBool(s); err == nil {
		v.value = s
		return nil
	}
	if _, err := os.Stat(s); err != nil {
		return fmt.Errorf("expected true, false or a CA certificate path: %w", err)
	}
	v.value = s
	return nil
}

func (v *verifyValue) Type() string {
	return "bool|path"
}
