package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

const enumType = "enum"

// enumFlag is a string flag restricted to a fixed set of values. The first
// allowed value is the default.
type enumFlag struct {
	value   string
	allowed []string
}

func (f *enumFlag) String() string {
	return f.value
}

func (f *enumFlag) Set(s string) error {
	if !slices.Contains(f.allowed, s) {
		return fmt.Errorf("must be one of %s", strings.Join(f.allowed, ", "))
	}

	f.value = s

	return nil
}

func (f *enumFlag) Type() string {
	return enumType
}

func enumVarP(fs *pflag.FlagSet, name, shorthand string, allowed []string, usage string) {
	flag := &enumFlag{value: allowed[0], allowed: allowed}
	fs.VarP(flag, name, shorthand, fmt.Sprintf("%s (%s)", usage, strings.Join(allowed, ", ")))
}

func enumGet(fs *pflag.FlagSet, name string) (string, error) {
	f := fs.Lookup(name)
	if f == nil {
		return "", fmt.Errorf("flag %s not defined", name)
	}

	if f.Value.Type() != enumType {
		return "", fmt.Errorf("flag %s is not an enum", name)
	}

	return f.Value.String(), nil
}
