package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sakemonkey/sakemonkey/internal/brew"
)

// recordFlags binds optional flags to record fields. Only flags the user
// set are applied, so a command can load an existing record and change
// just what was given.
type recordFlags struct {
	flags   *pflag.FlagSet
	setters []func() error
}

func newRecordFlags(cmd *cobra.Command) *recordFlags {
	return &recordFlags{flags: cmd.Flags()}
}

func (r *recordFlags) float(name, usage string, dst **float64) {
	v := r.flags.Float64(name, 0, usage)
	r.setters = append(r.setters, func() error {
		if r.flags.Changed(name) {
			*dst = brew.Float(*v)
		}
		return nil
	})
}

func (r *recordFlags) integer(name, usage string, dst **int) {
	v := r.flags.Int(name, 0, usage)
	r.setters = append(r.setters, func() error {
		if r.flags.Changed(name) {
			*dst = brew.Int(*v)
		}
		return nil
	})
}

// text sets *dst; an empty value clears the field.
func (r *recordFlags) text(name, usage string, dst **string) {
	v := r.flags.String(name, "", usage)
	r.setters = append(r.setters, func() error {
		if r.flags.Changed(name) {
			*dst = brew.OptionalText(*v)
		}
		return nil
	})
}

func (r *recordFlags) date(name, usage string, dst **brew.Date) {
	v := r.flags.String(name, "", usage+" (YYYY-MM-DD)")
	r.setters = append(r.setters, func() error {
		if !r.flags.Changed(name) {
			return nil
		}
		d, err := brew.ParseOptionalDate(*v)
		if err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
		*dst = d
		return nil
	})
}

func (r *recordFlags) boolean(name, usage string, dst *bool) {
	v := r.flags.Bool(name, false, usage)
	r.setters = append(r.setters, func() error {
		if r.flags.Changed(name) {
			*dst = *v
		}
		return nil
	})
}

// apply copies every changed flag into its field.
func (r *recordFlags) apply() error {
	for _, set := range r.setters {
		if err := set(); err != nil {
			return commandError(ErrCodeUsage, err)
		}
	}
	return nil
}

// usageError is a bad flag or argument detected inside RunE.
func usageError(format string, args ...any) error {
	return commandError(ErrCodeUsage, fmt.Errorf(format, args...))
}
