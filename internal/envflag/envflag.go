// Package envflag registers command-line flags whose defaults can be
// overridden by environment variables. A flag given on the command line
// still wins over the environment.
package envflag

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"time"
)

// Set wraps a flag.FlagSet. Environment values that fail to parse are kept
// and reported by Parse instead of being silently replaced by the default.
type Set struct {
	fs     *flag.FlagSet
	lookup func(string) (string, bool)
	errs   []error
}

// New returns a Set registering on fs and reading the environment through
// lookup, normally os.LookupEnv.
func New(fs *flag.FlagSet, lookup func(string) (string, bool)) *Set {
	return &Set{fs: fs, lookup: lookup}
}

func (s *Set) env(key string) (string, bool) {
	v, ok := s.lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (s *Set) bad(key, val string, err error) {
	s.errs = append(s.errs, fmt.Errorf("%s=%q: %w", key, val, err))
}

func usage(text, key string) string {
	return text + " (env " + key + ")"
}

func (s *Set) String(name, key, def, text string) *string {
	if v, ok := s.env(key); ok {
		def = v
	}
	return s.fs.String(name, def, usage(text, key))
}

func (s *Set) Int(name, key string, def int, text string) *int {
	if v, ok := s.env(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.bad(key, v, err)
		} else {
			def = n
		}
	}
	return s.fs.Int(name, def, usage(text, key))
}

func (s *Set) Bool(name, key string, def bool, text string) *bool {
	if v, ok := s.env(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.bad(key, v, err)
		} else {
			def = b
		}
	}
	return s.fs.Bool(name, def, usage(text, key))
}

func (s *Set) Duration(name, key string, def time.Duration, text string) *time.Duration {
	if v, ok := s.env(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			s.bad(key, v, err)
		} else {
			def = d
		}
	}
	return s.fs.Duration(name, def, usage(text, key))
}

// Parse parses args. It fails if any environment value registered so far
// was malformed, or if the flag set itself rejects args.
func (s *Set) Parse(args []string) error {
	if len(s.errs) > 0 {
		return fmt.Errorf("environment: %w", errors.Join(s.errs...))
	}
	return s.fs.Parse(args)
}
