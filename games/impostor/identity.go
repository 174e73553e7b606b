/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package impostor

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const identitiesKey = "identities"

var ErrEmptyPool = errors.New("identity pool is empty")

//go:embed identities.json
var defaultIdentities []byte

// Pool is the read-only set of secret identities a round draws from.
type Pool struct {
	entries []string
}

func NewPool(entries []string) *Pool {
	seen := make(map[string]bool, len(entries))
	p := &Pool{entries: make([]string, 0, len(entries))}

	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		p.entries = append(p.entries, e)
	}

	return p
}

// LoadPool reads the identity list from a json, yaml or toml file under the
// "identities" key. An empty path loads the built-in list.
func LoadPool(path string) (*Pool, error) {
	v := viper.New()

	if path == "" {
		v.SetConfigType("json")
		if err := v.ReadConfig(bytes.NewReader(defaultIdentities)); err != nil {
			return nil, fmt.Errorf("read built-in identities: %w", err)
		}
	} else {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read identities from %s: %w", path, err)
		}
	}

	p := NewPool(v.GetStringSlice(identitiesKey))
	if p.Len() == 0 {
		if path == "" {
			return nil, ErrEmptyPool
		}
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyPool)
	}

	return p, nil
}

func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

// Draw returns a uniformly chosen identity, or false if there is none.
func (p *Pool) Draw(rng Rand) (string, bool) {
	if p.Len() == 0 {
		return "", false
	}
	return p.entries[rng.IntN(len(p.entries))], true
}
