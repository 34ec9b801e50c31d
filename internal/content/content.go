// Package content loads attack, defend, and bribe flavor content from disk.
// Loading happens at startup (and on change, via Watch); picks never touch
// the filesystem.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/graaaaa/pomwars/internal/pom"
)

// Directory names under the content root, one per action kind.
const (
	dirNormalAttacks = "normal_attacks"
	dirHeavyAttacks  = "heavy_attacks"
	dirDefends       = "defends"
	dirBribes        = "bribes"

	// criticalsDir marks the grouping folder holding critical variants.
	criticalsDir = "~criticals"

	messageFile = "message.txt"
	metaFile    = "meta.json"
)

// ErrNoContent is returned when a pick has no candidates.
var ErrNoContent = errors.New("content: no candidates")

// Item is one flavor variant.
type Item struct {
	Name             string // leaf directory name, recorded on actions
	Body             string // markdown message body
	Chance           float64
	DamageMultiplier float64
	Critical         bool
}

type meta struct {
	Chance           float64  `json:"chance_for_this_action"`
	DamageMultiplier *float64 `json:"damage_multiplier"`
}

// set holds the normal and critical pools for one action kind.
type set struct {
	normal   []Item
	critical []Item
}

// Library is the in-memory content index. Safe for concurrent use; Reload
// swaps the whole index atomically.
type Library struct {
	root string

	mu   sync.RWMutex
	sets map[pom.ActionType]*set
}

// Load reads the content tree rooted at root.
func Load(root string) (*Library, error) {
	l := &Library{root: root}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload re-reads the tree from disk and swaps the index in one step.
func (l *Library) Reload() error {
	sets := make(map[pom.ActionType]*set)

	for dir, kind := range map[string]pom.ActionType{
		dirNormalAttacks: pom.ActionNormalAttack,
		dirHeavyAttacks:  pom.ActionHeavyAttack,
		dirDefends:       pom.ActionDefend,
		dirBribes:        pom.ActionBribe,
	} {
		s, err := loadSet(filepath.Join(l.root, dir))
		if err != nil {
			return fmt.Errorf("load %s: %w", dir, err)
		}
		sets[kind] = s
	}

	l.mu.Lock()
	l.sets = sets
	l.mu.Unlock()
	return nil
}

// loadSet walks one kind's tree. A leaf directory contains message.txt and
// meta.json; directories prefixed with "~" group leaves without being leaves
// themselves, and anything under "~criticals" goes into the critical pool.
func loadSet(root string) (*set, error) {
	s := &set{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}

		body, err := os.ReadFile(filepath.Join(path, messageFile))
		if errors.Is(err, fs.ErrNotExist) {
			return nil // grouping folder
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		metaRaw, err := os.ReadFile(filepath.Join(path, metaFile))
		if err != nil {
			return fmt.Errorf("read meta for %s: %w", path, err)
		}
		var m meta
		if err := json.Unmarshal(metaRaw, &m); err != nil {
			return fmt.Errorf("parse meta for %s: %w", path, err)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		item := Item{
			Name:             d.Name(),
			Body:             strings.TrimRight(string(body), "\n"),
			Chance:           m.Chance,
			DamageMultiplier: 1.0,
			Critical:         underCriticals(rel),
		}
		if m.DamageMultiplier != nil {
			item.DamageMultiplier = *m.DamageMultiplier
		}

		if item.Critical {
			s.critical = append(s.critical, item)
		} else {
			s.normal = append(s.normal, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s, nil
}

func underCriticals(rel string) bool {
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part == criticalsDir {
			return true
		}
	}
	return false
}

// rng is the randomness a pick needs.
type rng interface {
	Float64() float64
}

// Pick selects a variant for the given kind, weighted by each item's
// chance_for_this_action. critical selects from the critical pool.
func (l *Library) Pick(kind pom.ActionType, critical bool, r rng) (Item, error) {
	l.mu.RLock()
	s := l.sets[kind]
	l.mu.RUnlock()

	if s == nil {
		return Item{}, fmt.Errorf("%w: kind %s", ErrNoContent, kind)
	}
	pool := s.normal
	if critical {
		pool = s.critical
	}
	return pickWeighted(pool, r)
}

// pickWeighted walks cumulative weights once. Items with non-positive
// chances are never selected unless the whole pool is weightless, in which
// case selection is uniform.
func pickWeighted(pool []Item, r rng) (Item, error) {
	if len(pool) == 0 {
		return Item{}, ErrNoContent
	}

	total := 0.0
	for _, it := range pool {
		if it.Chance > 0 {
			total += it.Chance
		}
	}
	if total <= 0 {
		return pool[int(r.Float64()*float64(len(pool)))%len(pool)], nil
	}

	target := r.Float64() * total
	acc := 0.0
	for _, it := range pool {
		if it.Chance <= 0 {
			continue
		}
		acc += it.Chance
		if target < acc {
			return it, nil
		}
	}
	return pool[len(pool)-1], nil
}

// Counts reports pool sizes for logging at startup.
func (l *Library) Counts() map[pom.ActionType]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[pom.ActionType]int, len(l.sets))
	for kind, s := range l.sets {
		out[kind] = len(s.normal) + len(s.critical)
	}
	return out
}
