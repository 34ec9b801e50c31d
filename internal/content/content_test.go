package content

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/graaaaa/pomwars/internal/pom"
)

// fixedRNG returns a preset sequence of values.
type fixedRNG struct {
	values []float64
	i      int
}

func (r *fixedRNG) Float64() float64 {
	v := r.values[r.i%len(r.values)]
	r.i++
	return v
}

func writeLeaf(t *testing.T, dir string, body, meta string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "message.txt"), []byte(body), 0o644); err != nil {
		t.Fatalf("write message: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "meta.json"), []byte(meta), 0o644); err != nil {
		t.Fatalf("write meta: %v", err)
	}
}

func testLibrary(t *testing.T) *Library {
	t.Helper()
	root := t.TempDir()

	writeLeaf(t, filepath.Join(root, "normal_attacks", "sword"),
		"A swing of the sword!\n", `{"chance_for_this_action": 0.75, "damage_multiplier": 1.0}`)
	writeLeaf(t, filepath.Join(root, "normal_attacks", "~group", "arrow"),
		"An arrow flies.\n", `{"chance_for_this_action": 0.25, "damage_multiplier": 1.5}`)
	writeLeaf(t, filepath.Join(root, "normal_attacks", "~criticals", "headshot"),
		"Critical hit!\n", `{"chance_for_this_action": 1.0, "damage_multiplier": 1.0}`)
	writeLeaf(t, filepath.Join(root, "heavy_attacks", "boulder"),
		"A boulder drops.\n", `{"chance_for_this_action": 1.0, "damage_multiplier": 2.0}`)
	writeLeaf(t, filepath.Join(root, "defends", "shield"),
		"Shields up.\n", `{"chance_for_this_action": 1.0}`)
	writeLeaf(t, filepath.Join(root, "bribes", "gold"),
		"A pouch of gold.\n", `{"chance_for_this_action": 1.0}`)

	lib, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return lib
}

func TestLoad_TreeShape(t *testing.T) {
	lib := testLibrary(t)

	counts := lib.Counts()
	if counts[pom.ActionNormalAttack] != 3 {
		t.Errorf("normal attack items = %d, want 3", counts[pom.ActionNormalAttack])
	}
	if counts[pom.ActionHeavyAttack] != 1 {
		t.Errorf("heavy attack items = %d, want 1", counts[pom.ActionHeavyAttack])
	}
}

func TestPick_WeightedSelection(t *testing.T) {
	lib := testLibrary(t)

	// Weights are 0.75 (sword) then 0.25 (arrow): 0.5 lands in sword's
	// band, 0.9 in arrow's.
	it, err := lib.Pick(pom.ActionNormalAttack, false, &fixedRNG{values: []float64{0.5}})
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if it.Name != "sword" {
		t.Errorf("picked %s, want sword", it.Name)
	}

	it, err = lib.Pick(pom.ActionNormalAttack, false, &fixedRNG{values: []float64{0.9}})
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if it.Name != "arrow" {
		t.Errorf("picked %s, want arrow", it.Name)
	}
	if it.DamageMultiplier != 1.5 {
		t.Errorf("damage multiplier = %v, want 1.5", it.DamageMultiplier)
	}
}

func TestPick_CriticalPool(t *testing.T) {
	lib := testLibrary(t)

	it, err := lib.Pick(pom.ActionNormalAttack, true, &fixedRNG{values: []float64{0.1}})
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if it.Name != "headshot" || !it.Critical {
		t.Errorf("picked %+v, want the critical variant", it)
	}
}

func TestPick_EmptyPool(t *testing.T) {
	lib := testLibrary(t)

	// Defends have no critical pool.
	_, err := lib.Pick(pom.ActionDefend, true, &fixedRNG{values: []float64{0.1}})
	if !errors.Is(err, ErrNoContent) {
		t.Errorf("expected ErrNoContent, got %v", err)
	}
}

func TestPick_DefaultDamageMultiplier(t *testing.T) {
	lib := testLibrary(t)

	it, err := lib.Pick(pom.ActionDefend, false, &fixedRNG{values: []float64{0.1}})
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if it.DamageMultiplier != 1.0 {
		t.Errorf("default damage multiplier = %v, want 1.0", it.DamageMultiplier)
	}
}

func TestReload_PicksUpNewLeaves(t *testing.T) {
	root := t.TempDir()
	writeLeaf(t, filepath.Join(root, "normal_attacks", "sword"),
		"swing", `{"chance_for_this_action": 1.0}`)
	writeLeaf(t, filepath.Join(root, "heavy_attacks", "boulder"),
		"drop", `{"chance_for_this_action": 1.0}`)
	writeLeaf(t, filepath.Join(root, "defends", "shield"),
		"up", `{"chance_for_this_action": 1.0}`)
	writeLeaf(t, filepath.Join(root, "bribes", "gold"),
		"clink", `{"chance_for_this_action": 1.0}`)

	lib, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	writeLeaf(t, filepath.Join(root, "normal_attacks", "axe"),
		"chop", `{"chance_for_this_action": 1.0}`)
	if err := lib.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	if got := lib.Counts()[pom.ActionNormalAttack]; got != 2 {
		t.Errorf("normal attack items after reload = %d, want 2", got)
	}
}

func TestLoad_MissingKindDirIsEmpty(t *testing.T) {
	root := t.TempDir()
	writeLeaf(t, filepath.Join(root, "normal_attacks", "sword"),
		"swing", `{"chance_for_this_action": 1.0}`)

	lib, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	_, err = lib.Pick(pom.ActionBribe, false, &fixedRNG{values: []float64{0.1}})
	if !errors.Is(err, ErrNoContent) {
		t.Errorf("expected ErrNoContent for missing bribes dir, got %v", err)
	}
}
