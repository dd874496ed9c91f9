package gameplay

import (
	"fmt"
	"os"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// defaultDamageScript is used when no rules file is configured. Scripts see
// attacker, base, multiplier and target_health and must set damage.
const defaultDamageScript = `
damage := base
if attacker == "bullet" {
	damage = int(base * multiplier + 0.5)
}
if damage < 1 {
	damage = 1
}
if damage > target_health {
	damage = target_health
}
`

type DamageInput struct {
	Attacker     string
	Base         int
	Multiplier   float64
	TargetHealth int
}

// DamageRules evaluates a tengo script that turns a hit into a damage amount.
type DamageRules struct {
	name     string
	compiled *tengo.Compiled
}

// DefaultDamageRules returns the built-in rules.
func DefaultDamageRules() *DamageRules {
	r, err := NewDamageRules("builtin", []byte(defaultDamageScript))
	if err != nil {
		panic(fmt.Sprintf("gameplay: builtin damage rules: %v", err))
	}
	return r
}

// LoadDamageRules compiles the script at path.
func LoadDamageRules(path string) (*DamageRules, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: load %s: %w", path, err)
	}
	return NewDamageRules(path, src)
}

func NewDamageRules(name string, src []byte) (*DamageRules, error) {
	script := tengo.NewScript(src)
	_ = script.Add("attacker", "")
	_ = script.Add("base", 0)
	_ = script.Add("multiplier", 1.0)
	_ = script.Add("target_health", 0)

	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("rules: compile %s: %w", name, err)
	}
	return &DamageRules{name: name, compiled: compiled}, nil
}

func (r *DamageRules) Name() string {
	if r == nil {
		return ""
	}
	return r.name
}

// Damage runs the script for one hit. The result is never negative.
func (r *DamageRules) Damage(in DamageInput) (int, error) {
	if r == nil || r.compiled == nil {
		return in.Base, nil
	}
	if in.Multiplier == 0 {
		in.Multiplier = 1
	}

	vars := []struct {
		name  string
		value any
	}{
		{"attacker", in.Attacker},
		{"base", in.Base},
		{"multiplier", in.Multiplier},
		{"target_health", in.TargetHealth},
	}
	for _, v := range vars {
		if err := r.compiled.Set(v.name, v.value); err != nil {
			return 0, fmt.Errorf("rules: %s: set %s: %w", r.name, v.name, err)
		}
	}
	if err := r.compiled.Run(); err != nil {
		return 0, fmt.Errorf("rules: %s: run: %w", r.name, err)
	}
	if !r.compiled.IsDefined("damage") {
		return 0, fmt.Errorf("rules: %s: script does not set damage", r.name)
	}

	damage := r.compiled.Get("damage").Int()
	if damage < 0 {
		damage = 0
	}
	return damage, nil
}
