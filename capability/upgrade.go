package capability

import (
	"fmt"
	"strings"
)

// CostFunc computes the price of buying the next level.
type CostFunc func(level uint32) uint32

// ValueFunc computes an effect magnitude at a level.
type ValueFunc func(level uint32) uint32

// EffectType selects how an upgrade's effects combine.
type EffectType int

const (
	Additive EffectType = iota
	Multiplicative
)

func (t EffectType) String() string {
	switch t {
	case Additive:
		return "additive"
	case Multiplicative:
		return "multiplicative"
	default:
		return fmt.Sprintf("EffectType(%d)", int(t))
	}
}

// EffectTrigger names the event an effect reacts to.
type EffectTrigger int

const (
	OnClick EffectTrigger = iota
)

func (t EffectTrigger) String() string {
	if t == OnClick {
		return "click"
	}
	return fmt.Sprintf("EffectTrigger(%d)", int(t))
}

// EffectOp is the operation an effect applies.
type EffectOp int

const (
	OpAdd EffectOp = iota
	OpMultiply
	OpPrestige
)

// Effect is a single triggered modifier.
type Effect struct {
	Value   ValueFunc
	Trigger EffectTrigger
	Op      EffectOp
}

// Describe renders the effect evaluated at level.
func (e Effect) Describe(level uint32) string {
	var value string
	switch e.Op {
	case OpAdd:
		value = fmt.Sprintf("add: %d", e.eval(level))
	case OpMultiply:
		value = fmt.Sprintf("multiply: %d", e.eval(level))
	case OpPrestige:
		value = "prestige"
	default:
		value = fmt.Sprintf("op %d", int(e.Op))
	}
	return fmt.Sprintf("trigger: %s, value: %s", e.Trigger, value)
}

func (e Effect) eval(level uint32) uint32 {
	if e.Value == nil {
		return 0
	}
	return e.Value(level)
}

// Upgrade is a purchasable, levelled modifier contributed by a plugin.
//
// Cost and effect functions live in the plugin's code segment and stay
// callable only while the plugin's library is mapped.
type Upgrade struct {
	Cost        CostFunc
	Name        string
	Description string
	Effects     []Effect
	Level       uint32
	Stage       uint32
	EffectType  EffectType
}

// Kind implements Variant.
func (u *Upgrade) Kind() Kind { return KindUpgrade }

func (u *Upgrade) variant() {}

// CurrentCost returns the cost of the next level, or zero without a cost
// function.
func (u *Upgrade) CurrentCost() uint32 {
	if u.Cost == nil {
		return 0
	}
	return u.Cost(u.Level)
}

// String implements fmt.Stringer.
func (u *Upgrade) String() string {
	effects := make([]string, 0, len(u.Effects))
	for _, e := range u.Effects {
		effects = append(effects, e.Describe(u.Level))
	}
	return fmt.Sprintf("upgrade %q level=%d stage=%d cost=%d type=%s effects=[%s]",
		u.Name, u.Level, u.Stage, u.CurrentCost(), u.EffectType, strings.Join(effects, "; "))
}
