// Package automation drives processor control values from Lua scripts.
//
// A script defines a global function automate(t) that receives the
// playback time in seconds and returns a table mapping parameter keys to
// new values, for example:
//
//	function automate(t)
//	  return { drive = ramp(t, 0, 4, 0.1, 0.9), circuit = "germanium" }
//	end
//
// Numbers, strings and booleans are accepted as values. The helpers
// ramp(t, t0, t1, a, b), lfo(t, hz, lo, hi) and step(t, period, ...) are
// predefined, and the global table circuits lists the circuit names.
package automation

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"

	lua "github.com/yuin/gopher-lua"

	"github.com/cwbudde/algo-fuzz/dsp/effects/fuzz"
	"github.com/cwbudde/algo-fuzz/processor"
)

const entryPoint = "automate"

// ErrNoEntryPoint is returned when a script does not define automate.
var ErrNoEntryPoint = errors.New("automation: script does not define function " + entryPoint)

// Update is one control value change produced by a script.
type Update struct {
	Key  string
	Text string
}

// Script is a loaded automation script. It is not safe for concurrent use.
type Script struct {
	state *lua.LState
	fn    *lua.LFunction
}

// Load compiles source and checks that it defines automate.
func Load(name, source string) (*Script, error) {
	L := lua.NewState()
	registerHelpers(L)

	fn, err := L.LoadString(source)
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("automation: %s: %w", name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		L.Close()
		return nil, fmt.Errorf("automation: %s: %w", name, err)
	}

	entry, ok := L.GetGlobal(entryPoint).(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, ErrNoEntryPoint
	}

	return &Script{state: L, fn: entry}, nil
}

// LoadFile reads and loads the script at path.
func LoadFile(path string) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("automation: %w", err)
	}
	return Load(path, string(src))
}

// Close releases the Lua state.
func (s *Script) Close() {
	s.state.Close()
}

// Step calls automate(t) and returns its updates sorted by key. A nil
// result means no change.
func (s *Script) Step(t float64) ([]Update, error) {
	L := s.state
	if err := L.CallByParam(lua.P{Fn: s.fn, NRet: 1, Protect: true}, lua.LNumber(t)); err != nil {
		return nil, fmt.Errorf("automation: automate(%g): %w", t, err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	switch v := ret.(type) {
	case *lua.LNilType:
		return nil, nil
	case *lua.LTable:
		return collect(v)
	default:
		return nil, fmt.Errorf("automation: automate(%g) returned %s, want table", t, ret.Type())
	}
}

// Apply runs Step and writes every update into params.
func (s *Script) Apply(params *processor.Params, t float64) error {
	updates, err := s.Step(t)
	if err != nil {
		return err
	}
	for _, u := range updates {
		if err := params.SetText(u.Key, u.Text); err != nil {
			return fmt.Errorf("automation: %w", err)
		}
	}
	return nil
}

func collect(tbl *lua.LTable) ([]Update, error) {
	var updates []Update
	var err error
	tbl.ForEach(func(k, v lua.LValue) {
		if err != nil {
			return
		}
		key, ok := k.(lua.LString)
		if !ok {
			err = fmt.Errorf("automation: parameter key %v is not a string", k)
			return
		}

		var text string
		switch val := v.(type) {
		case lua.LNumber:
			text = strconv.FormatFloat(float64(val), 'g', -1, 64)
		case lua.LString:
			text = string(val)
		case lua.LBool:
			text = strconv.FormatBool(bool(val))
		default:
			err = fmt.Errorf("automation: %s: unsupported value type %s", key, v.Type())
			return
		}
		updates = append(updates, Update{Key: string(key), Text: text})
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(updates, func(a, b Update) int { return cmp.Compare(a.Key, b.Key) })
	return updates, nil
}

func registerHelpers(L *lua.LState) {
	L.SetGlobal("ramp", L.NewFunction(luaRamp))
	L.SetGlobal("lfo", L.NewFunction(luaLFO))
	L.SetGlobal("step", L.NewFunction(luaStep))

	names := L.NewTable()
	for _, c := range fuzz.Circuits() {
		names.Append(lua.LString(c.String()))
	}
	L.SetGlobal("circuits", names)
}

// ramp(t, t0, t1, a, b) moves linearly from a at t0 to b at t1 and holds
// the end values outside.
func luaRamp(L *lua.LState) int {
	t := float64(L.CheckNumber(1))
	t0 := float64(L.CheckNumber(2))
	t1 := float64(L.CheckNumber(3))
	a := float64(L.CheckNumber(4))
	b := float64(L.CheckNumber(5))

	L.Push(lua.LNumber(Ramp(t, t0, t1, a, b)))
	return 1
}

// lfo(t, hz, lo, hi) is a sine oscillating between lo and hi.
func luaLFO(L *lua.LState) int {
	t := float64(L.CheckNumber(1))
	hz := float64(L.CheckNumber(2))
	lo := float64(L.OptNumber(3, 0))
	hi := float64(L.OptNumber(4, 1))

	L.Push(lua.LNumber(LFO(t, hz, lo, hi)))
	return 1
}

// step(t, period, v1, v2, ...) cycles through its values, holding each
// for period seconds.
func luaStep(L *lua.LState) int {
	t := float64(L.CheckNumber(1))
	period := float64(L.CheckNumber(2))
	n := L.GetTop() - 2
	if n < 1 {
		L.ArgError(3, "at least one value expected")
		return 0
	}

	L.Push(L.Get(3 + StepIndex(t, period, n)))
	return 1
}

// Ramp interpolates linearly from a at t0 to b at t1.
func Ramp(t, t0, t1, a, b float64) float64 {
	if t1 <= t0 || t >= t1 {
		if t < t0 {
			return a
		}
		return b
	}
	if t <= t0 {
		return a
	}
	return a + (b-a)*(t-t0)/(t1-t0)
}

// LFO returns a sine between lo and hi, starting at the midpoint.
func LFO(t, hz, lo, hi float64) float64 {
	return lo + (hi-lo)*0.5*(1+math.Sin(2*math.Pi*hz*t))
}

// StepIndex returns which of n values is active at time t.
func StepIndex(t, period float64, n int) int {
	if n <= 1 || period <= 0 || t <= 0 {
		return 0
	}
	return int(math.Floor(t/period)) % n
}
