package suggestion

import (
	"fmt"
	"regexp"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// Rule is a host-registered custom trigger. Match receives the extended
// candidate string and reports whether it opens this rule's menu.
type Rule interface {
	Name() string
	Match(text string) bool
}

// RegexpRule matches candidates against a compiled regular expression.
type RegexpRule struct {
	name string
	re   *regexp.Regexp
}

// NewRegexpRule compiles pattern into a rule named name.
func NewRegexpRule(name, pattern string) (*RegexpRule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", name, err)
	}
	return &RegexpRule{name: name, re: re}, nil
}

// Name returns the rule name.
func (r *RegexpRule) Name() string { return r.name }

// Match reports whether the candidate matches the pattern.
func (r *RegexpRule) Match(text string) bool {
	return r.re.MatchString(text)
}

// LuaRule evaluates a Lua predicate. The source must define a global
// function match(text) returning a truthy value for a hit.
//
// The embedded state opens only the base, table, string, and math
// libraries; io, os, debug, and package stay closed.
type LuaRule struct {
	name string

	mu sync.Mutex
	l  *lua.LState
	fn lua.LValue
}

// NewLuaRule loads source into a fresh sandboxed state and binds its
// match function. The caller owns the rule and should Close it when the
// engine is done.
func NewLuaRule(name, source string) (*LuaRule, error) {
	l := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(l)
	lua.OpenTable(l)
	lua.OpenString(l)
	lua.OpenMath(l)

	if err := l.DoString(source); err != nil {
		l.Close()
		return nil, fmt.Errorf("rule %q: %w", name, err)
	}
	fn := l.GetGlobal("match")
	if fn.Type() != lua.LTFunction {
		l.Close()
		return nil, fmt.Errorf("rule %q: source does not define match(text)", name)
	}
	return &LuaRule{name: name, l: l, fn: fn}, nil
}

// Name returns the rule name.
func (r *LuaRule) Name() string { return r.name }

// Match calls the Lua predicate. Evaluation errors count as no match.
// The LState is not goroutine-safe, so calls are serialized here.
func (r *LuaRule) Match(text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.l == nil {
		return false
	}
	err := r.l.CallByParam(lua.P{
		Fn:      r.fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(text))
	if err != nil {
		return false
	}
	ret := r.l.Get(-1)
	r.l.Pop(1)
	return lua.LVAsBool(ret)
}

// Close releases the Lua state. The rule never matches afterwards.
func (r *LuaRule) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.l != nil {
		r.l.Close()
		r.l = nil
	}
}
