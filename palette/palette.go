// Package palette is a command registry: every action in the
// application is a named, documented, searchable command. Commands are
// requested from anywhere (menus, shortcuts, scripts) and consumed by
// whoever owns the tree, so execution always happens in the owner's
// cycle. Registries are plain values passed around explicitly; there is
// no process-wide command table.
package palette

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okvt/okvt"
)

// Action mutates the tree on behalf of a command.
type Action func(*okvt.Tree)

// Param is one documented command parameter. Value holds the argument
// from the most recent request and falls back to Default when unset.
type Param struct {
	Docs    string
	Default okvt.Value
	Value   okvt.Value
}

// Get returns the effective argument.
func (p Param) Get() okvt.Value {
	if p.Value != nil {
		return p.Value
	}
	return p.Default
}

// Command describes one action: UI strings, an optional shortcut,
// parameters, and the Action to invoke.
type Command struct {
	Title    string
	Docs     string
	Shortcut string
	Params   map[string]Param
	Action   Action

	pendingRuns int
}

func (c Command) clone() Command {
	out := c
	out.Params = make(map[string]Param, len(c.Params))
	for name, p := range c.Params {
		out.Params[name] = p
	}
	return out
}

// Registry holds commands by name.
type Registry struct {
	commands map[string]*Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: map[string]*Command{}}
}

// Add registers cmd under name. Registering the same name twice is a
// programming error and panics.
func (r *Registry) Add(name string, cmd Command) {
	if _, ok := r.commands[name]; ok {
		panic(fmt.Sprintf("palette: command %q already defined", name))
	}
	c := cmd.clone()
	r.commands[name] = &c
}

// Get returns a copy of the named command.
func (r *Registry) Get(name string) (Command, bool) {
	c, ok := r.commands[name]
	if !ok {
		return Command{}, false
	}
	return c.clone(), true
}

// Names returns every command name in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SearchResult pairs a command with its name.
type SearchResult struct {
	Name    string
	Command Command
}

// Search returns up to limit commands whose name, title or docs contain
// query, case-insensitively, in name order. Good docs mention synonyms;
// that is what makes search useful.
func (r *Registry) Search(query string, limit int) []SearchResult {
	query = strings.ToLower(query)
	var results []SearchResult
	for _, name := range r.Names() {
		if len(results) == limit {
			break
		}
		c := r.commands[name]
		if strings.Contains(strings.ToLower(name), query) ||
			strings.Contains(strings.ToLower(c.Title), query) ||
			strings.Contains(strings.ToLower(c.Docs), query) {
			results = append(results, SearchResult{Name: name, Command: c.clone()})
		}
	}
	return results
}

// FindShortcut returns the name of the command bound to shortcut.
func (r *Registry) FindShortcut(shortcut string) (string, bool) {
	for _, name := range r.Names() {
		if r.commands[name].Shortcut == shortcut {
			return name, true
		}
	}
	return "", false
}

// RequestRun asks for one run of the named command with its parameters
// reset to their defaults. Unknown names panic: requests originate from
// registered UI bindings.
func (r *Registry) RequestRun(name string) {
	c := r.mustGet(name)
	for pname, p := range c.Params {
		p.Value = nil
		c.Params[pname] = p
	}
	c.pendingRuns++
}

// RequestRepeat asks for one more run with whatever arguments the last
// request used.
func (r *Registry) RequestRepeat(name string) {
	r.mustGet(name).pendingRuns++
}

// RequestRunWith merges params into the command's parameters and asks
// for one run.
func (r *Registry) RequestRunWith(name string, params map[string]okvt.Value) {
	c := r.mustGet(name)
	for pname, v := range params {
		p := c.Params[pname]
		p.Value = v
		c.Params[pname] = p
	}
	c.pendingRuns++
}

// TakeRun consumes one requested run of name, returning a copy of the
// command to execute. It returns false when nothing is pending, so
// polling it every cycle is free.
func (r *Registry) TakeRun(name string) (Command, bool) {
	c, ok := r.commands[name]
	if !ok || c.pendingRuns == 0 {
		return Command{}, false
	}
	c.pendingRuns--
	return c.clone(), true
}

// RunPending invokes the Action of every command with requested runs,
// in name order, and reports how many ran. This is the tree owner's
// once-per-cycle dispatch point.
func (r *Registry) RunPending(tree *okvt.Tree) int {
	ran := 0
	for _, name := range r.Names() {
		for {
			c, ok := r.TakeRun(name)
			if !ok {
				break
			}
			if c.Action != nil {
				c.Action(tree)
			}
			ran++
		}
	}
	return ran
}

func (r *Registry) mustGet(name string) *Command {
	c, ok := r.commands[name]
	if !ok {
		panic(fmt.Sprintf("palette: no command %q", name))
	}
	return c
}
