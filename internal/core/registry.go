package core

import (
	"sort"
	"sync"
)

// Registry holds commands by name and alias.
type Registry struct {
	mu   sync.RWMutex
	cmds map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{cmds: map[string]Command{}}
}

// DefaultRegistry backs the package level helpers.
var DefaultRegistry = NewRegistry()

func (r *Registry) Register(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmds[cmd.Name()] = cmd
	for _, a := range cmd.Aliases() {
		r.cmds[a] = cmd
	}
}

func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.cmds[name]
	return cmd, ok
}

// All returns every command once, sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	seen := map[string]bool{}
	list := make([]Command, 0, len(r.cmds))
	for _, cmd := range r.cmds {
		if seen[cmd.Name()] {
			continue
		}
		list = append(list, cmd)
		seen[cmd.Name()] = true
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// RegisterCommand registers a command
func RegisterCommand(cmd Command) {
	DefaultRegistry.Register(cmd)
}

// GetCommand returns the command with the given name
func GetCommand(name string) (Command, bool) {
	return DefaultRegistry.Get(name)
}

// AllCommands returns all registered commands
func AllCommands() []Command {
	return DefaultRegistry.All()
}
