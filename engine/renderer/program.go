package renderer

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
)

// program is the implementation of the Program interface.
type program struct {
	mu sync.RWMutex

	id         uuid.UUID
	key        string
	root       *layout.Node
	visibility reflection.ShaderStage

	// table is nil until the program is linked and again after every Relink.
	table reflection.BindingTable
	// generation counts relinks so a table built from a stale root is never installed.
	generation uint64
}

// Program is a linked shader program as far as bindings are concerned: the layout its
// reflection produced and the binding table built from that layout. A renderer links programs
// when they are registered and again after every Relink.
type Program interface {
	// Key returns the key the program is registered under.
	//
	// Returns:
	//   - string: the program key
	Key() string

	// ID returns the program's unique identifier, used in resource labels.
	//
	// Returns:
	//   - uuid.UUID: the program ID
	ID() uuid.UUID

	// Root returns the program's current root layout node.
	//
	// Returns:
	//   - *layout.Node: the root node
	Root() *layout.Node

	// Visibility returns the stages the program's bindings are visible to.
	//
	// Returns:
	//   - reflection.ShaderStage: the stage mask
	Visibility() reflection.ShaderStage

	// Table returns the binding table built from the current root.
	//
	// Returns:
	//   - reflection.BindingTable: the table, nil if the program is not linked
	Table() reflection.BindingTable

	// Linked reports whether the binding table matches the current root.
	//
	// Returns:
	//   - bool: true if the program is linked
	Linked() bool

	// Relink replaces the program's layout and invalidates its binding table. The renderer
	// rebuilds the table and the program's resources on the next RegisterPrograms or Relink.
	//
	// Parameters:
	//   - root: the new root layout node
	Relink(root *layout.Node)

	snapshot() (*layout.Node, uint64)
	link(table reflection.BindingTable, generation uint64) bool
}

var _ Program = &program{}

// NewProgram creates an unlinked program.
//
// Parameters:
//   - key: the unique key to register the program under
//   - root: the program's root layout node
//   - options: a variadic list of options to configure the program
//
// Returns:
//   - Program: the new program
func NewProgram(key string, root *layout.Node, options ...ProgramOption) Program {
	p := &program{
		id:         uuid.New(),
		key:        key,
		root:       root,
		visibility: reflection.StageAll,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *program) Key() string {
	return p.key
}

func (p *program) ID() uuid.UUID {
	return p.id
}

func (p *program) Root() *layout.Node {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.root
}

func (p *program) Visibility() reflection.ShaderStage {
	return p.visibility
}

func (p *program) Table() reflection.BindingTable {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.table
}

func (p *program) Linked() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.table != nil
}

func (p *program) Relink(root *layout.Node) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.root = root
	p.table = nil
	p.generation++
}

func (p *program) snapshot() (*layout.Node, uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.root, p.generation
}

func (p *program) link(table reflection.BindingTable, generation uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if generation != p.generation {
		return false
	}
	p.table = table
	return true
}
