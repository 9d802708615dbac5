package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/Carmen-Shannon/oxy-bind/common"
	"github.com/Carmen-Shannon/oxy-bind/engine/layoutcache"
	"github.com/Carmen-Shannon/oxy-bind/engine/profiler"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection"
	"github.com/Carmen-Shannon/oxy-bind/engine/reflection/layout"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-bind/engine/renderer/binding_resources"
	"github.com/Carmen-Shannon/oxy-bind/engine/writable"
)

// ErrUnknownProgram is returned for a program key that was never registered.
var ErrUnknownProgram = errors.New("unknown program")

// linked holds a registered program and the device objects built for its current table.
type linked struct {
	program   Program
	resources binding_resources.BindingResources
	layouts   map[int]backend.BindGroupLayout
	groups    map[int]backend.BindGroup
}

func (l *linked) release() {
	for _, g := range l.groups {
		g.Release()
	}
	for _, bgl := range l.layouts {
		bgl.Release()
	}
	if l.resources != nil {
		l.resources.Release()
	}
	l.groups, l.layouts, l.resources = nil, nil, nil
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu sync.Mutex

	device backend.Device
	cache  layoutcache.Cache
	stats  *profiler.Profiler

	workers     int
	computePool worker.DynamicWorkerPool

	programs map[string]*linked
}

// Renderer owns the programs of a device and the resource pools their values are written into.
//
// Registering a program builds its binding table, allocates a buffer for every buffer descriptor
// and creates one bind group layout per set. Values are then written through Write, and
// BindGroups joins the pool against the table for a draw or dispatch. A relinked program gets a
// fresh table and a fresh pool.
type Renderer interface {
	// Device returns the device resources are created on.
	//
	// Returns:
	//   - backend.Device: the device
	Device() backend.Device

	// Program retrieves a registered program.
	//
	// Parameters:
	//   - key: the program key
	//
	// Returns:
	//   - Program: the program, or nil if none is registered under key
	Program(key string) Program

	// RegisterPrograms links programs and allocates their resources. Tables are built in
	// parallel; device objects are created on the caller's goroutine. Programs already
	// registered and linked are skipped.
	//
	// Parameters:
	//   - programs: the programs to register
	//
	// Returns:
	//   - error: the joined build errors, or the first allocation error
	RegisterPrograms(programs ...Program) error

	// Relink replaces a program's layout, then rebuilds its table and resources. Values written
	// before the relink are gone.
	//
	// Parameters:
	//   - key: the program key
	//   - root: the new root layout node
	//
	// Returns:
	//   - error: ErrUnknownProgram, or a build or allocation error
	Relink(key string, root *layout.Node) error

	// Write writes a value at the root of a program's layout.
	//
	// Parameters:
	//   - key: the program key
	//   - v: the value to write
	//
	// Returns:
	//   - error: ErrUnknownProgram, or the error the value reports
	Write(key string, v writable.Writable) error

	// Resources returns a program's resource pool.
	//
	// Parameters:
	//   - key: the program key
	//
	// Returns:
	//   - binding_resources.BindingResources: the pool, or nil for an unknown program
	Resources(key string) binding_resources.BindingResources

	// BindGroups creates a bind group for every set of a program's table from the resources
	// currently in its pool, replacing the groups of the previous call.
	//
	// Parameters:
	//   - key: the program key
	//
	// Returns:
	//   - map[int]backend.BindGroup: the bind groups by set index
	//   - error: ErrUnknownProgram, binding_resources.ErrMissingResource for a slot nothing was
	//     written to, or a device error
	BindGroups(key string) (map[int]backend.BindGroup, error)

	// Stats returns the profiler uploads are counted in.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler, nil if profiling is disabled
	Stats() *profiler.Profiler

	// Release releases every program's resources and stops the build workers. The device is
	// left to its owner.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a renderer on a device.
//
// Parameters:
//   - device: the device to create resources on
//   - options: a variadic list of options to configure the renderer
//
// Returns:
//   - Renderer: the new renderer
func NewRenderer(device backend.Device, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		device:   device,
		workers:  runtime.NumCPU(),
		programs: make(map[string]*linked),
	}
	for _, opt := range options {
		opt(r)
	}

	// Created after options so WithWorkers can override the default.
	r.computePool = worker.NewDynamicWorkerPool(r.workers, 256, 1*time.Second)
	return r
}

func (r *renderer) Device() backend.Device {
	return r.device
}

func (r *renderer) Program(key string) Program {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.programs[key]; ok {
		return l.program
	}
	return nil
}

func (r *renderer) RegisterPrograms(programs ...Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []Program
	for _, p := range programs {
		if l, ok := r.programs[p.Key()]; ok {
			if l.program != p {
				return fmt.Errorf("program %q is already registered", p.Key())
			}
			if p.Linked() && l.resources != nil {
				continue
			}
		}
		pending = append(pending, p)
	}
	return r.link(pending)
}

func (r *renderer) Relink(key string, root *layout.Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.programs[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProgram, key)
	}
	l.program.Relink(root)
	return r.link([]Program{l.program})
}

// link builds the tables of programs on the compute pool, then installs each program's
// resources. The caller holds r.mu.
func (r *renderer) link(programs []Program) error {
	if len(programs) == 0 {
		return nil
	}

	type result struct {
		table      reflection.BindingTable
		generation uint64
		cached     bool
		err        error
	}
	results := make([]result, len(programs))

	var wg sync.WaitGroup
	for i, p := range programs {
		wg.Add(1)
		r.computePool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()

				root, generation := p.snapshot()
				if root == nil {
					results[i].err = fmt.Errorf("program %q: no layout", p.Key())
					return nil, results[i].err
				}
				table, cached, err := layoutcache.Build(r.cache, root, reflection.WithVisibility(p.Visibility()))
				if err != nil {
					err = fmt.Errorf("program %q: %w", p.Key(), err)
				}
				results[i] = result{table: table, generation: generation, cached: cached, err: err}
				return table, err
			},
		})
	}
	wg.Wait()

	errs := make([]error, 0, len(results))
	for _, res := range results {
		errs = append(errs, res.err)
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	for i, p := range programs {
		res := results[i]
		if !p.link(res.table, res.generation) {
			return fmt.Errorf("program %q was relinked while its table was built", p.Key())
		}
		if err := r.install(p, res.table); err != nil {
			return err
		}
		common.Logger().Debug("program linked", "program", p.Key(), "id", p.ID(), "sets", len(res.table), "cached", res.cached)
	}
	return nil
}

// install replaces a program's pool and bind group layouts with ones built for table.
func (r *renderer) install(p Program, table reflection.BindingTable) error {
	if old, ok := r.programs[p.Key()]; ok {
		old.release()
	}
	l := &linked{
		program:   p,
		resources: binding_resources.NewBindingResources(fmt.Sprintf("%s/%s", p.Key(), p.ID())),
		layouts:   make(map[int]backend.BindGroupLayout, len(table)),
	}
	r.programs[p.Key()] = l

	if _, err := l.resources.AllocateBuffers(r.device, table); err != nil {
		return err
	}
	for _, set := range table.Sets() {
		bgl, err := r.device.CreateBindGroupLayout(fmt.Sprintf("%s set %d", p.Key(), set), table[set])
		if err != nil {
			return fmt.Errorf("program %q: creating layout for set %d: %w", p.Key(), set, err)
		}
		l.layouts[set] = bgl
	}
	return nil
}

func (r *renderer) lookup(key string) (*linked, error) {
	l, ok := r.programs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProgram, key)
	}
	if !l.program.Linked() || l.resources == nil {
		return nil, fmt.Errorf("program %q is not linked", key)
	}
	return l, nil
}

func (r *renderer) Write(key string, v writable.Writable) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, err := r.lookup(key)
	if err != nil {
		return err
	}
	return writable.Write(l.program.Root(), v, &writable.UploadContext{
		Device:    r.device,
		Resources: l.resources,
		Stats:     r.stats,
	})
}

func (r *renderer) Resources(key string) binding_resources.BindingResources {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.programs[key]; ok {
		return l.resources
	}
	return nil
}

func (r *renderer) BindGroups(key string) (map[int]backend.BindGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, err := r.lookup(key)
	if err != nil {
		return nil, err
	}
	table := l.program.Table()
	groups := make(map[int]backend.BindGroup, len(table))
	release := func() {
		for _, g := range groups {
			g.Release()
		}
	}
	for _, set := range table.Sets() {
		entries, err := l.resources.Entries(set, table[set])
		if err != nil {
			release()
			return nil, fmt.Errorf("program %q: %w", key, err)
		}
		g, err := r.device.CreateBindGroup(fmt.Sprintf("%s set %d", key, set), l.layouts[set], entries)
		if err != nil {
			release()
			return nil, fmt.Errorf("program %q: set %d: %w", key, set, err)
		}
		groups[set] = g
	}

	for _, g := range l.groups {
		g.Release()
	}
	l.groups = groups
	return groups, nil
}

func (r *renderer) Stats() *profiler.Profiler {
	return r.stats
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, l := range r.programs {
		l.release()
		delete(r.programs, key)
	}
	r.computePool.Stop()
}
