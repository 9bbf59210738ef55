package scripting

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/roomkit/internal/room"
)

// Container is a function container backed by its own Lua state.
//
// Container is safe for concurrent use; calls into the Lua state are serialized.
type Container struct {
	mu        sync.Mutex
	id        string
	name      string
	dir       string
	limit     int
	L         *lua.LState
	handlers  map[string][]*lua.LFunction
	behaviors []string
	logger    *zap.Logger
	onRelease func(*Container)
}

var _ room.FunctionContainer = (*Container)(nil)

func newContainer(name, dir string, limit int, logger *zap.Logger) *Container {
	c := &Container{
		id:        uuid.New().String(),
		name:      name,
		dir:       dir,
		limit:     limit,
		L:         NewSandboxedState(),
		handlers:  make(map[string][]*lua.LFunction),
		behaviors: []string{},
		logger:    logger,
	}
	registerModules(c.L, c)
	return c
}

// ID returns the unique instance id.
func (c *Container) ID() string { return c.id }

// Name implements room.FunctionContainer.
func (c *Container) Name() string { return c.name }

// Behaviors returns a copy of the attached behaviour names.
func (c *Container) Behaviors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.behaviors...)
}

// AttachBehavior runs <dir>/<behavior>.lua in the container's state, then
// dispatches the attach event with the behaviour name.
//
// Precondition: behavior is a bare file stem (no path separators).
// Postcondition: on success the behaviour is recorded; on failure the
// container is left as it was before the call, apart from any globals the
// failing script managed to set.
func (c *Container) AttachBehavior(behavior string) error {
	if err := checkBehaviorName(behavior); err != nil {
		return fmt.Errorf("container %q: %w", c.name, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.L == nil {
		return fmt.Errorf("container %q: %w", c.name, room.ErrContainerReleased)
	}

	path := filepath.Join(c.dir, behavior+".lua")
	c.L.SetGlobal("behavior", lua.LString(behavior))
	if err := RunLimited(c.L, c.limit, func() error { return c.L.DoFile(path) }); err != nil {
		return fmt.Errorf("scripting: loading behavior %q for %q: %w", behavior, c.name, err)
	}
	c.behaviors = append(c.behaviors, behavior)
	c.dispatch(EventAttach, lua.LString(behavior))
	return nil
}

// CallHook dispatches event to every handler registered with room.on and
// returns the result of the last handler that succeeded. Lua runtime errors
// are logged at Warn level and never propagated.
//
// Postcondition: Returns LNil when no handler is registered.
func (c *Container) CallHook(event string, args ...lua.LValue) (lua.LValue, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.L == nil {
		return lua.LNil, fmt.Errorf("container %q: %w", c.name, room.ErrContainerReleased)
	}
	return c.dispatch(event, args...), nil
}

// dispatch must be called with c.mu held.
func (c *Container) dispatch(event string, args ...lua.LValue) lua.LValue {
	ret := lua.LValue(lua.LNil)
	for _, fn := range c.handlers[event] {
		err := RunLimited(c.L, c.limit, func() error {
			return c.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
		})
		if err != nil {
			c.logger.Warn("scripting: Lua runtime error",
				zap.String("container", c.name),
				zap.String("event", event),
				zap.Error(err),
			)
			continue
		}
		ret = c.L.Get(-1)
		c.L.Pop(1)
	}
	return ret
}

// Release dispatches the release event, then closes the Lua state.
func (c *Container) Release() error {
	c.mu.Lock()
	if c.L == nil {
		c.mu.Unlock()
		return fmt.Errorf("container %q: %w", c.name, room.ErrContainerReleased)
	}
	c.dispatch(EventRelease)
	c.L.Close()
	c.L = nil
	c.handlers = nil
	c.behaviors = nil
	onRelease := c.onRelease
	c.mu.Unlock()

	if onRelease != nil {
		onRelease(c)
	}
	return nil
}

func checkBehaviorName(behavior string) error {
	if behavior == "" {
		return fmt.Errorf("behavior name must not be empty")
	}
	if strings.ContainsAny(behavior, `/\`) || behavior == "." || behavior == ".." {
		return fmt.Errorf("behavior name %q must be a bare script name", behavior)
	}
	return nil
}
