package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Container events dispatched to room.on handlers.
const (
	EventAttach  = "attach"
	EventRelease = "release"
)

// registerModules installs the room.* table into L:
//
//	room.container        the container name
//	room.on(event, fn)    registers fn for a container event
//	room.log(msg)         writes msg to the importer log
//	room.behaviors()      the behaviours attached so far
//
// The closures run on the goroutine that holds c.mu.
func registerModules(L *lua.LState, c *Container) {
	mod := L.NewTable()
	L.SetField(mod, "container", lua.LString(c.name))
	L.SetField(mod, "on", L.NewFunction(func(L *lua.LState) int {
		event := L.CheckString(1)
		fn := L.CheckFunction(2)
		c.handlers[event] = append(c.handlers[event], fn)
		return 0
	}))
	L.SetField(mod, "log", L.NewFunction(func(L *lua.LState) int {
		c.logger.Info("behavior log",
			zap.String("container", c.name),
			zap.String("message", L.CheckString(1)),
		)
		return 0
	}))
	L.SetField(mod, "behaviors", L.NewFunction(func(L *lua.LState) int {
		t := L.NewTable()
		for _, b := range c.behaviors {
			t.Append(lua.LString(b))
		}
		L.Push(t)
		return 1
	}))
	L.SetGlobal("room", mod)
}
