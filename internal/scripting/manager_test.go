package scripting_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/roomkit/internal/room"
	"github.com/cory-johannsen/roomkit/internal/scripting"
)

func writeBehaviors(t testing.TB, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".lua"), []byte(src), 0644))
	}
	return dir
}

func newTestManager(t testing.TB, files map[string]string) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	mgr, err := scripting.NewManager(writeBehaviors(t, files), 0, zap.New(core))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr, logs
}

func newContainer(t testing.TB, mgr *scripting.Manager, name string) *scripting.Container {
	t.Helper()
	fc, err := mgr.NewContainer(name)
	require.NoError(t, err)
	c, ok := fc.(*scripting.Container)
	require.True(t, ok)
	return c
}

func TestNewManager_RejectsMissingDir(t *testing.T) {
	_, err := scripting.NewManager(filepath.Join(t.TempDir(), "nope"), 0, zap.NewNop())
	assert.Error(t, err)
}

func TestNewManager_RejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.lua")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	_, err := scripting.NewManager(path, 0, zap.NewNop())
	assert.Error(t, err)
}

func TestManager_NewContainer(t *testing.T) {
	mgr, _ := newTestManager(t, nil)
	c := newContainer(t, mgr, "GymFunctionContainer")
	assert.Equal(t, "GymFunctionContainer", c.Name())
	assert.NotEmpty(t, c.ID())
	assert.Equal(t, 1, mgr.Live())

	_, err := mgr.NewContainer("")
	assert.Error(t, err)
}

func TestContainer_AttachBehaviorRunsScript(t *testing.T) {
	mgr, _ := newTestManager(t, map[string]string{
		"lockdown": `
			locked = false
			room.on("attach", function(name)
				if name == behavior then locked = true end
				return room.container .. ":" .. name
			end)
		`,
	})
	c := newContainer(t, mgr, "GymFunctionContainer")

	require.NoError(t, c.AttachBehavior("lockdown"))
	assert.Equal(t, []string{"lockdown"}, c.Behaviors())

	ret, err := c.CallHook(scripting.EventAttach, lua.LString("lockdown"))
	require.NoError(t, err)
	assert.Equal(t, lua.LString("GymFunctionContainer:lockdown"), ret)
}

func TestContainer_AttachBehaviorErrors(t *testing.T) {
	mgr, _ := newTestManager(t, map[string]string{
		"broken":  `this is not lua`,
		"forever": `while true do end`,
	})
	c := newContainer(t, mgr, "GymFunctionContainer")

	tests := []struct {
		name     string
		behavior string
	}{
		{"missing script", "absent"},
		{"syntax error", "broken"},
		{"instruction limit", "forever"},
		{"empty name", ""},
		{"path traversal", "../escape"},
		{"dot dot", ".."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, c.AttachBehavior(tc.behavior))
		})
	}
	assert.Empty(t, c.Behaviors())
}

func TestContainer_CallHookMissingHandler(t *testing.T) {
	mgr, _ := newTestManager(t, nil)
	c := newContainer(t, mgr, "GymFunctionContainer")
	ret, err := c.CallHook("nothing")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestContainer_CallHookRuntimeErrorLogsWarn(t *testing.T) {
	mgr, logs := newTestManager(t, map[string]string{
		"faulty": `room.on("tick", function() error("intentional error") end)`,
	})
	c := newContainer(t, mgr, "GymFunctionContainer")
	require.NoError(t, c.AttachBehavior("faulty"))

	ret, err := c.CallHook("tick")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())
}

func TestContainer_Release(t *testing.T) {
	mgr, _ := newTestManager(t, map[string]string{
		"cleanup": `room.on("release", function() room.log("released " .. room.container) end)`,
	})
	c := newContainer(t, mgr, "GymFunctionContainer")
	require.NoError(t, c.AttachBehavior("cleanup"))

	require.NoError(t, c.Release())
	assert.Zero(t, mgr.Live())
	assert.ErrorIs(t, c.Release(), room.ErrContainerReleased)
	assert.ErrorIs(t, c.AttachBehavior("cleanup"), room.ErrContainerReleased)
	_, err := c.CallHook("release")
	assert.ErrorIs(t, err, room.ErrContainerReleased)
}

func TestContainer_ReleaseDispatchesHandlers(t *testing.T) {
	mgr, logs := newTestManager(t, map[string]string{
		"cleanup": `room.on("release", function() room.log("released " .. room.container) end)`,
	})
	c := newContainer(t, mgr, "GymFunctionContainer")
	require.NoError(t, c.AttachBehavior("cleanup"))
	require.NoError(t, c.Release())

	entries := logs.FilterMessage("behavior log").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "released GymFunctionContainer", entries[0].ContextMap()["message"])
}

func TestContainer_BehaviorsVisibleToLua(t *testing.T) {
	mgr, _ := newTestManager(t, map[string]string{
		"first":  `room.on("count", function() return #room.behaviors() end)`,
		"second": `-- nothing`,
	})
	c := newContainer(t, mgr, "GymFunctionContainer")
	require.NoError(t, c.AttachBehavior("first"))
	require.NoError(t, c.AttachBehavior("second"))

	ret, err := c.CallHook("count")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(2), ret)
}

func TestManager_CloseReleasesAll(t *testing.T) {
	mgr, _ := newTestManager(t, nil)
	a := newContainer(t, mgr, "A")
	newContainer(t, mgr, "B")
	require.NoError(t, a.Release())
	assert.Equal(t, 1, mgr.Live())

	require.NoError(t, mgr.Close())
	assert.Zero(t, mgr.Live())
}

func TestContainer_ConcurrentHooks(t *testing.T) {
	mgr, _ := newTestManager(t, map[string]string{
		"counter": `
			hits = 0
			room.on("hit", function() hits = hits + 1 return hits end)
		`,
	})
	c := newContainer(t, mgr, "GymFunctionContainer")
	require.NoError(t, c.AttachBehavior("counter"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_, err := c.CallHook("hit")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	ret, err := c.CallHook("hit")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(201), ret)
}
