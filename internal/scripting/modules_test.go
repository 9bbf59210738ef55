package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/roomkit/internal/level"
	"github.com/cory-johannsen/roomkit/internal/room"
	"github.com/cory-johannsen/roomkit/internal/scripting"
)

func TestRoomModule_ContainerName(t *testing.T) {
	mgr, _ := newTestManager(t, map[string]string{
		"name": `room.on("name", function() return room.container end)`,
	})
	c := newContainer(t, mgr, "Room_Class_schoolFunctionContainer")
	require.NoError(t, c.AttachBehavior("name"))

	ret, err := c.CallHook("name")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("Room_Class_schoolFunctionContainer"), ret)
}

func TestRoomModule_LogWritesToLogger(t *testing.T) {
	mgr, logs := newTestManager(t, map[string]string{
		"greet": `room.log("hello from " .. behavior)`,
	})
	c := newContainer(t, mgr, "GymFunctionContainer")
	require.NoError(t, c.AttachBehavior("greet"))

	entries := logs.FilterMessage("behavior log").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "hello from greet", fields["message"])
	assert.Equal(t, "GymFunctionContainer", fields["container"])
}

func TestRoomModule_OnRejectsBadArguments(t *testing.T) {
	mgr, _ := newTestManager(t, map[string]string{
		"bad": `room.on("attach", 42)`,
	})
	c := newContainer(t, mgr, "GymFunctionContainer")
	assert.Error(t, c.AttachBehavior("bad"))
}

func TestRoomModule_HandlersRunInRegistrationOrder(t *testing.T) {
	mgr, _ := newTestManager(t, map[string]string{
		"order": `
			trail = ""
			room.on("step", function() trail = trail .. "a" return trail end)
			room.on("step", function() trail = trail .. "b" return trail end)
		`,
	})
	c := newContainer(t, mgr, "GymFunctionContainer")
	require.NoError(t, c.AttachBehavior("order"))

	ret, err := c.CallHook("step")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("ab"), ret)
}

func TestProperty_HookArgumentsRoundTrip(t *testing.T) {
	mgr, _ := newTestManager(t, map[string]string{
		"echo": `room.on("echo", function(x) return x end)`,
	})
	c := newContainer(t, mgr, "EchoFunctionContainer")
	require.NoError(t, c.AttachBehavior("echo"))

	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[A-Za-z0-9_]{0,24}`).Draw(t, "s")
		ret, err := c.CallHook("echo", lua.LString(s))
		if err != nil {
			t.Fatalf("CallHook: %v", err)
		}
		if ret != lua.LString(s) {
			t.Fatalf("echo returned %v, want %q", ret, s)
		}
	})
}

func TestManager_AsExtractorContainerFactory(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mgr, err := scripting.NewManager(writeBehaviors(t, map[string]string{
		"lockdown": `room.on("attach", function(b) room.log(room.container .. " got " .. b) end)`,
	}), 0, zap.New(core))
	require.NoError(t, err)
	defer mgr.Close()

	var tiles []level.TileCell
	for id := 0; id < 2; id++ {
		for x := 0; x < 2; x++ {
			tiles = append(tiles, level.TileCell{Position: level.IntVector2{X: id*4 + x}, RoomID: id, Type: 1})
		}
	}
	g := &level.Graph{
		Tiles: tiles,
		Rooms: []*level.RoomMetadata{{Category: "Gym"}, {Category: "Gym"}},
	}

	ex := room.NewExtractor(room.NewNameRegistry(), mgr, zap.New(core))
	assets, err := ex.ExtractRooms(g, room.Options{SourceName: "gym", Behaviors: []string{"lockdown"}})
	require.NoError(t, err)
	require.Len(t, assets, 2)

	c, ok := assets[0].FunctionContainer.(*scripting.Container)
	require.True(t, ok)
	assert.Same(t, c, assets[1].FunctionContainer)
	assert.Equal(t, "Room_Gym_gym0FunctionContainer", assets[0].FunctionContainerName)
	assert.Equal(t, []string{"lockdown"}, c.Behaviors())
	assert.Equal(t, 1, mgr.Live())

	entries := logs.FilterMessage("behavior log").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Room_Gym_gym0FunctionContainer got lockdown", entries[0].ContextMap()["message"])
}

func TestManager_FailedBehaviorReleasesContainer(t *testing.T) {
	mgr, err := scripting.NewManager(writeBehaviors(t, nil), 0, zap.NewNop())
	require.NoError(t, err)

	g := &level.Graph{
		Tiles: []level.TileCell{{Position: level.IntVector2{}, RoomID: 0, Type: 1}},
		Rooms: []*level.RoomMetadata{{Category: "Gym"}},
	}
	ex := room.NewExtractor(room.NewNameRegistry(), mgr, zap.NewNop())
	assets, err := ex.ExtractRooms(g, room.Options{SourceName: "gym", Behaviors: []string{"missing"}})
	require.NoError(t, err)
	assert.Empty(t, assets, "a room whose container cannot be built is skipped")
	assert.Zero(t, mgr.Live())
}
