package config

import (
	"context"

	lua "github.com/yuin/gopher-lua"
)

// blockedGlobals are removed from every config VM. Without them a config
// cannot run commands, touch files, load code or escape read-only tables.
var blockedGlobals = []string{
	"os", "io", "debug",
	"require", "dofile", "loadfile", "load", "loadstring", "module",
	"getmetatable", "setmetatable", "rawget", "rawset", "rawequal",
	"collectgarbage", "newproxy", "getfenv", "setfenv",
}

func sandboxLuaVM(L *lua.LState) {
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
}

// newSandboxedVM creates a sandboxed Lua state bound to ctx, so a runaway
// config stops when ctx is cancelled.
func newSandboxedVM(ctx context.Context) *lua.LState {
	L := lua.NewState()
	sandboxLuaVM(L)
	L.SetContext(ctx)
	return L
}
