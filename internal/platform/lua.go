package platform

import (
	lua "github.com/yuin/gopher-lua"
)

// InjectPlatformTable creates a read-only platform table describing target
// and sets it as the global "platform" in the Lua state.
// Call it before loading any user configuration code.
func InjectPlatformTable(L *lua.LState, target Target) error {
	platformTable := L.NewTable()

	L.SetField(platformTable, "os", lua.LString(target.OS))
	L.SetField(platformTable, "arch", lua.LString(target.Arch))
	L.SetField(platformTable, "archive_ext", lua.LString(target.ArchiveExt))
	L.SetField(platformTable, "asset_name", lua.LString(target.AssetName()))
	L.SetField(platformTable, "binary_name", lua.LString(target.BinaryName()))

	L.SetField(platformTable, "is_linux", lua.LBool(target.IsLinux()))
	L.SetField(platformTable, "is_macos", lua.LBool(target.IsMacOS()))
	L.SetField(platformTable, "is_windows", lua.LBool(target.IsWindows()))
	L.SetField(platformTable, "is_arm64", lua.LBool(target.IsARM64()))
	L.SetField(platformTable, "is_apple_silicon", lua.LBool(target.IsAppleSilicon()))

	// when(condition, value) returns value if condition is true, nil otherwise
	whenFunc := L.NewFunction(func(L *lua.LState) int {
		cond := L.CheckBool(1)
		value := L.Get(2)
		if cond {
			L.Push(value)
		} else {
			L.Push(lua.LNil)
		}
		return 1
	})
	L.SetField(platformTable, "when", whenFunc)

	L.SetGlobal("platform", makeReadOnly(L, platformTable))

	return nil
}

// makeReadOnly returns a proxy table that reads through to table and
// rejects every write.
func makeReadOnly(L *lua.LState, table *lua.LTable) *lua.LTable {
	mt := L.NewTable()

	L.SetField(mt, "__index", table)
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("platform table is read-only and cannot be modified")
		return 0
	}))
	L.SetField(mt, "__metatable", lua.LString("protected"))

	proxy := L.NewTable()
	L.SetMetatable(proxy, mt)

	return proxy
}
