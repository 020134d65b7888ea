package platform

import (
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestInjectPlatformTable(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		checks map[string]lua.LValue
	}{
		{
			name:   "linux",
			target: Target{OS: OSLinux, Arch: ArchX8664, ArchiveExt: ExtTarGz},
			checks: map[string]lua.LValue{
				`return platform.os`:          lua.LString("Linux"),
				`return platform.arch`:        lua.LString("x86_64"),
				`return platform.archive_ext`: lua.LString(".tar.gz"),
				`return platform.asset_name`:  lua.LString("neo4j-mcp_Linux_x86_64.tar.gz"),
				`return platform.binary_name`: lua.LString("neo4j-mcp"),
				`return platform.is_linux`:    lua.LTrue,
				`return platform.is_windows`:  lua.LFalse,
			},
		},
		{
			name:   "apple silicon",
			target: Target{OS: OSDarwin, Arch: ArchARM64, ArchiveExt: ExtTarGz},
			checks: map[string]lua.LValue{
				`return platform.is_macos`:         lua.LTrue,
				`return platform.is_arm64`:         lua.LTrue,
				`return platform.is_apple_silicon`: lua.LTrue,
			},
		},
		{
			name:   "windows",
			target: Target{OS: OSWindows, Arch: ArchX8664, ArchiveExt: ExtZip},
			checks: map[string]lua.LValue{
				`return platform.is_windows`:                     lua.LTrue,
				`return platform.binary_name`:                    lua.LString("neo4j-mcp.exe"),
				`return platform.when(platform.is_windows, "w")`: lua.LString("w"),
				`return platform.when(platform.is_linux, "l")`:   lua.LNil,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			L := lua.NewState()
			defer L.Close()

			if err := InjectPlatformTable(L, tt.target); err != nil {
				t.Fatalf("InjectPlatformTable() error = %v", err)
			}

			for code, want := range tt.checks {
				if err := L.DoString(code); err != nil {
					t.Fatalf("failed to execute %q: %v", code, err)
				}
				got := L.Get(-1)
				L.Pop(1)

				if got.Type() != want.Type() || got.String() != want.String() {
					t.Errorf("%s = %v, want %v", code, got, want)
				}
			}
		})
	}
}

func TestPlatformTable_ReadOnly(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := InjectPlatformTable(L, Target{OS: OSLinux, Arch: ArchX8664, ArchiveExt: ExtTarGz}); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	tests := []string{
		`platform.os = "Windows"`,
		`platform.new_field = true`,
		`setmetatable(platform, {})`,
	}

	for _, code := range tests {
		t.Run(code, func(t *testing.T) {
			err := L.DoString(code)
			if err == nil {
				t.Fatalf("expected error modifying platform table")
			}
			if !strings.Contains(err.Error(), "read-only") && !strings.Contains(err.Error(), "protected") {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
