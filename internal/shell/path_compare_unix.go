//go:build !windows

package shell

func samePath(a, b string) bool {
	return a == b
}
