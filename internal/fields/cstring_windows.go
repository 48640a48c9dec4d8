//go:build windows

package fields

import "golang.org/x/sys/windows"

func cString(p *byte) string { return windows.BytePtrToString(p) }
