//go:build unix

package fields

import "golang.org/x/sys/unix"

func cString(p *byte) string { return unix.BytePtrToString(p) }
