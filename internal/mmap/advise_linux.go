//go:build linux

package mmap

import "golang.org/x/sys/unix"

// adviseSequential hints the kernel to read ahead; failures are ignored
func adviseSequential(b []byte) {
	_ = unix.Madvise(b, unix.MADV_SEQUENTIAL)
}
