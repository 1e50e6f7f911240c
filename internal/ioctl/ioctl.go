// Package ioctl builds Linux ioctl request numbers and issues requests.
package ioctl

import (
	"fmt"
	"syscall"
	"unsafe"
)

// Request is an encoded ioctl request number, see <asm-generic/ioctl.h>.
type Request uintptr

const (
	dirWrite = 1
	dirRead  = 2
)

func encode(dir uintptr, typ, nr byte, size uintptr) Request {
	return Request(dir<<30 | size&0x3fff<<16 | uintptr(typ)<<8 | uintptr(nr))
}

// IOR is the request for reading a size byte argument from the driver (_IOR).
func IOR(typ, nr byte, size uintptr) Request {
	return encode(dirRead, typ, nr, size)
}

// IOW is the request for passing a size byte argument to the driver (_IOW).
func IOW(typ, nr byte, size uintptr) Request {
	return encode(dirWrite, typ, nr, size)
}

// Do issues req on fd; arg points at the request argument.
func Do(fd uintptr, req Request, arg unsafe.Pointer) error {
	if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, uintptr(req), uintptr(arg)); errno != 0 {
		return fmt.Errorf("ioctl %#x: %w", uintptr(req), errno)
	}
	return nil
}
