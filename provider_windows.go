//go:build windows

// Memory-mapped file implementation for Windows, using the same raw
// syscall.NewLazyDLL/NewProc technique the teacher uses for LockFileEx in
// lock_windows.go rather than pulling in an extra dependency for a
// handful of kernel32 calls.
package czdb

import (
	"os"
	"syscall"
	"unsafe"
)

var (
	modkernel32          = syscall.NewLazyDLL("kernel32.dll")
	procCreateFileMapping = modkernel32.NewProc("CreateFileMappingW")
	procMapViewOfFile     = modkernel32.NewProc("MapViewOfFile")
	procUnmapViewOfFile   = modkernel32.NewProc("UnmapViewOfFile")
	procCloseHandle       = modkernel32.NewProc("CloseHandle")
)

const (
	pageReadonly    = 0x02
	fileMapRead     = 0x04
)

type mmapProvider struct {
	f        *os.File
	mapping  syscall.Handle
	data     []byte
	fileSize int64
}

func openMmapProvider(path string) (*mmapProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newErrPath(KindIO, "czdb.openMmapProvider", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, newErrPath(KindIO, "czdb.openMmapProvider", path, err)
	}
	size := info.Size()
	if size == 0 {
		f.Close()
		return nil, newErrPath(KindTruncated, "czdb.openMmapProvider", path, nil)
	}

	h := syscall.Handle(f.Fd())
	mapping, _, callErr := procCreateFileMapping.Call(
		uintptr(h), 0, pageReadonly, 0, 0, 0,
	)
	if mapping == 0 {
		f.Close()
		return nil, newErrPath(KindIO, "czdb.openMmapProvider", path, callErr)
	}

	addr, _, callErr := procMapViewOfFile.Call(
		mapping, fileMapRead, 0, 0, uintptr(size),
	)
	if addr == 0 {
		procCloseHandle.Call(mapping)
		f.Close()
		return nil, newErrPath(KindIO, "czdb.openMmapProvider", path, callErr)
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	return &mmapProvider{f: f, mapping: syscall.Handle(mapping), data: data, fileSize: size}, nil
}

func (m *mmapProvider) readExact(offset int64, dst []byte) error {
	if offset < 0 || offset+int64(len(dst)) > int64(len(m.data)) {
		return newErrOffset(KindIO, "czdb.mmapProvider.readExact", offset, nil)
	}
	copy(dst, m.data[offset:offset+int64(len(dst))])
	return nil
}

func (m *mmapProvider) asSlice(offset, length int64) ([]byte, bool) {
	if offset < 0 || length < 0 || offset+length > int64(len(m.data)) {
		return nil, false
	}
	return m.data[offset : offset+length], true
}

func (m *mmapProvider) size() int64 {
	return m.fileSize
}

func (m *mmapProvider) close() error {
	addr := uintptr(unsafe.Pointer(&m.data[0]))
	procUnmapViewOfFile.Call(addr)
	procCloseHandle.Call(uintptr(m.mapping))
	return m.f.Close()
}
