//go:build unix || linux || darwin

// mmap(2) implementation for Unix platforms.
package czdb

import (
	"os"
	"syscall"
)

type mmapProvider struct {
	f        *os.File
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

	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_PRIVATE)
	if err != nil {
		f.Close()
		return nil, newErrPath(KindIO, "czdb.openMmapProvider", path, err)
	}
	return &mmapProvider{f: f, data: data, fileSize: size}, nil
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
	err := syscall.Munmap(m.data)
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	return err
}
