// Package mocks provides hand-rolled testify mocks for the interfaces of
// the application, for use in unit tests of the packages depending on them.
package mocks

import (
	"io/fs"
	"os"

	"github.com/KernelPryanic/fs-manager/internal/schema"
	"github.com/stretchr/testify/mock"
)

// Backend is a mock implementation of [schema.Backend].
type Backend struct {
	mock.Mock
}

var _ schema.Backend = (*Backend)(nil)

// Create mocks the corresponding [schema.Backend] method.
func (m *Backend) Create(path string, kind schema.Kind, mode fs.FileMode) error {
	args := m.Called(path, kind, mode)

	return args.Error(0)
}

// CreateParents mocks the corresponding [schema.Backend] method.
func (m *Backend) CreateParents(path string, mode fs.FileMode) error {
	args := m.Called(path, mode)

	return args.Error(0)
}

// Remove mocks the corresponding [schema.Backend] method.
func (m *Backend) Remove(path string) error {
	args := m.Called(path)

	return args.Error(0)
}

// RemoveAll mocks the corresponding [schema.Backend] method.
func (m *Backend) RemoveAll(path string) error {
	args := m.Called(path)

	return args.Error(0)
}

// Rename mocks the corresponding [schema.Backend] method.
func (m *Backend) Rename(oldPath string, newPath string) error {
	args := m.Called(oldPath, newPath)

	return args.Error(0)
}

// Chmod mocks the corresponding [schema.Backend] method.
func (m *Backend) Chmod(path string, mode fs.FileMode) error {
	args := m.Called(path, mode)

	return args.Error(0)
}

// CopyFile mocks the corresponding [schema.Backend] method.
func (m *Backend) CopyFile(srcPath string, dstPath string, mode fs.FileMode) error {
	args := m.Called(srcPath, dstPath, mode)

	return args.Error(0)
}

// CopyTree mocks the corresponding [schema.Backend] method.
func (m *Backend) CopyTree(srcPath string, dstPath string) error {
	args := m.Called(srcPath, dstPath)

	return args.Error(0)
}

// OpenFile mocks the corresponding [schema.Backend] method.
func (m *Backend) OpenFile(path string, flag int, mode fs.FileMode) (*os.File, error) {
	args := m.Called(path, flag, mode)

	var f *os.File
	if args.Get(0) != nil {
		f = args.Get(0).(*os.File)
	}

	return f, args.Error(1)
}

// ReadFile mocks the corresponding [schema.Backend] method.
func (m *Backend) ReadFile(path string) ([]byte, error) {
	args := m.Called(path)

	var data []byte
	if args.Get(0) != nil {
		data = args.Get(0).([]byte)
	}

	return data, args.Error(1)
}

// WriteFile mocks the corresponding [schema.Backend] method.
func (m *Backend) WriteFile(path string, data []byte, mode fs.FileMode) error {
	args := m.Called(path, data, mode)

	return args.Error(0)
}

// ReadDir mocks the corresponding [schema.Backend] method.
func (m *Backend) ReadDir(path string) ([]schema.Entry, error) {
	args := m.Called(path)

	var entries []schema.Entry
	if args.Get(0) != nil {
		entries = args.Get(0).([]schema.Entry)
	}

	return entries, args.Error(1)
}

// Stat mocks the corresponding [schema.Backend] method.
func (m *Backend) Stat(path string) (schema.Entry, error) {
	args := m.Called(path)

	var entry schema.Entry
	if args.Get(0) != nil {
		entry = args.Get(0).(schema.Entry)
	}

	return entry, args.Error(1)
}

// Exists mocks the corresponding [schema.Backend] method.
func (m *Backend) Exists(path string) (bool, error) {
	args := m.Called(path)

	return args.Bool(0), args.Error(1)
}
