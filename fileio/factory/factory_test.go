package factory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableform/tableio/fileio"
	"github.com/tableform/tableio/fileio/base"
	"github.com/tableform/tableio/fileio/factory"
	"github.com/tableform/tableio/internal/memfs"
)

type memFactory struct {
	created int
}

func (f *memFactory) Create(properties fileio.Properties) (fileio.FileIO, error) {
	f.created++
	return base.New("test-mem", properties, func(ctx context.Context, scheme string, _ fileio.Properties) (fileio.FileSystem, error) {
		return memfs.New(), nil
	}), nil
}

func TestCreateConstructsRegisteredBackend(t *testing.T) {
	f := &memFactory{}
	factory.Register("test-mem", f)

	props := fileio.Properties{"k": "v"}
	fio, err := factory.Create("test-mem", props)
	require.NoError(t, err)

	assert.Equal(t, "test-mem", fio.Name())
	assert.Equal(t, props, fio.Properties())
	assert.Equal(t, 1, f.created)
}

func TestCreateUnregistered(t *testing.T) {
	_, err := factory.Create("no-such-backend", fileio.Properties{})

	var invalid factory.InvalidFileIOError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "no-such-backend", invalid.Name)
	assert.Equal(t, "FileIO not registered: no-such-backend", err.Error())
}

func TestRegisterDuplicatePanics(t *testing.T) {
	factory.Register("test-dup", &memFactory{})
	assert.Panics(t, func() {
		factory.Register("test-dup", &memFactory{})
	})
}

func TestRegisterNilPanics(t *testing.T) {
	assert.Panics(t, func() {
		factory.Register("test-nil", nil)
	})
}
