// Package factory registers FileIO backends by name, so that a backend
// is only constructed when it is actually selected. Backend packages
// call Register from an init function; importing a backend package is
// what compiles it in, constructing it stays deferred until Create.
package factory

import (
	"fmt"

	"github.com/tableform/tableio/fileio"
)

// fileIOFactories stores an internal mapping between backend names and
// their respective factories.
var fileIOFactories = make(map[string]FileIOFactory)

// FileIOFactory constructs fileio.FileIO instances. Backends call
// Register with a factory to make themselves available by name.
type FileIOFactory interface {
	// Create returns a new fileio.FileIO configured from the property
	// bag. Construction must be side-effect free: no filesystem client
	// may be built before its scheme is first resolved.
	Create(properties fileio.Properties) (fileio.FileIO, error)
}

// Register makes a FileIO backend available by the provided name.
// If Register is called twice with the same name or if factory is nil,
// it panics.
func Register(name string, factory FileIOFactory) {
	if factory == nil {
		panic("must not provide nil FileIOFactory")
	}
	if _, registered := fileIOFactories[name]; registered {
		panic(fmt.Sprintf("FileIOFactory named %s already registered", name))
	}

	fileIOFactories[name] = factory
}

// Create constructs a new fileio.FileIO with the given name and
// properties. The backend must first have been registered under that
// name, otherwise an InvalidFileIOError is returned.
func Create(name string, properties fileio.Properties) (fileio.FileIO, error) {
	factory, ok := fileIOFactories[name]
	if !ok {
		return nil, InvalidFileIOError{name}
	}
	return factory.Create(properties)
}

// InvalidFileIOError records an attempt to construct an unregistered
// FileIO backend.
type InvalidFileIOError struct {
	Name string
}

func (err InvalidFileIOError) Error() string {
	return fmt.Sprintf("FileIO not registered: %s", err.Name)
}
