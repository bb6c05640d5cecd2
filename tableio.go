// Package tableio selects and loads a FileIO backend for a table or
// session context. Callers hand it the configuration bag and, when
// known, the location they are about to touch; they get back a
// fileio.FileIO without naming a backend at the call site.
package tableio

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tableform/tableio/fileio"
	"github.com/tableform/tableio/fileio/cloud"
	"github.com/tableform/tableio/fileio/factory"
	"github.com/tableform/tableio/fileio/native"
)

// IOImpl is the configuration key selecting the FileIO backend.
const IOImpl = "io-impl"

// DefaultIOImpl is used when the selection key is absent.
const DefaultIOImpl = native.Name

// Deprecated package-path spellings from before the identifiers were
// shortened. Each maps 1:1 to its canonical value and warns.
const (
	deprecatedNativeImpl = "github.com/tableform/tableio/fileio/native"
	deprecatedCloudImpl  = "github.com/tableform/tableio/fileio/cloud"
)

// ConfigurationError reports a fatal configuration value. It is never
// retried or downgraded to a warning.
type ConfigurationError struct {
	Key   string
	Value string
}

func (err ConfigurationError) Error() string {
	return fmt.Sprintf("unknown value %q for %s; accepts %q, %q, or the deprecated spellings %q, %q",
		err.Value, err.Key, native.Name, cloud.Name, deprecatedNativeImpl, deprecatedCloudImpl)
}

// normalizeIOImpl keeps backward compatibility with the old io-impl
// spellings.
func normalizeIOImpl(impl string) (string, error) {
	switch impl {
	case native.Name, cloud.Name:
		return impl, nil
	case deprecatedNativeImpl:
		logrus.Warnf("the %s value %q is deprecated, use %q instead", IOImpl, deprecatedNativeImpl, native.Name)
		return native.Name, nil
	case deprecatedCloudImpl:
		logrus.Warnf("the %s value %q is deprecated, use %q instead", IOImpl, deprecatedCloudImpl, cloud.Name)
		return cloud.Name, nil
	default:
		return "", ConfigurationError{Key: IOImpl, Value: impl}
	}
}

// LoadFileIO returns the FileIO serving the configuration bag and, when
// location is non-empty, that location's scheme.
//
// The configured backend (native when the key is absent) is constructed
// first; only the selected backend is initialized. When a location is
// given its scheme is probed against the constructed instance, and if
// the backend reports the scheme unsupported, the alternate backend is
// constructed and returned instead. The alternate is returned even when
// it cannot serve the scheme either — the eventual I/O call then fails
// with the clearer, scheme-specific error. Selection never switches
// more than once.
func LoadFileIO(ctx context.Context, properties fileio.Properties, location string) (fileio.FileIO, error) {
	impl, err := normalizeIOImpl(properties.Get(IOImpl, DefaultIOImpl))
	if err != nil {
		return nil, err
	}

	fio, err := factory.Create(impl, properties)
	if err != nil {
		return nil, err
	}
	if location == "" {
		return fio, nil
	}

	if _, err := fio.FSByURI(ctx, location); err != nil {
		if !fileio.IsUnsupportedScheme(err) {
			return nil, err
		}
		alternate := native.Name
		if impl == native.Name {
			alternate = cloud.Name
		}
		logrus.Warnf("uri scheme of %q is not supported by the %s FileIO, attempting to load the %s FileIO instead", location, impl, alternate)

		alt, err := factory.Create(alternate, properties)
		if err != nil {
			return nil, err
		}
		if _, err := alt.FSByURI(ctx, location); fileio.IsUnsupportedScheme(err) {
			logrus.Warnf("uri scheme of %q is not supported by the %s FileIO either", location, alternate)
		}
		return alt, nil
	}
	return fio, nil
}
