package fileio_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tableform/tableio/fileio"
)

func TestErrorPredicates(t *testing.T) {
	testCases := []struct {
		name  string
		err   error
		match func(error) bool
	}{
		{
			name:  "not found",
			err:   fileio.PathNotFoundError{Path: "s3://bucket/missing"},
			match: fileio.IsNotFound,
		},
		{
			name:  "already exists",
			err:   fileio.PathAlreadyExistsError{Path: "/tmp/existing"},
			match: fileio.IsAlreadyExists,
		},
		{
			name:  "permission",
			err:   fileio.PermissionError{Path: "/tmp/secret", Detail: errors.New("denied")},
			match: fileio.IsPermission,
		},
		{
			name:  "unsupported scheme",
			err:   fileio.UnsupportedSchemeError{Scheme: "gs", FileIO: "native"},
			match: fileio.IsUnsupportedScheme,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.match(tc.err))
			assert.True(t, tc.match(fmt.Errorf("opening file: %w", tc.err)), "must match through wrapping")

			for _, other := range testCases {
				if other.name == tc.name {
					continue
				}
				assert.False(t, other.match(tc.err), "%s matched by %s predicate", tc.name, other.name)
			}
		})
	}
}

func TestErrorWrapperUnwraps(t *testing.T) {
	detail := fileio.PathNotFoundError{Path: "x"}
	err := fileio.Error{FileIO: "cloud", Detail: detail}

	assert.Equal(t, "cloud: path not found: x", err.Error())
	assert.True(t, fileio.IsNotFound(err))
}

func TestUnsupportedSchemeErrorMessage(t *testing.T) {
	err := fileio.UnsupportedSchemeError{Scheme: "foo", FileIO: "native"}
	assert.Equal(t, `uri scheme "foo" is not supported by native`, err.Error())
}
