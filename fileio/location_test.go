package fileio_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableform/tableio/fileio"
)

func TestParseLocation(t *testing.T) {
	testCases := []struct {
		name      string
		location  string
		scheme    string
		authority string
		path      string
	}{
		{
			name:     "absolute path without scheme",
			location: "/warehouse/db/table/00000.parquet",
			scheme:   "file",
			path:     "/warehouse/db/table/00000.parquet",
		},
		{
			name:     "file scheme",
			location: "file:///warehouse/db/table/00000.parquet",
			scheme:   "file",
			path:     "/warehouse/db/table/00000.parquet",
		},
		{
			name:      "hdfs keeps authority separate",
			location:  "hdfs://namenode:8020/warehouse/db/table/00000.parquet",
			scheme:    "hdfs",
			authority: "namenode:8020",
			path:      "/warehouse/db/table/00000.parquet",
		},
		{
			name:      "viewfs keeps authority separate",
			location:  "viewfs://cluster/warehouse/file.avro",
			scheme:    "viewfs",
			authority: "cluster",
			path:      "/warehouse/file.avro",
		},
		{
			name:      "s3 folds bucket into path",
			location:  "s3://bucket/db/table/metadata.json",
			scheme:    "s3",
			authority: "bucket",
			path:      "bucket/db/table/metadata.json",
		},
		{
			name:      "gs folds bucket into path",
			location:  "gs://bucket/object",
			scheme:    "gs",
			authority: "bucket",
			path:      "bucket/object",
		},
		{
			name:      "abfss keeps container in the authority",
			location:  "abfss://container@account.dfs.core.windows.net/dir/file",
			scheme:    "abfss",
			authority: "container@account.dfs.core.windows.net",
			path:      "container@account.dfs.core.windows.net/dir/file",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			scheme, authority, path := fileio.ParseLocation(tc.location)
			assert.Equal(t, tc.scheme, scheme)
			assert.Equal(t, tc.authority, authority)
			assert.Equal(t, tc.path, path)
		})
	}
}

func TestParseLocationRelativePath(t *testing.T) {
	scheme, authority, path := fileio.ParseLocation("db/table/00000.parquet")
	assert.Equal(t, "file", scheme)
	assert.Empty(t, authority)

	abs, err := filepath.Abs("db/table/00000.parquet")
	require.NoError(t, err)
	assert.Equal(t, abs, path)
}

func TestParseLocationDeterministic(t *testing.T) {
	for _, location := range []string{
		"s3://bucket/key",
		"hdfs://nn/path",
		"/local/path",
		"plain-name",
	} {
		s1, a1, p1 := fileio.ParseLocation(location)
		s2, a2, p2 := fileio.ParseLocation(location)
		assert.Equal(t, s1, s2)
		assert.Equal(t, a1, a2)
		assert.Equal(t, p1, p2)
	}
}
