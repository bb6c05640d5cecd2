package tableio_test

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tableform/tableio"
	"github.com/tableform/tableio/fileio"
	"github.com/tableform/tableio/fileio/cloud"
	"github.com/tableform/tableio/fileio/native"
)

const (
	deprecatedNativeImpl = "github.com/tableform/tableio/fileio/native"
	deprecatedCloudImpl  = "github.com/tableform/tableio/fileio/cloud"
)

func warnings(hook *logtest.Hook) []string {
	var msgs []string
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			msgs = append(msgs, entry.Message)
		}
	}
	return msgs
}

func TestLoadDefaultsToNative(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	fio, err := tableio.LoadFileIO(context.Background(), fileio.Properties{}, "")
	require.NoError(t, err)
	assert.Equal(t, native.Name, fio.Name())
	assert.Empty(t, warnings(hook))
}

func TestLoadCanonicalValues(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	for _, impl := range []string{native.Name, cloud.Name} {
		props := fileio.Properties{tableio.IOImpl: impl}
		fio, err := tableio.LoadFileIO(context.Background(), props, "")
		require.NoError(t, err)
		assert.Equal(t, impl, fio.Name())
	}
	assert.Empty(t, warnings(hook))
}

func TestLoadDeprecatedSpellings(t *testing.T) {
	testCases := []struct {
		spelling  string
		canonical string
	}{
		{deprecatedNativeImpl, native.Name},
		{deprecatedCloudImpl, cloud.Name},
	}

	for _, tc := range testCases {
		t.Run(tc.canonical, func(t *testing.T) {
			hook := logtest.NewGlobal()
			defer hook.Reset()

			props := fileio.Properties{tableio.IOImpl: tc.spelling}
			fio, err := tableio.LoadFileIO(context.Background(), props, "")
			require.NoError(t, err)
			assert.Equal(t, tc.canonical, fio.Name())

			msgs := warnings(hook)
			require.Len(t, msgs, 1, "deprecated spelling must warn exactly once")
			assert.Contains(t, msgs[0], "deprecated")
		})
	}
}

func TestLoadUnknownImplIsFatal(t *testing.T) {
	props := fileio.Properties{tableio.IOImpl: "carrier-pigeon"}
	_, err := tableio.LoadFileIO(context.Background(), props, "")

	var confErr tableio.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Equal(t, tableio.IOImpl, confErr.Key)
	assert.Equal(t, "carrier-pigeon", confErr.Value)
}

func TestLoadSupportedLocationDoesNotSwitch(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	fio, err := tableio.LoadFileIO(context.Background(), fileio.Properties{}, "/warehouse/db/table/metadata.json")
	require.NoError(t, err)
	assert.Equal(t, native.Name, fio.Name())
	assert.Empty(t, warnings(hook))
}

func TestLoadFallsBackToCloudForUnsupportedScheme(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	// The native backend does not serve gs; selection must substitute
	// the cloud backend transparently.
	fio, err := tableio.LoadFileIO(context.Background(), fileio.Properties{}, "gs://bucket/db/table/metadata.json")
	require.NoError(t, err)
	assert.Equal(t, cloud.Name, fio.Name())

	msgs := warnings(hook)
	require.Len(t, msgs, 1, "fallback must warn exactly once")
	assert.Contains(t, msgs[0], "not supported")
}

func TestLoadReturnsAlternateEvenWhenBothUnsupported(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	// Neither backend serves the scheme; selection still hands back the
	// alternate so the eventual I/O call fails with the clearer error.
	fio, err := tableio.LoadFileIO(context.Background(), fileio.Properties{}, "carrier-pigeon://coop/roost")
	require.NoError(t, err)
	assert.Equal(t, cloud.Name, fio.Name())
	assert.NotEmpty(t, warnings(hook))

	_, probeErr := fio.FSByURI(context.Background(), "carrier-pigeon://coop/roost")
	assert.True(t, fileio.IsUnsupportedScheme(probeErr))
}

func TestLoadReverseFallbackToNative(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	// With cloud configured and an hdfs location, selection switches to
	// native even though the namenode is not configured; the eventual
	// client construction reports the real problem.
	props := fileio.Properties{tableio.IOImpl: cloud.Name}
	fio, err := tableio.LoadFileIO(context.Background(), props, "hdfs://namenode:8020/warehouse/file")
	require.NoError(t, err)
	assert.Equal(t, native.Name, fio.Name())
	assert.NotEmpty(t, warnings(hook))
}

func TestLoadPrimaryProbeErrorPropagates(t *testing.T) {
	// hdfs is supported by the native backend, so a misconfigured
	// client is a real error, not grounds for switching backends.
	_, err := tableio.LoadFileIO(context.Background(), fileio.Properties{}, "hdfs://namenode:8020/warehouse/file")
	require.Error(t, err)
	assert.False(t, fileio.IsUnsupportedScheme(err))
	assert.Contains(t, err.Error(), fileio.HDFSHost)
}

func TestLoadedInstanceServesFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	location := dir + "/00000.parquet"

	fio, err := tableio.LoadFileIO(ctx, fileio.Properties{}, location)
	require.NoError(t, err)

	w, err := fio.NewOutput(location).Create(ctx)
	require.NoError(t, err)
	_, err = w.Write([]byte("row group"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	size, err := fio.NewInput(location).Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len("row group")), size)

	require.NoError(t, fio.Delete(ctx, location))
}
