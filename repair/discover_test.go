package repair

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "IMG_0002.CR2.locked", nil)
	touch(t, dir, "IMG_0001.cr2.encrypted", nil)
	touch(t, dir, "IMG_0003.CR2", nil)
	touch(t, dir, "IMG_0004.NEF.locked", nil)
	touch(t, dir, ".IMG_0005.CR2.locked", nil)
	touch(t, dir, "notes.txt", nil)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "IMG_0006.CR2.d"), 0o755))

	files, err := Discover(dir, "CR2")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "IMG_0001.cr2.encrypted"),
		filepath.Join(dir, "IMG_0002.CR2.locked"),
	}, files)

	files, err = Discover(dir, "nef")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "IMG_0004.NEF.locked")}, files)

	files, err = Discover(dir, "ARW")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverMissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"), "CR2")
	require.Error(t, err)
	assert.Equal(t, KindIO, KindOf(err))
}

func TestRepairedName(t *testing.T) {
	assert.Equal(t, "IMG_0001.CR2", RepairedName("/in/IMG_0001.CR2.locked"))
	assert.Equal(t, "DSC_0001.NEF", RepairedName("DSC_0001.NEF.id-1234"))
	assert.Equal(t, "a.b.ARW", RepairedName("a.b.ARW.enc"))
}

func TestConvertedName(t *testing.T) {
	assert.Equal(t, "IMG_0001.TIFF", ConvertedName("/in/IMG_0001.CR2.locked", DefaultConvertExt))
	assert.Equal(t, "DSC0001.JPG", ConvertedName("DSC0001.ARW.enc", ".JPG"))
}
