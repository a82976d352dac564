package driver_test

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/avaskys/flatvol"
	"github.com/avaskys/flatvol/driver"
	"github.com/avaskys/flatvol/file_systems/flatfs"
	ft "github.com/avaskys/flatvol/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMountedStore(t *testing.T) (*driver.FileStore, string) {
	t.Helper()

	image := filepath.Join(t.TempDir(), "test_disk.img")
	store := driver.New()
	require.Equal(t, flatvol.CodeOK, store.Format(image), "format failed")
	require.Equal(t, flatvol.CodeOK, store.Mount(image), "mount failed")
	t.Cleanup(store.Unmount)
	return store, image
}

func TestFormatAndMountLifecycle(t *testing.T) {
	image := filepath.Join(t.TempDir(), "test_disk.img")
	store := driver.New()

	assert.Equal(t, flatvol.CodeOK, store.Format(image))
	assert.Equal(t, flatvol.CodeOK, store.Mount(image))
	assert.Equal(t, flatvol.CodeNotFound, store.Mount(image), "double mount must fail")

	store.Unmount()
	store.Unmount() // a second unmount is a no-op

	assert.Equal(
		t,
		flatvol.CodeNotFound,
		store.Mount(filepath.Join(t.TempDir(), "non_existent.img")),
		"mounting a non-existent image must fail")
}

func TestStatusCodesOnUnmountedStore(t *testing.T) {
	store := driver.New()

	// The codes differ per operation; these exact values are the contract.
	assert.Equal(t, flatvol.CodeInvalidArgument, store.Create("x"))
	assert.Equal(t, flatvol.CodeNotFound, store.List(make([]string, 10)))
	assert.Equal(t, flatvol.CodeInvalidArgument, store.Write("x", []byte("data")))
	assert.Equal(t, flatvol.CodeNotFound, store.Read("x", make([]byte, 10)))
	assert.Equal(t, flatvol.CodeNoSpace, store.Delete("x"))
}

func TestCreateStatusCodes(t *testing.T) {
	store, _ := newMountedStore(t)

	assert.Equal(t, flatvol.CodeOK, store.Create("test.txt"))
	assert.Equal(t, flatvol.CodeExists, store.Create("test.txt"))
	assert.Equal(t, flatvol.CodeInvalidArgument, store.Create(""))
	assert.Equal(
		t,
		flatvol.CodeInvalidArgument,
		store.Create(strings.Repeat("a", flatfs.MaxFilenameLength)))
	assert.Equal(
		t,
		flatvol.CodeOK,
		store.Create(strings.Repeat("a", flatfs.MaxFilenameLength-1)))
}

func TestDeleteStatusCodes(t *testing.T) {
	store, _ := newMountedStore(t)

	assert.Equal(t, flatvol.CodeNotFound, store.Delete("nonexistent.txt"))
	assert.Equal(t, flatvol.CodeNoSpace, store.Delete(""))
	assert.Equal(
		t,
		flatvol.CodeNoSpace,
		store.Delete(strings.Repeat("b", flatfs.MaxFilenameLength+5)))

	require.Equal(t, flatvol.CodeOK, store.Create("doomed"))
	assert.Equal(t, flatvol.CodeOK, store.Delete("doomed"))
}

// Scenario: write then read back through the integer surface.
func TestScenarioHelloWorld(t *testing.T) {
	store, _ := newMountedStore(t)

	payload := []byte("Hello, World!")
	require.Equal(t, flatvol.CodeOK, store.Create("a"))
	require.Equal(t, flatvol.CodeOK, store.Write("a", payload))

	buffer := make([]byte, 100)
	n := store.Read("a", buffer)
	assert.Equal(t, 13, n)
	assert.Equal(t, payload, buffer[:13])
}

// Scenario: contents survive an unmount/remount cycle.
func TestScenarioPersistence(t *testing.T) {
	store, image := newMountedStore(t)

	payload := []byte("Hello, World!")
	require.Equal(t, flatvol.CodeOK, store.Create("a"))
	require.Equal(t, flatvol.CodeOK, store.Write("a", payload))
	store.Unmount()

	require.Equal(t, flatvol.CodeOK, store.Mount(image))
	buffer := make([]byte, 100)
	n := store.Read("a", buffer)
	assert.Equal(t, 13, n)
	assert.Equal(t, payload, buffer[:13])
}

// Scenario: fill the inode table, free one slot, fill it again.
func TestScenarioInodeExhaustion(t *testing.T) {
	store, _ := newMountedStore(t)

	for i := 0; i < flatfs.MaxFiles; i++ {
		require.Equalf(
			t, flatvol.CodeOK, store.Create(fmt.Sprintf("f%d", i)), "create f%d failed", i)
	}

	assert.Equal(t, flatvol.CodeNoSpace, store.Create("f256"))
	require.Equal(t, flatvol.CodeOK, store.Delete("f0"))
	assert.Equal(t, flatvol.CodeOK, store.Create("f256"))
}

// Scenario: the file size limit is exact.
func TestScenarioMaxFileSize(t *testing.T) {
	store, _ := newMountedStore(t)

	require.Equal(t, flatvol.CodeOK, store.Create("big"))

	tooBig := ft.RandomPayload(t, flatfs.MaxFileSize+1)
	assert.Equal(t, flatvol.CodeNoSpace, store.Write("big", tooBig))

	exact := ft.RandomPayload(t, flatfs.MaxFileSize)
	require.Equal(t, flatvol.CodeOK, store.Write("big", exact))

	buffer := make([]byte, flatfs.MaxFileSize+100)
	n := store.Read("big", buffer)
	assert.Equal(t, flatfs.MaxFileSize, n)
	assert.Equal(t, exact, buffer[:n])
}

// Scenario: a rewrite shrinks the file.
func TestScenarioShrinkingRewrite(t *testing.T) {
	store, _ := newMountedStore(t)

	require.Equal(t, flatvol.CodeOK, store.Create("x"))
	require.Equal(t, flatvol.CodeOK, store.Write("x", ft.RandomPayload(t, 20000)))
	require.Equal(t, flatvol.CodeOK, store.Write("x", []byte("Small")))

	buffer := make([]byte, 100)
	n := store.Read("x", buffer)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte("Small"), buffer[:5])
}

// Scenario: reading a deleted file fails.
func TestScenarioReadAfterDelete(t *testing.T) {
	store, _ := newMountedStore(t)

	require.Equal(t, flatvol.CodeOK, store.Create("a"))
	require.Equal(t, flatvol.CodeOK, store.Delete("a"))
	assert.Equal(t, flatvol.CodeNotFound, store.Read("a", make([]byte, 10)))
}

func TestListFillsCallerBuffer(t *testing.T) {
	store, _ := newMountedStore(t)

	assert.Equal(t, 0, store.List(make([]string, 10)), "empty volume lists nothing")

	require.Equal(t, flatvol.CodeOK, store.Create("file1.txt"))
	require.Equal(t, flatvol.CodeOK, store.Create("file2.txt"))
	require.Equal(t, flatvol.CodeOK, store.Create("file3.txt"))

	names := make([]string, 10)
	count := store.List(names)
	assert.Equal(t, 3, count)
	assert.Equal(t, []string{"file1.txt", "file2.txt", "file3.txt"}, names[:count])

	// A smaller buffer caps the listing.
	two := make([]string, 2)
	assert.Equal(t, 2, store.List(two))
	assert.Equal(t, []string{"file1.txt", "file2.txt"}, two)
}

func TestWriteStatusCodes(t *testing.T) {
	store, _ := newMountedStore(t)

	assert.Equal(t, flatvol.CodeNotFound, store.Write("ghost", []byte("data")))

	require.Equal(t, flatvol.CodeOK, store.Create("x"))
	assert.Equal(t, flatvol.CodeInvalidArgument, store.Write("x", nil))
	assert.Equal(t, flatvol.CodeInvalidArgument, store.Write("", []byte("data")))
}

func TestFormatWipesVolume(t *testing.T) {
	store, image := newMountedStore(t)

	require.Equal(t, flatvol.CodeOK, store.Create("leftover"))
	store.Unmount()

	require.Equal(t, flatvol.CodeOK, store.Format(image))
	require.Equal(t, flatvol.CodeOK, store.Mount(image))
	assert.Equal(t, 0, store.List(make([]string, 10)))
}

func TestFormatRefusedWhileMounted(t *testing.T) {
	store, image := newMountedStore(t)
	assert.Equal(t, flatvol.CodeNotFound, store.Format(image))
}
