//go:build linux

package topology

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSysfs lays out a minimal /sys/devices/system/cpu tree under a temp dir.
func fakeSysfs(t *testing.T, control, online string, siblings map[int]string) string {
	t.Helper()
	root := t.TempDir()

	write := func(rel, content string) {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content+"\n"), 0o644))
	}
	write("smt/control", control)
	write("online", online)
	for cpu, list := range siblings {
		write(fmt.Sprintf("cpu%d/topology/core_cpus_list", cpu), list)
	}
	return root
}

func TestParseOnline(t *testing.T) {
	t.Run("valid_ranges", func(t *testing.T) {
		for _, n := range []uint32{0, 1, 7, 15, 127} {
			got, err := ParseOnline(fmt.Sprintf("0-%d", n))
			require.NoError(t, err)
			assert.Equal(t, n+1, got)
		}
	})
	t.Run("trailing_newline", func(t *testing.T) {
		got, err := ParseOnline("0-31\n")
		require.NoError(t, err)
		assert.Equal(t, uint32(32), got)
	})
	t.Run("malformed", func(t *testing.T) {
		for _, s := range []string{"", "7", "0-", "0-x", "0--1", "a-3", "4-2", "0-4294967295"} {
			_, err := ParseOnline(s)
			require.Error(t, err, "input %q", s)
			assert.ErrorIs(t, err, ErrTopology, "input %q", s)
		}
	})
	t.Run("non_contiguous", func(t *testing.T) {
		for _, s := range []string{"0-3,6-7", "2-7"} {
			_, err := ParseOnline(s)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNonContiguous, "input %q", s)
			assert.ErrorIs(t, err, ErrTopology, "input %q", s)
		}
	})
}

func TestParseSMTControl(t *testing.T) {
	assert.True(t, ParseSMTControl("on"))
	assert.True(t, ParseSMTControl("on\n"))
	for _, s := range []string{"off", "forceoff", "notsupported", "notimplemented", "", "ON"} {
		assert.False(t, ParseSMTControl(s), "value %q", s)
	}
}

func TestDiscover_SMTEnabled(t *testing.T) {
	root := fakeSysfs(t, "on", "0-7", map[int]string{
		0: "0,4", 1: "1,5", 2: "2,6", 3: "3,7",
		4: "0,4", 5: "1,5", 6: "2,6", 7: "3,7",
	})

	topo, err := Discover(root)
	require.NoError(t, err)

	assert.True(t, topo.SMTEnabled)
	assert.Equal(t, uint32(8), topo.LogicalCores)
	assert.Equal(t, uint32(4), topo.PhysicalCores)
	assert.Equal(t, []int{0, 1, 2, 3}, topo.Cores)
	assert.Equal(t, 2.0, topo.SMTRatio())
}

func TestDiscover_SMTEnabled_AdjacentRanges(t *testing.T) {
	// Some kernels print adjacent siblings as a range.
	root := fakeSysfs(t, "on", "0-3", map[int]string{
		0: "0-1", 1: "0-1", 2: "2-3", 3: "2-3",
	})

	topo, err := Discover(root)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), topo.PhysicalCores)
	assert.Equal(t, []int{0, 2}, topo.Cores)
}

func TestDiscover_SMTEnabled_WideGroups(t *testing.T) {
	root := fakeSysfs(t, "on", "0-7", map[int]string{
		0: "0,2,4,6", 2: "0,2,4,6", 4: "0,2,4,6", 6: "0,2,4,6",
		1: "1,3,5,7", 3: "1,3,5,7", 5: "1,3,5,7", 7: "1,3,5,7",
	})

	topo, err := Discover(root)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), topo.PhysicalCores)
	assert.Equal(t, []int{0, 1}, topo.Cores)
	assert.Equal(t, 4.0, topo.SMTRatio())
}

func TestDiscover_SMTDisabled_IgnoresSiblings(t *testing.T) {
	// No sibling files at all: discovery must not consult them.
	root := fakeSysfs(t, "off", "0-5", nil)

	topo, err := Discover(root)
	require.NoError(t, err)

	assert.False(t, topo.SMTEnabled)
	assert.Equal(t, uint32(6), topo.LogicalCores)
	assert.Equal(t, topo.LogicalCores, topo.PhysicalCores)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, topo.Cores)
	assert.Equal(t, 1.0, topo.SMTRatio())
}

func TestDiscover_Errors(t *testing.T) {
	t.Run("missing_control", func(t *testing.T) {
		_, err := Discover(t.TempDir())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTopology)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("bad_online", func(t *testing.T) {
		root := fakeSysfs(t, "off", "garbage", nil)
		_, err := Discover(root)
		assert.ErrorIs(t, err, ErrTopology)
	})
	t.Run("missing_sibling_list", func(t *testing.T) {
		root := fakeSysfs(t, "on", "0-3", map[int]string{0: "0,2", 1: "1,3", 2: "0,2"})
		_, err := Discover(root)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTopology)
		assert.Contains(t, err.Error(), "cpu3")
	})
	t.Run("bad_sibling_list", func(t *testing.T) {
		root := fakeSysfs(t, "on", "0-1", map[int]string{0: "0,x", 1: "1"})
		_, err := Discover(root)
		assert.ErrorIs(t, err, ErrTopology)
	})
	t.Run("empty_sibling_list", func(t *testing.T) {
		root := fakeSysfs(t, "on", "0-1", map[int]string{0: "", 1: "1"})
		_, err := Discover(root)
		assert.ErrorIs(t, err, ErrTopology)
	})
}
