//go:build linux

package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/msrpower/pkg/power"
	"github.com/ja7ad/msrpower/pkg/system/topology"
	"github.com/ja7ad/msrpower/pkg/types"
)

func fourCoresAt10W() power.Reading {
	return power.Reading{
		Duration: time.Second,
		Package:  55.556,
		Cores: []power.CoreWatts{
			{Core: 0, Watts: 10}, {Core: 1, Watts: 10}, {Core: 2, Watts: 10}, {Core: 3, Watts: 10},
		},
	}
}

func TestSummarize_Scaling(t *testing.T) {
	t.Run("smt_enabled", func(t *testing.T) {
		topo := topology.Topology{SMTEnabled: true, LogicalCores: 8, PhysicalCores: 4, Cores: []int{0, 1, 2, 3}}
		s := Summarize(fourCoresAt10W(), topo)
		assert.Equal(t, types.Watts(80), s.CoresTotal)
		assert.Equal(t, 1.0, s.Duration)
		assert.True(t, s.SMTEnabled)
	})
	t.Run("smt_disabled", func(t *testing.T) {
		topo := topology.Topology{LogicalCores: 4, PhysicalCores: 4, Cores: []int{0, 1, 2, 3}}
		s := Summarize(fourCoresAt10W(), topo)
		assert.Equal(t, types.Watts(40), s.CoresTotal)
	})
}

func TestWriteText(t *testing.T) {
	topo := topology.Topology{SMTEnabled: true, LogicalCores: 8, PhysicalCores: 4, Cores: []int{0, 1, 2, 3}}
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, Summarize(fourCoresAt10W(), topo)))

	want := "Package: 55.56W\n" +
		"Core 0: 10.00W\n" +
		"Core 1: 10.00W\n" +
		"Core 2: 10.00W\n" +
		"Core 3: 10.00W\n" +
		"Cores Total: 80.00W\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteJSON(t *testing.T) {
	topo := topology.Topology{LogicalCores: 4, PhysicalCores: 4, Cores: []int{0, 1, 2, 3}}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, Summarize(fourCoresAt10W(), topo)))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 40.0, got["cores_total_w"])
	assert.Equal(t, 55.556, got["package_w"])
	assert.Equal(t, false, got["smt_enabled"])
	cores, ok := got["cores"].([]any)
	require.True(t, ok)
	assert.Len(t, cores, 4)
}

func TestWriteCSV(t *testing.T) {
	topo := topology.Topology{SMTEnabled: true, LogicalCores: 8, PhysicalCores: 4, Cores: []int{0, 1, 2, 3}}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, CSV, Summarize(fourCoresAt10W(), topo)))

	want := "scope,core,watts\n" +
		"package,,55.56\n" +
		"core,0,10.00\n" +
		"core,1,10.00\n" +
		"core,2,10.00\n" +
		"core,3,10.00\n" +
		"cores_total,,80.00\n"
	assert.Equal(t, want, buf.String())
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "json", "csv"} {
		f, err := ParseFormat(s)
		require.NoError(t, err)
		assert.Equal(t, Format(s), f)
	}
	_, err := ParseFormat("yaml")
	assert.Error(t, err)
}
