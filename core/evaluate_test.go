package core

import (
	"context"
	"testing"

	"github.com/csalatca/zproj/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (m *memStore) addMask(path string, labels []uint32, h, w int) {
	m.masks[path] = labels
	m.maskH[path] = h
	m.maskW[path] = w
}

func evalConfig() *contract.Config {
	return &contract.Config{RefDir: "/ref", SegDir: "/seg"}
}

func TestRunEvaluate(t *testing.T) {
	store := newMemStore()
	store.addMask("/ref/exp1_s1_groundtruth.tif", []uint32{1, 1, 2, 2}, 2, 2)
	store.addMask("/seg/exp1_s1_cp_masks.tif", []uint32{3, 3, 4, 4}, 2, 2)
	store.addMask("/ref/exp1_s2_groundtruth.tif", []uint32{0, 1, 0, 1}, 2, 2)
	store.addMask("/seg/exp1_s2_cp_masks.tif", []uint32{0, 0, 1, 1}, 2, 2)

	output, err := RunEvaluate(withSuppressHeader(context.Background()), evalConfig(), store)
	require.NoError(t, err)
	require.Len(t, output.Results, 2)

	first := output.Results[0]
	assert.Equal(t, "exp1_s1", first.SampleID)
	assert.Equal(t, "exp1_s1_groundtruth.tif", first.RefFile)
	assert.Equal(t, "exp1_s1_cp_masks.tif", first.SegFile)
	assert.InDelta(t, 1.0, first.ARI, 1e-9) // same partition, renumbered
	assert.Equal(t, 4, first.Pixels)

	second := output.Results[1]
	assert.Equal(t, "exp1_s2", second.SampleID)
	assert.InDelta(t, -0.5, second.ARI, 1e-9)
}

func TestRunEvaluateSkipsUnpaired(t *testing.T) {
	store := newMemStore()
	store.addMask("/ref/exp1_s1_gt.tif", []uint32{1, 2}, 1, 2)
	store.addMask("/seg/exp1_s1_cp.tif", []uint32{1, 2}, 1, 2)
	store.addMask("/ref/exp1_s9_gt.tif", []uint32{1, 2}, 1, 2)

	output, err := RunEvaluate(withSuppressHeader(context.Background()), evalConfig(), store)
	require.NoError(t, err)
	assert.Len(t, output.Results, 1)
	assert.Equal(t, []string{"exp1_s9"}, output.Skipped)
}

func TestRunEvaluateSkipsShapeMismatch(t *testing.T) {
	store := newMemStore()
	store.addMask("/ref/exp1_s1_gt.tif", []uint32{1, 2, 3, 4}, 2, 2)
	store.addMask("/seg/exp1_s1_cp.tif", []uint32{1, 2}, 1, 2)
	store.addMask("/ref/exp1_s2_gt.tif", []uint32{1, 2}, 1, 2)
	store.addMask("/seg/exp1_s2_cp.tif", []uint32{1, 2}, 1, 2)

	output, err := RunEvaluate(withSuppressHeader(context.Background()), evalConfig(), store)
	require.NoError(t, err)
	assert.Len(t, output.Results, 1)
	assert.Equal(t, []string{"exp1_s1"}, output.Skipped)
}

func TestRunEvaluateNoPairs(t *testing.T) {
	store := newMemStore()
	store.addMask("/ref/exp1_s1_gt.tif", []uint32{1, 2}, 1, 2)

	_, err := RunEvaluate(withSuppressHeader(context.Background()), evalConfig(), store)
	assert.ErrorContains(t, err, "no mask pairs")
}

func TestRunEvaluateEmptyRefDir(t *testing.T) {
	_, err := RunEvaluate(withSuppressHeader(context.Background()), evalConfig(), newMemStore())
	assert.ErrorContains(t, err, "no reference masks")
}
