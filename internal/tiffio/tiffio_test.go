package tiffio

import (
	"bytes"
	"compress/lzw"
	"compress/zlib"
	"encoding/binary"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	planes := [][]uint16{
		{0, 100, 200, 300, 400, 500},
		{65535, 1, 2, 3, 4, 5},
		{7, 7, 7, 7, 7, 7},
	}
	data, err := encodeStack(planes, 2, 3)
	require.NoError(t, err)

	vol, err := decodeVolume(data, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, vol.T)
	assert.Equal(t, 1, vol.Z)
	assert.Equal(t, 2, vol.H)
	assert.Equal(t, 3, vol.W)
	for i, plane := range planes {
		assert.Equal(t, plane, vol.Stack(i).Plane(0))
	}
}

func TestEncodeStackIFDChain(t *testing.T) {
	planes := make([][]uint16, 4)
	for i := range planes {
		planes[i] = []uint16{uint16(i), uint16(i + 1)}
	}
	data, err := encodeStack(planes, 1, 2)
	require.NoError(t, err)

	// Every directory must be walkable and point at its own strip.
	r, err := newReader(data)
	require.NoError(t, err)
	pages, err := r.pages()
	require.NoError(t, err)
	require.Len(t, pages, 4)
	for i, p := range pages {
		assert.Equal(t, 2, p.width, "page %d", i)
		assert.Equal(t, 1, p.height, "page %d", i)
		assert.Equal(t, []uint32{uint32(8 + i*4)}, p.offsets, "page %d", i)
		assert.Equal(t, []uint32{4}, p.counts, "page %d", i)
	}
	assert.Contains(t, pages[0].description, "frames=4")
	assert.Empty(t, pages[1].description)

	// An independent decoder must accept the first directory.
	img, err := tiff.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 1), img.Bounds())
}

func TestDecodeVolumeOverrides(t *testing.T) {
	planes := make([][]uint16, 6)
	for i := range planes {
		planes[i] = []uint16{uint16(i), uint16(i)}
	}
	data, err := encodeStack(planes, 1, 2)
	require.NoError(t, err)

	// Overrides win over the embedded frames=6 slices=1 metadata.
	vol, err := decodeVolume(data, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, vol.T)
	assert.Equal(t, 3, vol.Z)
	assert.Equal(t, []uint16{5, 5}, vol.Stack(1).Plane(2))

	// A single override infers the other dimension from the page count.
	vol, err = decodeVolume(data, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, vol.T)
	assert.Equal(t, 3, vol.Z)

	// Overrides that do not divide the page count are rejected.
	_, err = decodeVolume(data, 4, 3)
	assert.Error(t, err)
}

func TestDecodeVolumeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad byte order", []byte("XX\x2a\x00\x08\x00\x00\x00")},
		{"bigtiff", []byte("II\x2b\x00\x08\x00\x00\x00")},
		{"truncated", []byte("II\x2a\x00\xff\x00\x00\x00")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeVolume(tt.data, 0, 0)
			assert.Error(t, err)
		})
	}
}

func TestDecodeVolumeNotHyperstack(t *testing.T) {
	planes := [][]uint16{{1, 2}, {3, 4}, {5, 6}}
	data, err := encodeStack(planes, 1, 2)
	require.NoError(t, err)

	// The replacements keep the byte layout intact so offsets stay valid.
	noFrames := bytes.Replace(data, []byte("frames=3"), []byte("xrames=3"), 1)
	noSlices := bytes.Replace(data, []byte("slices=1"), []byte("xlices=1"), 1)
	noBoth := bytes.Replace(noFrames, []byte("slices=1"), []byte("xlices=1"), 1)

	t.Run("no metadata", func(t *testing.T) {
		_, err := decodeVolume(noBoth, 0, 0)
		assert.ErrorIs(t, err, ErrNotHyperstack)
	})
	t.Run("frames only is a plain 3D stack", func(t *testing.T) {
		_, err := decodeVolume(noSlices, 0, 0)
		assert.ErrorIs(t, err, ErrNotHyperstack)
	})
	t.Run("slices only is a plain 3D stack", func(t *testing.T) {
		_, err := decodeVolume(noFrames, 0, 0)
		assert.ErrorIs(t, err, ErrNotHyperstack)
	})
	t.Run("override supplies the missing dimension", func(t *testing.T) {
		vol, err := decodeVolume(noFrames, 3, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, vol.T)
		assert.Equal(t, 1, vol.Z)
	})
}

func TestImagejDims(t *testing.T) {
	tests := []struct {
		name       string
		desc       string
		wantFrames int
		wantSlices int
		wantImages int
	}{
		{"both", "ImageJ=1.54f\nimages=40\nslices=10\nframes=4\n", 4, 10, 40},
		{"slices only", "ImageJ=1.54f\nimages=10\nslices=10\n", 0, 10, 10},
		{"no images", "frames=4\nslices=10\n", 4, 10, 0},
		{"empty", "", 0, 0, 0},
		{"garbage values", "frames=abc\nslices=-2\nimages=x\n", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames, slices, images := imagejDims(tt.desc)
			assert.Equal(t, tt.wantFrames, frames)
			assert.Equal(t, tt.wantSlices, slices)
			assert.Equal(t, tt.wantImages, images)
		})
	}
}

func TestDecodeVolumeImagesMismatch(t *testing.T) {
	planes := [][]uint16{{1, 2}, {3, 4}, {5, 6}}
	data, err := encodeStack(planes, 1, 2)
	require.NoError(t, err)
	munged := bytes.Replace(data, []byte("images=3"), []byte("images=9"), 1)

	// An inconsistent images= count is reported but not fatal.
	vol, err := decodeVolume(munged, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, vol.T)
	assert.Equal(t, 1, vol.Z)
}

func TestDecompressLZW(t *testing.T) {
	// Below the first code-width bump the TIFF and GIF-style LZW
	// bitstreams agree, so compress/lzw can produce a short fixture.
	payload := make([]byte, 64)
	for i := range payload {
		payload[i] = byte(i * 3)
	}
	var buf bytes.Buffer
	lw := lzw.NewWriter(&buf, lzw.MSB, 8)
	_, err := lw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, lw.Close())

	out, err := decompress(buf.Bytes(), compressionLZW)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestDecompressLZWEarlyChange(t *testing.T) {
	// Past 511 table entries the TIFF variant widens codes one step
	// earlier than GIF-style LZW. A long GIF-style stream therefore
	// must not round-trip through the TIFF decoder.
	payload := make([]byte, 12288)
	for i := range payload {
		payload[i] = byte(i * 7)
	}
	var buf bytes.Buffer
	lw := lzw.NewWriter(&buf, lzw.MSB, 8)
	_, err := lw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, lw.Close())

	out, err := decompress(buf.Bytes(), compressionLZW)
	if err == nil {
		assert.NotEqual(t, payload, out)
	}
}

func TestDecompressDeflate(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	out, err := decompress(buf.Bytes(), compressionDeflate)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestUndoPredictor16(t *testing.T) {
	// Two rows of deltas: 10,+5,+5 and 100,-50,+1.
	raw := []byte{
		10, 0, 5, 0, 5, 0,
		100, 0, 206, 255, 1, 0,
	}
	undoPredictor(raw, 3, 2, 16, binary.LittleEndian)
	want := []byte{
		10, 0, 15, 0, 20, 0,
		100, 0, 50, 0, 51, 0,
	}
	assert.Equal(t, want, raw)
}

func TestStoreReadMask(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 3, 2))
	img.SetGray16(0, 0, color.Gray16{Y: 0})
	img.SetGray16(1, 0, color.Gray16{Y: 1})
	img.SetGray16(2, 0, color.Gray16{Y: 300})
	img.SetGray16(0, 1, color.Gray16{Y: 2})
	img.SetGray16(1, 1, color.Gray16{Y: 2})
	img.SetGray16(2, 1, color.Gray16{Y: 0})

	path := filepath.Join(t.TempDir(), "mask.tif")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, tiff.Encode(f, img, nil))
	require.NoError(t, f.Close())

	labels, h, w, err := NewStore().ReadMask(path)
	require.NoError(t, err)
	assert.Equal(t, 2, h)
	assert.Equal(t, 3, w)
	assert.Equal(t, []uint32{0, 1, 300, 2, 2, 0}, labels)
}

func TestStoreListStacks(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b_c1.tif", "a_c1.tiff", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.tif"), 0o755))

	names, err := NewStore().ListStacks(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a_c1.tiff", "b_c1.tif"}, names)
}

func TestStoreWriteReadVolume(t *testing.T) {
	planes := [][]uint16{{9, 8, 7, 6}, {5, 4, 3, 2}}
	path := filepath.Join(t.TempDir(), "proj.tif")
	store := NewStore()
	require.NoError(t, store.WriteStack(path, planes, 2, 2))

	vol, err := store.ReadVolume(path, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, vol.T)
	assert.Equal(t, []uint16{5, 4, 3, 2}, vol.Stack(1).Plane(0))
}
