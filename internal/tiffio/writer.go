package tiffio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// encodeStack produces a little-endian multi-page TIFF with one 16-bit
// grayscale page per plane and an ImageJ description on the first page
// so Fiji opens the output as a time series.
func encodeStack(planes [][]uint16, h, w int) ([]byte, error) {
	if len(planes) == 0 {
		return nil, fmt.Errorf("no planes to write")
	}
	if h <= 0 || w <= 0 {
		return nil, fmt.Errorf("invalid plane dimensions %dx%d", w, h)
	}
	for i, p := range planes {
		if len(p) != h*w {
			return nil, fmt.Errorf("plane %d has %d pixels, expected %d", i, len(p), h*w)
		}
	}

	n := len(planes)
	planeBytes := h * w * 2
	desc := fmt.Sprintf("ImageJ=1.54f\nimages=%d\nframes=%d\nslices=1\nhyperstack=true\n", n, n)
	descBytes := append([]byte(desc), 0)
	if len(descBytes)%2 != 0 {
		descBytes = append(descBytes, 0)
	}

	// Layout: header, pixel data for every page, description, IFD chain.
	dataStart := 8
	descStart := dataStart + n*planeBytes
	ifdStart := descStart + len(descBytes)
	firstIFDSize := 2 + 10*12 + 4 // Page 0 carries the description entry
	restIFDSize := 2 + 9*12 + 4

	var buf bytes.Buffer
	le := binary.LittleEndian
	buf.WriteString("II")
	writeU16(&buf, le, 42)
	writeU32(&buf, le, uint32(ifdStart))

	pix := make([]byte, planeBytes)
	for _, p := range planes {
		for i, v := range p {
			le.PutUint16(pix[i*2:], v)
		}
		buf.Write(pix)
	}
	buf.Write(descBytes)

	ifdOffset := ifdStart
	for i := 0; i < n; i++ {
		size := restIFDSize
		entries := uint16(9)
		if i == 0 {
			size = firstIFDSize
			entries = 10
		}
		next := uint32(0)
		if i < n-1 {
			next = uint32(ifdOffset + size)
		}

		writeU16(&buf, le, entries)
		writeEntry(&buf, le, tagImageWidth, 4, 1, uint32(w))
		writeEntry(&buf, le, tagImageLength, 4, 1, uint32(h))
		writeEntry(&buf, le, tagBitsPerSample, 3, 1, 16)
		writeEntry(&buf, le, tagCompression, 3, 1, compressionNone)
		writeEntry(&buf, le, tagPhotometric, 3, 1, 1) // BlackIsZero
		if i == 0 {
			writeEntry(&buf, le, tagImageDescription, 2, uint32(len(descBytes)), uint32(descStart))
		}
		writeEntry(&buf, le, tagStripOffsets, 4, 1, uint32(dataStart+i*planeBytes))
		writeEntry(&buf, le, tagSamplesPerPixel, 3, 1, 1)
		writeEntry(&buf, le, tagRowsPerStrip, 4, 1, uint32(h))
		writeEntry(&buf, le, tagStripByteCounts, 4, 1, uint32(planeBytes))
		writeU32(&buf, le, next)

		ifdOffset += size
	}
	return buf.Bytes(), nil
}

func writeEntry(buf *bytes.Buffer, bo binary.ByteOrder, tag, typ uint16, count, value uint32) {
	writeU16(buf, bo, tag)
	writeU16(buf, bo, typ)
	writeU32(buf, bo, count)
	if typ == 3 && count == 1 {
		// SHORT values sit in the low half of the value field.
		writeU16(buf, bo, uint16(value))
		writeU16(buf, bo, 0)
		return
	}
	writeU32(buf, bo, value)
}

func writeU16(buf *bytes.Buffer, bo binary.ByteOrder, v uint16) {
	var b [2]byte
	bo.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, bo binary.ByteOrder, v uint32) {
	var b [4]byte
	bo.PutUint32(b[:], v)
	buf.Write(b[:])
}
