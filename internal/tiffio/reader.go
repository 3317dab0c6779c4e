package tiffio

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/image/tiff/lzw"

	"github.com/csalatca/zproj/internal/contract"
	"github.com/csalatca/zproj/schema"
)

// TIFF tags used by the hyperstack reader.
const (
	tagImageWidth       = 256
	tagImageLength      = 257
	tagBitsPerSample    = 258
	tagCompression      = 259
	tagPhotometric      = 262
	tagImageDescription = 270
	tagStripOffsets     = 273
	tagSamplesPerPixel  = 277
	tagRowsPerStrip     = 278
	tagStripByteCounts  = 279
	tagPredictor        = 317
	tagTileWidth        = 322
	tagSampleFormat     = 339
)

const (
	compressionNone    = 1
	compressionLZW     = 5
	compressionDeflate = 8
	// Some writers use the old non-standard deflate code.
	compressionDeflateOld = 32946

	predictorNone       = 1
	predictorHorizontal = 2
)

var typeSizes = map[uint16]int{
	1: 1, // BYTE
	2: 1, // ASCII
	3: 2, // SHORT
	4: 4, // LONG
	5: 8, // RATIONAL
}

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	raw   [4]byte
}

type page struct {
	width       int
	height      int
	bits        int
	compression int
	predictor   int
	samples     int
	offsets     []uint32
	counts      []uint32
	description string
	tiled       bool
}

type reader struct {
	data []byte
	bo   binary.ByteOrder
}

func newReader(data []byte) (*reader, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("truncated TIFF header")
	}
	var bo binary.ByteOrder
	switch {
	case data[0] == 'I' && data[1] == 'I':
		bo = binary.LittleEndian
	case data[0] == 'M' && data[1] == 'M':
		bo = binary.BigEndian
	default:
		return nil, fmt.Errorf("not a TIFF file")
	}
	switch bo.Uint16(data[2:4]) {
	case 42:
	case 43:
		return nil, fmt.Errorf("BigTIFF is not supported")
	default:
		return nil, fmt.Errorf("bad TIFF magic")
	}
	return &reader{data: data, bo: bo}, nil
}

// pages walks the IFD chain and collects every directory.
func (r *reader) pages() ([]page, error) {
	var out []page
	offset := r.bo.Uint32(r.data[4:8])
	for offset != 0 {
		p, next, err := r.readIFD(offset)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
		if next != 0 && next <= offset {
			return nil, fmt.Errorf("IFD chain does not advance")
		}
		offset = next
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no image directories")
	}
	return out, nil
}

func (r *reader) readIFD(offset uint32) (page, uint32, error) {
	if int(offset)+2 > len(r.data) {
		return page{}, 0, fmt.Errorf("IFD offset %d out of range", offset)
	}
	n := int(r.bo.Uint16(r.data[offset : offset+2]))
	end := int(offset) + 2 + n*12 + 4
	if end > len(r.data) {
		return page{}, 0, fmt.Errorf("truncated IFD at offset %d", offset)
	}

	p := page{bits: 1, compression: compressionNone, predictor: predictorNone, samples: 1}
	for i := 0; i < n; i++ {
		base := int(offset) + 2 + i*12
		e := ifdEntry{
			tag:   r.bo.Uint16(r.data[base : base+2]),
			typ:   r.bo.Uint16(r.data[base+2 : base+4]),
			count: r.bo.Uint32(r.data[base+4 : base+8]),
		}
		copy(e.raw[:], r.data[base+8:base+12])
		if err := r.applyEntry(&p, e); err != nil {
			return page{}, 0, err
		}
	}
	next := r.bo.Uint32(r.data[end-4 : end])
	return p, next, nil
}

func (r *reader) applyEntry(p *page, e ifdEntry) error {
	switch e.tag {
	case tagImageWidth:
		v, err := r.firstValue(e)
		p.width = int(v)
		return err
	case tagImageLength:
		v, err := r.firstValue(e)
		p.height = int(v)
		return err
	case tagBitsPerSample:
		v, err := r.firstValue(e)
		p.bits = int(v)
		return err
	case tagCompression:
		v, err := r.firstValue(e)
		p.compression = int(v)
		return err
	case tagPredictor:
		v, err := r.firstValue(e)
		p.predictor = int(v)
		return err
	case tagSamplesPerPixel:
		v, err := r.firstValue(e)
		p.samples = int(v)
		return err
	case tagStripOffsets:
		vs, err := r.values(e)
		p.offsets = vs
		return err
	case tagStripByteCounts:
		vs, err := r.values(e)
		p.counts = vs
		return err
	case tagImageDescription:
		s, err := r.asciiValue(e)
		p.description = s
		return err
	case tagTileWidth:
		p.tiled = true
		return nil
	case tagSampleFormat:
		v, err := r.firstValue(e)
		if err != nil {
			return err
		}
		if v != 1 {
			return fmt.Errorf("sample format %d is not unsigned integer", v)
		}
		return nil
	}
	return nil
}

// valueBytes returns the payload of an entry, following the offset
// indirection when the payload does not fit in the 4 value bytes.
func (r *reader) valueBytes(e ifdEntry) ([]byte, error) {
	size, ok := typeSizes[e.typ]
	if !ok {
		return nil, fmt.Errorf("unsupported TIFF field type %d for tag %d", e.typ, e.tag)
	}
	total := size * int(e.count)
	if total <= 4 {
		return e.raw[:total], nil
	}
	off := int(r.bo.Uint32(e.raw[:]))
	if off+total > len(r.data) {
		return nil, fmt.Errorf("tag %d value out of range", e.tag)
	}
	return r.data[off : off+total], nil
}

func (r *reader) values(e ifdEntry) ([]uint32, error) {
	buf, err := r.valueBytes(e)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, e.count)
	for i := range out {
		switch e.typ {
		case 3:
			out[i] = uint32(r.bo.Uint16(buf[i*2:]))
		case 4:
			out[i] = r.bo.Uint32(buf[i*4:])
		default:
			return nil, fmt.Errorf("tag %d has non-integer type %d", e.tag, e.typ)
		}
	}
	return out, nil
}

func (r *reader) firstValue(e ifdEntry) (uint32, error) {
	vs, err := r.values(e)
	if err != nil {
		return 0, err
	}
	if len(vs) == 0 {
		return 0, fmt.Errorf("tag %d has no values", e.tag)
	}
	return vs[0], nil
}

func (r *reader) asciiValue(e ifdEntry) (string, error) {
	buf, err := r.valueBytes(e)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(buf), "\x00"), nil
}

// decodePlane decompresses one page into row-major uint16 pixels.
func (r *reader) decodePlane(p page) ([]uint16, error) {
	if p.tiled {
		return nil, fmt.Errorf("tiled TIFF is not supported")
	}
	if p.samples != 1 {
		return nil, fmt.Errorf("%d samples per pixel, expected grayscale", p.samples)
	}
	if p.bits != 8 && p.bits != 16 {
		return nil, fmt.Errorf("%d bits per sample, expected 8 or 16", p.bits)
	}
	if len(p.offsets) != len(p.counts) {
		return nil, fmt.Errorf("strip offset/count mismatch")
	}

	want := p.height * p.width * p.bits / 8
	raw := make([]byte, 0, want)
	for i := range p.offsets {
		off, cnt := int(p.offsets[i]), int(p.counts[i])
		if off+cnt > len(r.data) {
			return nil, fmt.Errorf("strip %d out of range", i)
		}
		strip, err := decompress(r.data[off:off+cnt], p.compression)
		if err != nil {
			return nil, err
		}
		raw = append(raw, strip...)
	}
	if len(raw) < want {
		return nil, fmt.Errorf("short pixel data: got %d bytes, want %d", len(raw), want)
	}
	raw = raw[:want]

	if p.predictor == predictorHorizontal {
		undoPredictor(raw, p.width, p.height, p.bits, r.bo)
	} else if p.predictor != predictorNone {
		return nil, fmt.Errorf("predictor %d is not supported", p.predictor)
	}

	pix := make([]uint16, p.height*p.width)
	if p.bits == 8 {
		for i, b := range raw {
			pix[i] = uint16(b)
		}
	} else {
		for i := range pix {
			pix[i] = r.bo.Uint16(raw[i*2:])
		}
	}
	return pix, nil
}

func decompress(strip []byte, compression int) ([]byte, error) {
	switch compression {
	case compressionNone:
		return strip, nil
	case compressionLZW:
		rc := lzw.NewReader(bytes.NewReader(strip), lzw.MSB, 8)
		defer func() { _ = rc.Close() }()
		out, err := io.ReadAll(rc)
		// TIFF LZW streams may end without an explicit EOI code.
		if err != nil && err != io.ErrUnexpectedEOF {
			return nil, err
		}
		return out, nil
	case compressionDeflate, compressionDeflateOld:
		// The deflate payload is zlib-wrapped: skip the 2-byte header.
		if len(strip) < 2 {
			return nil, fmt.Errorf("short deflate strip")
		}
		rc := flate.NewReader(bytes.NewReader(strip[2:]))
		defer func() { _ = rc.Close() }()
		return io.ReadAll(rc)
	default:
		return nil, fmt.Errorf("compression scheme %d is not supported", compression)
	}
}

// undoPredictor reverses horizontal differencing in place.
func undoPredictor(raw []byte, width, height, bits int, bo binary.ByteOrder) {
	if bits == 8 {
		for y := 0; y < height; y++ {
			row := raw[y*width : (y+1)*width]
			for x := 1; x < width; x++ {
				row[x] += row[x-1]
			}
		}
		return
	}
	stride := width * 2
	for y := 0; y < height; y++ {
		row := raw[y*stride : (y+1)*stride]
		for x := 1; x < width; x++ {
			v := bo.Uint16(row[x*2:]) + bo.Uint16(row[(x-1)*2:])
			bo.PutUint16(row[x*2:], v)
		}
	}
}

// imagejDims pulls frame, slice and total image counts out of an ImageJ
// description block such as "ImageJ=1.54f\nimages=40\nslices=10\nframes=4\n".
func imagejDims(description string) (frames, slices, images int) {
	for _, line := range strings.Split(description, "\n") {
		key, val, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			continue
		}
		switch key {
		case "frames":
			frames = n
		case "slices":
			slices = n
		case "images":
			images = n
		}
	}
	return frames, slices, images
}

// decodeVolume assembles all pages into a (T, Z, Y, X) volume. Explicit
// frames/slices arguments override the embedded metadata.
func decodeVolume(data []byte, frames, slices int) (*schema.Volume, error) {
	r, err := newReader(data)
	if err != nil {
		return nil, err
	}
	pages, err := r.pages()
	if err != nil {
		return nil, err
	}

	metaFrames, metaSlices, metaImages := imagejDims(pages[0].description)
	total := len(pages)
	t, z := frames, slices
	switch {
	case t == 0 && z == 0:
		// Metadata must name both axes; a stack missing either one is
		// a plain 3D image, not a hyperstack.
		t, z = metaFrames, metaSlices
		if t > 0 && z > 0 && metaImages > 0 && metaImages != t*z {
			contract.LogWarn("ImageJ metadata mismatch",
				fmt.Errorf("images=%d but frames=%d slices=%d", metaImages, t, z))
		}
	case t > 0 && z == 0 && total%t == 0:
		z = total / t
	case z > 0 && t == 0 && total%z == 0:
		t = total / z
	}
	if t <= 0 || z <= 0 {
		return nil, ErrNotHyperstack
	}
	if t*z != total {
		return nil, fmt.Errorf("%d pages do not fit %d frames x %d slices", total, t, z)
	}

	h, w := pages[0].height, pages[0].width
	if h <= 0 || w <= 0 {
		return nil, fmt.Errorf("invalid page dimensions %dx%d", w, h)
	}
	vol := schema.NewVolume(t, z, h, w)
	for i, p := range pages {
		if p.height != h || p.width != w {
			return nil, fmt.Errorf("page %d is %dx%d, expected %dx%d", i, p.width, p.height, w, h)
		}
		plane, err := r.decodePlane(p)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		copy(vol.Pix[i*h*w:(i+1)*h*w], plane)
	}
	return vol, nil
}
