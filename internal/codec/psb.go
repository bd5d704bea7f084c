package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"graphtools/internal/domain"
	"graphtools/internal/mmap"
)

// RGBImage holds the planar 8-bit channels of an image
type RGBImage struct {
	Width  uint64
	Height uint64
	R      []byte
	G      []byte
	B      []byte
}

// Pixels returns Width*Height
func (img *RGBImage) Pixels() uint64 {
	return img.Width * img.Height
}

// DistanceL2 returns the euclidean colour distance of two pixels
func (img *RGBImage) DistanceL2(p, q uint64) float64 {
	dr := float64(img.R[p]) - float64(img.R[q])
	dg := float64(img.G[p]) - float64(img.G[q])
	db := float64(img.B[p]) - float64(img.B[q])
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

const (
	psbSignature   = "8BPS"
	psbVersion     = 2
	psbChannels    = 3
	psbDepth       = 8
	psbModeRGB     = 3
	psbCompression = 0
)

// DecodePSB reads an uncompressed 8-bit RGB Photoshop big document
func DecodePSB(path string) (*RGBImage, error) {
	f, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := parsePSB(f.Bytes())
	if err != nil {
		var pe *domain.ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, fmt.Errorf("decode psb: %w", err)
	}
	return img, nil
}

type beReader struct {
	buf []byte
	pos int
}

func (r *beReader) take(n uint64) ([]byte, error) {
	if n > uint64(len(r.buf)-r.pos) {
		return nil, &domain.ParseError{
			Offset: r.pos,
			Err:    domain.ErrEndOfInput,
			Detail: fmt.Sprintf("need %d bytes, %d left", n, len(r.buf)-r.pos),
		}
	}
	b := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return b, nil
}

func (r *beReader) u16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *beReader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *beReader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *beReader) expect(name string, got, want uint64, offset int) error {
	if got == want {
		return nil
	}
	return &domain.ParseError{
		Offset: offset,
		Err:    domain.ErrMalformedHeader,
		Detail: fmt.Sprintf("%s is %d, only %d is supported", name, got, want),
	}
}

func parsePSB(buf []byte) (*RGBImage, error) {
	r := &beReader{buf: buf}

	sig, err := r.take(4)
	if err != nil {
		return nil, err
	}
	if string(sig) != psbSignature {
		return nil, &domain.ParseError{Err: domain.ErrMalformedHeader, Detail: fmt.Sprintf("bad signature %q", sig)}
	}

	offset := r.pos
	version, err := r.u16()
	if err != nil {
		return nil, err
	}
	if err := r.expect("version", uint64(version), psbVersion, offset); err != nil {
		return nil, err
	}
	if _, err := r.take(6); err != nil {
		return nil, err
	}

	offset = r.pos
	channels, err := r.u16()
	if err != nil {
		return nil, err
	}
	if err := r.expect("channel count", uint64(channels), psbChannels, offset); err != nil {
		return nil, err
	}
	height, err := r.u32()
	if err != nil {
		return nil, err
	}
	width, err := r.u32()
	if err != nil {
		return nil, err
	}
	offset = r.pos
	depth, err := r.u16()
	if err != nil {
		return nil, err
	}
	if err := r.expect("channel depth", uint64(depth), psbDepth, offset); err != nil {
		return nil, err
	}
	offset = r.pos
	mode, err := r.u16()
	if err != nil {
		return nil, err
	}
	if err := r.expect("colour mode", uint64(mode), psbModeRGB, offset); err != nil {
		return nil, err
	}

	// colour mode data, image resources and layer info are skipped
	for _, wide := range []bool{false, false, true} {
		var length uint64
		if wide {
			length, err = r.u64()
		} else {
			var l32 uint32
			l32, err = r.u32()
			length = uint64(l32)
		}
		if err != nil {
			return nil, err
		}
		if _, err := r.take(length); err != nil {
			return nil, err
		}
	}

	offset = r.pos
	compression, err := r.u16()
	if err != nil {
		return nil, err
	}
	if err := r.expect("compression", uint64(compression), psbCompression, offset); err != nil {
		return nil, err
	}

	img := &RGBImage{Width: uint64(width), Height: uint64(height)}
	planes := []*[]byte{&img.R, &img.G, &img.B}
	for _, plane := range planes {
		b, err := r.take(img.Pixels())
		if err != nil {
			return nil, err
		}
		*plane = append([]byte(nil), b...)
	}
	return img, nil
}
