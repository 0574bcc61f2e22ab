package boundary

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/rotisserie/eris"

	"github.com/fotoflow/revgeo/internal/geometry"
)

// ErrBadFormat marks a boundary file whose contents do not match the
// expected layout. It is distinct from plain I/O failure so callers can
// choose to regenerate the file from source data instead of treating the
// problem as transient.
var ErrBadFormat = eris.New("boundary: malformed boundary file")

var fileMagic = [4]byte{'G', 'B', 'N', 'D'}

const fileVersion = 1

// Limits that a well-formed file never exceeds; anything larger means the
// length fields are garbage and the read must stop before allocating.
const (
	maxCountries   = 1 << 16
	maxPolygons    = 1 << 20
	maxRings       = 1 << 20
	maxRingPoints  = 1 << 24
	maxCacheCells  = 1 << 26
	maxStringBytes = 1 << 16
)

// WriteFile serializes countries and both cache maps into a single binary
// container at path. Ring points are stored in their quantized int16 form.
// Country order is preserved; map iteration order is not significant because
// ReadFile rebuilds maps keyed by cell.
func WriteFile(path string, countries []*geometry.CountryBoundary, geohashCache map[string]string, borderCells map[string][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "boundary: create %s", path)
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriter(f)

	if _, err := w.Write(fileMagic[:]); err != nil {
		return eris.Wrap(err, "boundary: write magic")
	}
	if err := w.WriteByte(fileVersion); err != nil {
		return eris.Wrap(err, "boundary: write version")
	}

	if err := writeUvarint(w, uint64(len(countries))); err != nil {
		return err
	}
	for _, c := range countries {
		if err := writeCountry(w, c); err != nil {
			return err
		}
	}

	if err := writeUvarint(w, uint64(len(geohashCache))); err != nil {
		return err
	}
	for cell, code := range geohashCache {
		if err := writeString(w, cell); err != nil {
			return err
		}
		if err := writeString(w, code); err != nil {
			return err
		}
	}

	if err := writeUvarint(w, uint64(len(borderCells))); err != nil {
		return err
	}
	for cell, codes := range borderCells {
		if err := writeString(w, cell); err != nil {
			return err
		}
		if err := writeUvarint(w, uint64(len(codes))); err != nil {
			return err
		}
		for _, code := range codes {
			if err := writeString(w, code); err != nil {
				return err
			}
		}
	}

	if err := w.Flush(); err != nil {
		return eris.Wrapf(err, "boundary: flush %s", path)
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "boundary: close %s", path)
	}
	return nil
}

// ReadFile loads a container written by WriteFile. Structural problems are
// reported as ErrBadFormat; a missing file or short read surfaces as an
// ordinary I/O error.
func ReadFile(path string) ([]*geometry.CountryBoundary, map[string]string, map[string][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, eris.Wrapf(err, "boundary: open %s", path)
	}
	defer func() { _ = f.Close() }()

	r := bufio.NewReader(f)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, nil, nil, eris.Wrap(ErrBadFormat, "missing magic")
	}
	if magic != fileMagic {
		return nil, nil, nil, eris.Wrapf(ErrBadFormat, "bad magic %q", magic[:])
	}
	version, err := r.ReadByte()
	if err != nil {
		return nil, nil, nil, eris.Wrap(ErrBadFormat, "missing version")
	}
	if version != fileVersion {
		return nil, nil, nil, eris.Wrapf(ErrBadFormat, "unsupported version %d", version)
	}

	nCountries, err := readCount(r, maxCountries, "country count")
	if err != nil {
		return nil, nil, nil, err
	}
	countries := make([]*geometry.CountryBoundary, 0, nCountries)
	for i := 0; i < nCountries; i++ {
		c, err := readCountry(r)
		if err != nil {
			return nil, nil, nil, err
		}
		countries = append(countries, c)
	}

	nCache, err := readCount(r, maxCacheCells, "cache entry count")
	if err != nil {
		return nil, nil, nil, err
	}
	geohashCache := make(map[string]string, nCache)
	for i := 0; i < nCache; i++ {
		cell, err := readString(r)
		if err != nil {
			return nil, nil, nil, err
		}
		code, err := readString(r)
		if err != nil {
			return nil, nil, nil, err
		}
		geohashCache[cell] = code
	}

	nBorder, err := readCount(r, maxCacheCells, "border entry count")
	if err != nil {
		return nil, nil, nil, err
	}
	borderCells := make(map[string][]string, nBorder)
	for i := 0; i < nBorder; i++ {
		cell, err := readString(r)
		if err != nil {
			return nil, nil, nil, err
		}
		nCodes, err := readCount(r, maxCountries, "border candidate count")
		if err != nil {
			return nil, nil, nil, err
		}
		codes := make([]string, 0, nCodes)
		for j := 0; j < nCodes; j++ {
			code, err := readString(r)
			if err != nil {
				return nil, nil, nil, err
			}
			codes = append(codes, code)
		}
		borderCells[cell] = codes
	}

	return countries, geohashCache, borderCells, nil
}

func writeCountry(w *bufio.Writer, c *geometry.CountryBoundary) error {
	if err := writeString(w, c.Code); err != nil {
		return err
	}
	if err := writeString(w, c.Name); err != nil {
		return err
	}
	if err := writeString(w, c.Alpha3); err != nil {
		return err
	}
	if err := writeUvarint(w, uint64(len(c.Polygons))); err != nil {
		return err
	}
	for _, poly := range c.Polygons {
		if err := writeUvarint(w, uint64(1+len(poly.Holes))); err != nil {
			return err
		}
		if err := writeRing(w, poly.Exterior); err != nil {
			return err
		}
		for _, hole := range poly.Holes {
			if err := writeRing(w, hole); err != nil {
				return err
			}
		}
	}
	return nil
}

func readCountry(r *bufio.Reader) (*geometry.CountryBoundary, error) {
	code, err := readString(r)
	if err != nil {
		return nil, err
	}
	name, err := readString(r)
	if err != nil {
		return nil, err
	}
	alpha3, err := readString(r)
	if err != nil {
		return nil, err
	}
	nPolys, err := readCount(r, maxPolygons, "polygon count")
	if err != nil {
		return nil, err
	}
	polygons := make([]geometry.Polygon, 0, nPolys)
	for i := 0; i < nPolys; i++ {
		nRings, err := readCount(r, maxRings, "ring count")
		if err != nil {
			return nil, err
		}
		if nRings == 0 {
			return nil, eris.Wrapf(ErrBadFormat, "country %s: polygon without exterior ring", code)
		}
		var poly geometry.Polygon
		for j := 0; j < nRings; j++ {
			ring, err := readRing(r, j > 0)
			if err != nil {
				return nil, err
			}
			if j == 0 {
				poly.Exterior = ring
			} else {
				poly.Holes = append(poly.Holes, ring)
			}
		}
		polygons = append(polygons, poly)
	}
	return geometry.NewCountryBoundary(code, name, alpha3, polygons)
}

func writeRing(w *bufio.Writer, ring geometry.PolygonRing) error {
	if err := writeUvarint(w, uint64(len(ring.Points))); err != nil {
		return err
	}
	var buf [4]byte
	for _, p := range ring.Points {
		q := p.Quantize()
		binary.LittleEndian.PutUint16(buf[0:2], uint16(q.Lat))
		binary.LittleEndian.PutUint16(buf[2:4], uint16(q.Lon))
		if _, err := w.Write(buf[:]); err != nil {
			return eris.Wrap(err, "boundary: write ring point")
		}
	}
	return nil
}

func readRing(r *bufio.Reader, hole bool) (geometry.PolygonRing, error) {
	nPoints, err := readCount(r, maxRingPoints, "ring point count")
	if err != nil {
		return geometry.PolygonRing{}, err
	}
	ring := geometry.PolygonRing{
		Points: make([]geometry.GeoPoint, 0, nPoints),
		Hole:   hole,
	}
	var buf [4]byte
	for i := 0; i < nPoints; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return geometry.PolygonRing{}, eris.Wrap(ErrBadFormat, "truncated ring point")
		}
		q := geometry.QuantizedPoint{
			Lat: int16(binary.LittleEndian.Uint16(buf[0:2])),
			Lon: int16(binary.LittleEndian.Uint16(buf[2:4])),
		}
		ring.Points = append(ring.Points, q.Dequantize())
	}
	return ring, nil
}

func writeUvarint(w *bufio.Writer, v uint64) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	if _, err := w.Write(buf[:n]); err != nil {
		return eris.Wrap(err, "boundary: write length")
	}
	return nil
}

func readCount(r *bufio.Reader, limit uint64, what string) (int, error) {
	v, err := binary.ReadUvarint(r)
	if err != nil {
		return 0, eris.Wrapf(ErrBadFormat, "truncated %s", what)
	}
	if v > limit {
		return 0, eris.Wrapf(ErrBadFormat, "%s %d exceeds limit", what, v)
	}
	if v > math.MaxInt32 {
		return 0, eris.Wrapf(ErrBadFormat, "%s %d overflows", what, v)
	}
	return int(v), nil
}

func writeString(w *bufio.Writer, s string) error {
	if err := writeUvarint(w, uint64(len(s))); err != nil {
		return err
	}
	if _, err := w.WriteString(s); err != nil {
		return eris.Wrap(err, "boundary: write string")
	}
	return nil
}

func readString(r *bufio.Reader) (string, error) {
	n, err := readCount(r, maxStringBytes, "string length")
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", eris.Wrap(ErrBadFormat, "truncated string")
	}
	return string(buf), nil
}
