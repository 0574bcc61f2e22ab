package gazetteer

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// GeoNames dump column positions. The format is a tab-separated line per
// place with nineteen columns; only the ones below matter here.
const (
	colID         = 0
	colName       = 1
	colLat        = 4
	colLon        = 5
	colClass      = 6
	colCountry    = 8
	colAdmin1     = 10
	colAdmin2     = 11
	colAdmin3     = 12
	colPopulation = 14
	minColumns    = 15
)

// maxLineBytes bounds a single gazetteer line. The alternate-names column
// can run long; one megabyte covers everything seen in real dumps.
const maxLineBytes = 1 << 20

// ParseLine converts one GeoNames TSV line into a Place. Comment lines
// (leading '#') and lines with too few columns are rejected.
func ParseLine(line string) (Place, error) {
	if strings.HasPrefix(line, "#") {
		return Place{}, eris.New("gazetteer: comment line")
	}
	cols := strings.Split(line, "\t")
	if len(cols) < minColumns {
		return Place{}, eris.Errorf("gazetteer: %d columns, want at least %d", len(cols), minColumns)
	}

	id, err := strconv.ParseInt(cols[colID], 10, 64)
	if err != nil {
		return Place{}, eris.Wrap(err, "gazetteer: parse id")
	}
	lat, err := strconv.ParseFloat(cols[colLat], 64)
	if err != nil {
		return Place{}, eris.Wrap(err, "gazetteer: parse latitude")
	}
	lon, err := strconv.ParseFloat(cols[colLon], 64)
	if err != nil {
		return Place{}, eris.Wrap(err, "gazetteer: parse longitude")
	}

	var class FeatureClass
	if cols[colClass] != "" {
		class = ParseFeatureClass(cols[colClass][0])
	}

	// Population is optional in the dumps; treat garbage as zero.
	population, _ := strconv.ParseInt(cols[colPopulation], 10, 64)

	return Place{
		ID:          id,
		Name:        cols[colName],
		Lat:         lat,
		Lon:         lon,
		Class:       class,
		CountryCode: cols[colCountry],
		Admin1:      cols[colAdmin1],
		Admin2:      cols[colAdmin2],
		Admin3:      cols[colAdmin3],
		Population:  population,
	}, nil
}

// ParseAll streams places from a GeoNames-style reader, skipping malformed
// lines. It checks for cancellation periodically so multi-megabyte dumps
// do not block shutdown.
func ParseAll(ctx context.Context, r io.Reader) ([]Place, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var places []Place
	var skipped int
	var lineNo int
	for scanner.Scan() {
		lineNo++
		if lineNo%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, skipped, err
			}
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		p, err := ParseLine(line)
		if err != nil {
			skipped++
			continue
		}
		places = append(places, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, eris.Wrap(err, "gazetteer: scan")
	}
	return places, skipped, nil
}
