// Package itemmeta parses the legacy newline-separated ItemData format
// used for "parameters" and "textures" metadata blobs. Per spec §9 (Open
// Question), the byte-exact line-consumption order of the original parser
// is preserved, but the result is kept as opaque key/value pairs rather
// than a typed struct until a schema is agreed for this undocumented
// format. Grounded on
// original_source/crates/messages/src/utils/item_metadata.rs.
package itemmeta

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrUnexpectedEOF = errors.New("itemmeta: unexpected end of data")
	ErrMissingField  = errors.New("itemmeta: missing tab-delimited field")
)

// Parsed is the opaque result of walking a legacy item body: every line of
// the body as split on newlines, plus the handful of tab-delimited fields
// the original parser pulls out by fixed line position.
type Parsed struct {
	Lines  []string
	Fields map[string]string
}

type lineWalker struct {
	lines []string
	pos   int
}

func (w *lineWalker) next() (string, error) {
	if w.pos >= len(w.lines) {
		return "", ErrUnexpectedEOF
	}
	l := strings.TrimSpace(w.lines[w.pos])
	w.pos++
	return l, nil
}

// tabField returns the field at index n (0-based) of a tab-split line, the
// same way the original splits on '\t' and takes nth(1) for "key\tvalue"
// formatted lines.
func tabField(line string, n int) (string, error) {
	parts := strings.Split(line, "\t")
	if n >= len(parts) {
		return "", ErrMissingField
	}
	return parts[n], nil
}

// Parse walks a legacy item body in the exact line order the original
// parser does: version, name, a permissions block (five hex masks and
// four uuids), then a sale_info block yielding a price. Fields holds the
// extracted values (the hex masks converted to decimal); the raw lines
// are kept in Lines so later schema work has the original bytes to work
// from.
func Parse(data []byte) (Parsed, error) {
	w := &lineWalker{lines: strings.Split(string(data), "\n")}
	fields := make(map[string]string)

	version, err := w.next()
	if err != nil {
		return Parsed{}, err
	}
	fields["version"] = version

	name, err := w.next()
	if err != nil {
		return Parsed{}, err
	}
	fields["name"] = name

	if _, err := w.next(); err != nil { // "permissions 0"
		return Parsed{}, err
	}
	if _, err := w.next(); err != nil { // "{"
		return Parsed{}, err
	}

	parseHexLine := func(label string) error {
		line, err := w.next()
		if err != nil {
			return err
		}
		hex, err := tabField(line, 1)
		if err != nil {
			return err
		}
		v, err := strconv.ParseInt(hex, 16, 32)
		if err != nil {
			return err
		}
		fields[label] = strconv.FormatInt(v, 10)
		return nil
	}
	for _, label := range []string{"base_mask", "owner_mask", "group_mask", "everyone_mask", "next_owner_mask"} {
		if err := parseHexLine(label); err != nil {
			return Parsed{}, err
		}
	}

	parseUUIDLine := func(label string) error {
		line, err := w.next()
		if err != nil {
			return err
		}
		id, err := tabField(line, 1)
		if err != nil {
			return err
		}
		fields[label] = id
		return nil
	}
	for _, label := range []string{"creator_id", "owner_id", "last_owner_id", "group_id"} {
		if err := parseUUIDLine(label); err != nil {
			return Parsed{}, err
		}
	}

	if _, err := w.next(); err != nil { // "}"
		return Parsed{}, err
	}
	if _, err := w.next(); err != nil { // "sale_info 0"
		return Parsed{}, err
	}
	if _, err := w.next(); err != nil { // "{"
		return Parsed{}, err
	}
	if _, err := w.next(); err != nil { // sale_type label line
		return Parsed{}, err
	}

	priceLine, err := w.next()
	if err != nil {
		return Parsed{}, err
	}
	priceStr, err := tabField(priceLine, 1)
	if err != nil {
		return Parsed{}, err
	}
	fields["price"] = priceStr

	return Parsed{Lines: w.lines, Fields: fields}, nil
}
