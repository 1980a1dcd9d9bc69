package llsd

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Decode auto-detects the input dialect (spec §4.1: "the auto-detected
// input dialect (used for item bodies)") by sniffing the first
// non-whitespace byte: '<' means XML, anything else is the compact
// notation dialect ('!' undef, i/r/s/u/d/l scalars, [ ] arrays, { } maps).
func Decode(data []byte) (Value, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "<") {
		return DecodeXML(data)
	}
	v, _, err := decodeNotation(trimmed)
	return v, err
}

func decodeNotation(s string) (Value, string, error) {
	s = strings.TrimLeft(s, " \t\r\n")
	if s == "" {
		return Value{}, "", fmt.Errorf("%w: empty notation input", ErrUnsupportedKind)
	}
	switch s[0] {
	case '!':
		return Undef(), s[1:], nil
	case '1':
		return Boolean(true), s[1:], nil
	case '0':
		return Boolean(false), s[1:], nil
	case 'i':
		return scanScalar(s[1:], func(tok string) (Value, error) {
			n, err := strconv.ParseInt(tok, 10, 64)
			return Integer(n), err
		})
	case 'r':
		return scanScalar(s[1:], func(tok string) (Value, error) {
			f, err := strconv.ParseFloat(tok, 64)
			return Real(f), err
		})
	case 'u':
		return scanScalar(s[1:], func(tok string) (Value, error) {
			id, err := uuid.Parse(tok)
			return UUIDValue(id), err
		})
	case 'd':
		rest, str, err := readQuoted(s[1:])
		if err != nil {
			return Value{}, "", err
		}
		t, err := time.Parse(xmlDateLayout, str)
		if err != nil {
			return Value{}, "", err
		}
		return Date(t), rest, nil
	case 'l':
		rest, str, err := readQuoted(s[1:])
		if err != nil {
			return Value{}, "", err
		}
		return URI(str), rest, nil
	case 's', '\'', '"':
		start := s
		if s[0] == 's' {
			start = s[1:]
		}
		rest, str, err := readQuoted(start)
		if err != nil {
			return Value{}, "", err
		}
		return String(str), rest, nil
	case 'b':
		rest, str, err := readQuoted(s[1:])
		if err != nil {
			return Value{}, "", err
		}
		b, err := base64.StdEncoding.DecodeString(str)
		if err != nil {
			return Value{}, "", err
		}
		return Binary(b), rest, nil
	case '[':
		return decodeNotationArray(s[1:])
	case '{':
		return decodeNotationMap(s[1:])
	}
	return Value{}, "", fmt.Errorf("%w: unrecognized notation token %q", ErrUnsupportedKind, s[:1])
}

// scanScalar reads up to the next structural delimiter and hands the
// token to parse.
func scanScalar(s string, parse func(string) (Value, error)) (Value, string, error) {
	i := 0
	for i < len(s) && strings.IndexByte(",]}", s[i]) == -1 {
		i++
	}
	v, err := parse(strings.TrimSpace(s[:i]))
	if err != nil {
		return Value{}, "", err
	}
	return v, s[i:], nil
}

// readQuoted reads a '...' or "..." quoted string, the notation dialect's
// only string framing.
func readQuoted(s string) (rest, value string, err error) {
	if len(s) == 0 {
		return "", "", fmt.Errorf("%w: expected quote", ErrUnsupportedKind)
	}
	q := s[0]
	if q != '\'' && q != '"' {
		return "", "", fmt.Errorf("%w: expected quote, got %q", ErrUnsupportedKind, s[:1])
	}
	var b strings.Builder
	i := 1
	for i < len(s) {
		if s[i] == '\\' && i+1 < len(s) {
			b.WriteByte(s[i+1])
			i += 2
			continue
		}
		if s[i] == q {
			return s[i+1:], b.String(), nil
		}
		b.WriteByte(s[i])
		i++
	}
	return "", "", fmt.Errorf("%w: unterminated quoted string", ErrUnsupportedKind)
}

func decodeNotationArray(s string) (Value, string, error) {
	var arr []Value
	s = strings.TrimLeft(s, " \t\r\n")
	if strings.HasPrefix(s, "]") {
		return Array(arr...), s[1:], nil
	}
	for {
		v, rest, err := decodeNotation(s)
		if err != nil {
			return Value{}, "", err
		}
		arr = append(arr, v)
		rest = strings.TrimLeft(rest, " \t\r\n")
		if strings.HasPrefix(rest, ",") {
			s = rest[1:]
			continue
		}
		if strings.HasPrefix(rest, "]") {
			return Array(arr...), rest[1:], nil
		}
		return Value{}, "", fmt.Errorf("%w: expected ',' or ']' in array", ErrUnsupportedKind)
	}
}

func decodeNotationMap(s string) (Value, string, error) {
	m := make(map[string]Value)
	s = strings.TrimLeft(s, " \t\r\n")
	if strings.HasPrefix(s, "}") {
		return Map(m), s[1:], nil
	}
	for {
		s = strings.TrimLeft(s, " \t\r\n")
		rest, key, err := readQuoted(s)
		if err != nil {
			return Value{}, "", err
		}
		rest = strings.TrimLeft(rest, " \t\r\n")
		if !strings.HasPrefix(rest, ":") {
			return Value{}, "", fmt.Errorf("%w: expected ':' after map key", ErrUnsupportedKind)
		}
		v, rest2, err := decodeNotation(rest[1:])
		if err != nil {
			return Value{}, "", err
		}
		m[key] = v
		rest2 = strings.TrimLeft(rest2, " \t\r\n")
		if strings.HasPrefix(rest2, ",") {
			s = rest2[1:]
			continue
		}
		if strings.HasPrefix(rest2, "}") {
			return Map(m), rest2[1:], nil
		}
		return Value{}, "", fmt.Errorf("%w: expected ',' or '}' in map", ErrUnsupportedKind)
	}
}

// EncodeNotation writes the compact notation dialect, the canonical form
// this package's own Decode round-trips against.
func EncodeNotation(v Value) string {
	var b strings.Builder
	writeNotation(&b, v)
	return b.String()
}

func writeNotation(b *strings.Builder, v Value) {
	switch v.Kind {
	case KindUndef:
		b.WriteByte('!')
	case KindBoolean:
		if v.Bool {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	case KindInteger:
		fmt.Fprintf(b, "i%d", v.Int)
	case KindReal:
		fmt.Fprintf(b, "r%s", strconv.FormatFloat(v.Real, 'g', -1, 64))
	case KindUUID:
		fmt.Fprintf(b, "u%s", v.UUID.String())
	case KindString:
		fmt.Fprintf(b, "s'%s'", escapeNotation(v.Str))
	case KindURI:
		fmt.Fprintf(b, "l'%s'", escapeNotation(v.URI))
	case KindDate:
		fmt.Fprintf(b, "d'%s'", v.Date.UTC().Format(xmlDateLayout))
	case KindBinary:
		fmt.Fprintf(b, "b'%s'", base64.StdEncoding.EncodeToString(v.Binary))
	case KindArray:
		b.WriteByte('[')
		for i, c := range v.Array {
			if i > 0 {
				b.WriteByte(',')
			}
			writeNotation(b, c)
		}
		b.WriteByte(']')
	case KindMap:
		b.WriteByte('{')
		first := true
		for k, c := range v.Map {
			if !first {
				b.WriteByte(',')
			}
			first = false
			fmt.Fprintf(b, "'%s':", escapeNotation(k))
			writeNotation(b, c)
		}
		b.WriteByte('}')
	}
}

func escapeNotation(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return s
}
