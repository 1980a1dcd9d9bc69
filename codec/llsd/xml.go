package llsd

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const xmlDateLayout = "2006-01-02T15:04:05Z"

// element is the generic XML element shape every LLSD node parses into
// before being turned into a typed Value; LLSD's XML dialect nests a tag
// naming the type directly (<map>, <integer>, ...) so a single recursive
// descent over xml.Decoder tokens is sufficient — no need for per-type
// struct tags.
type element struct {
	XMLName xml.Name
	Content string    `xml:",chardata"`
	Nodes   []element `xml:",any"`
}

// DecodeXML parses an LLSD XML document (the dialect used for capability
// request/response bodies, spec §4.1).
func DecodeXML(data []byte) (Value, error) {
	var doc struct {
		XMLName xml.Name `xml:"llsd"`
		Root    element  `xml:",any"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return Value{}, fmt.Errorf("llsd: xml decode: %w", err)
	}
	return elementToValue(doc.Root)
}

func elementToValue(e element) (Value, error) {
	switch e.XMLName.Local {
	case "undef":
		return Undef(), nil
	case "string":
		return String(e.Content), nil
	case "integer":
		i, err := strconv.ParseInt(trimSpace(e.Content), 10, 64)
		if err != nil {
			if trimSpace(e.Content) == "" {
				return Integer(0), nil
			}
			return Value{}, fmt.Errorf("llsd: bad integer %q: %w", e.Content, err)
		}
		return Integer(i), nil
	case "real":
		s := trimSpace(e.Content)
		if s == "" {
			return Real(0), nil
		}
		r, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, fmt.Errorf("llsd: bad real %q: %w", e.Content, err)
		}
		return Real(r), nil
	case "boolean":
		s := trimSpace(e.Content)
		return Boolean(s == "true" || s == "1"), nil
	case "uuid":
		s := trimSpace(e.Content)
		if s == "" {
			return UUIDValue(uuid.Nil), nil
		}
		u, err := uuid.Parse(s)
		if err != nil {
			return Value{}, fmt.Errorf("llsd: bad uuid %q: %w", e.Content, err)
		}
		return UUIDValue(u), nil
	case "binary":
		b, err := base64.StdEncoding.DecodeString(trimSpace(e.Content))
		if err != nil {
			return Value{}, fmt.Errorf("llsd: bad binary: %w", err)
		}
		return Binary(b), nil
	case "date":
		s := trimSpace(e.Content)
		if s == "" {
			return Date(time.Time{}), nil
		}
		t, err := time.Parse(xmlDateLayout, s)
		if err != nil {
			return Value{}, fmt.Errorf("llsd: bad date %q: %w", e.Content, err)
		}
		return Date(t), nil
	case "uri":
		return URI(e.Content), nil
	case "array":
		arr := make([]Value, 0, len(e.Nodes))
		for _, c := range e.Nodes {
			v, err := elementToValue(c)
			if err != nil {
				return Value{}, err
			}
			arr = append(arr, v)
		}
		return Array(arr...), nil
	case "map":
		m := make(map[string]Value, len(e.Nodes)/2)
		for i := 0; i+1 < len(e.Nodes); i += 2 {
			key := e.Nodes[i]
			if key.XMLName.Local != "key" {
				return Value{}, fmt.Errorf("llsd: expected <key>, got <%s>", key.XMLName.Local)
			}
			v, err := elementToValue(e.Nodes[i+1])
			if err != nil {
				return Value{}, err
			}
			m[key.Content] = v
		}
		return Map(m), nil
	}
	return Value{}, fmt.Errorf("%w: <%s>", ErrUnsupportedKind, e.XMLName.Local)
}

func trimSpace(s string) string {
	return string(bytes.TrimSpace([]byte(s)))
}

// EncodeXML is the inverse of DecodeXML; every value DecodeXML produces
// re-encodes to a semantically equal value (spec §4.1 round-trip
// requirement), though not necessarily byte-identical XML.
func EncodeXML(v Value) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("<llsd>")
	writeValue(&buf, v)
	buf.WriteString("</llsd>")
	return buf.Bytes()
}

func writeValue(buf *bytes.Buffer, v Value) {
	switch v.Kind {
	case KindUndef:
		buf.WriteString("<undef />")
	case KindString:
		buf.WriteString("<string>")
		xml.EscapeText(buf, []byte(v.Str))
		buf.WriteString("</string>")
	case KindInteger:
		fmt.Fprintf(buf, "<integer>%d</integer>", v.Int)
	case KindReal:
		fmt.Fprintf(buf, "<real>%s</real>", strconv.FormatFloat(v.Real, 'g', -1, 64))
	case KindBoolean:
		if v.Bool {
			buf.WriteString("<boolean>true</boolean>")
		} else {
			buf.WriteString("<boolean>false</boolean>")
		}
	case KindUUID:
		fmt.Fprintf(buf, "<uuid>%s</uuid>", v.UUID.String())
	case KindBinary:
		fmt.Fprintf(buf, "<binary encoding=\"base64\">%s</binary>", base64.StdEncoding.EncodeToString(v.Binary))
	case KindDate:
		fmt.Fprintf(buf, "<date>%s</date>", v.Date.UTC().Format(xmlDateLayout))
	case KindURI:
		buf.WriteString("<uri>")
		xml.EscapeText(buf, []byte(v.URI))
		buf.WriteString("</uri>")
	case KindArray:
		buf.WriteString("<array>")
		for _, c := range v.Array {
			writeValue(buf, c)
		}
		buf.WriteString("</array>")
	case KindMap:
		buf.WriteString("<map>")
		for k, c := range v.Map {
			fmt.Fprintf(buf, "<key>%s</key>", k)
			writeValue(buf, c)
		}
		buf.WriteString("</map>")
	}
}
