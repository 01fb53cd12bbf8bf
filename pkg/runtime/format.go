package runtime

import (
	"strconv"
	"strings"
)

// FormatNumber renders a number the way scripts write it.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Format renders v in surface syntax, e.g. `Ok([0.25, 0.75])`.
func Format(v Value) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v Value) {
	switch tv := v.(type) {
	case nil:
		b.WriteString("<nil>")
	case NumberValue:
		b.WriteString(FormatNumber(tv.Val))
	case TextValue:
		b.WriteString(strconv.Quote(tv.Val))
	case AtomValue:
		b.WriteString(":" + tv.Name)
	case *ListValue:
		b.WriteByte('[')
		for i, el := range tv.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, el)
		}
		b.WriteByte(']')
	case *RecordValue:
		b.WriteByte('{')
		for i, entry := range tv.Entries {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(entry.Name + ": ")
			writeValue(b, entry.Value)
		}
		b.WriteByte('}')
	case VariantValue:
		b.WriteString(tv.Tag)
		if tv.Payload != nil {
			b.WriteByte('(')
			writeValue(b, tv.Payload)
			b.WriteByte(')')
		}
	case Function:
		b.WriteString("<function/" + strconv.Itoa(tv.Arity()) + ">")
	default:
		b.WriteString("<" + v.Kind().String() + ">")
	}
}

// ToNative converts v into plain Go data suitable for JSON encoding.
// Booleans become bool, Null becomes nil, Some(x) becomes x, and other
// variants become {"tag": name, "value": payload}.
func ToNative(v Value) any {
	switch tv := v.(type) {
	case NumberValue:
		return tv.Val
	case TextValue:
		return tv.Val
	case AtomValue:
		return tv.Name
	case *ListValue:
		out := make([]any, len(tv.Elements))
		for i, el := range tv.Elements {
			out[i] = ToNative(el)
		}
		return out
	case *RecordValue:
		out := make(map[string]any, len(tv.Entries))
		for _, entry := range tv.Entries {
			out[entry.Name] = ToNative(entry.Value)
		}
		return out
	case VariantValue:
		switch tv.Tag {
		case "True":
			return true
		case "False":
			return false
		case "Null":
			return nil
		case "Some":
			return ToNative(tv.Payload)
		}
		out := map[string]any{"tag": tv.Tag}
		if tv.Payload != nil {
			out["value"] = ToNative(tv.Payload)
		}
		return out
	}
	return nil
}
