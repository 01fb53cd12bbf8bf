package runtime

// Deterministic allocation sizes charged against the memory budget. They do
// not track the Go heap; they only need to be stable across runs.
const (
	NumberFootprint         int64 = 16
	TextBaseFootprint       int64 = 16
	ListBaseFootprint       int64 = 24
	ListElementFootprint    int64 = 16
	RecordBaseFootprint     int64 = 32
	RecordFieldFootprint    int64 = 32
	VariantFootprint        int64 = 32
	ClosureBaseFootprint    int64 = 48
	ClosureCaptureFootprint int64 = 16
)

func TextFootprint(s string) int64 { return TextBaseFootprint + int64(len(s)) }

func ListFootprint(n int) int64 { return ListBaseFootprint + ListElementFootprint*int64(n) }

func RecordFootprint(n int) int64 { return RecordBaseFootprint + RecordFieldFootprint*int64(n) }

func ClosureFootprint(captures int) int64 {
	return ClosureBaseFootprint + ClosureCaptureFootprint*int64(captures)
}

// Footprint is the shallow allocation size of v: the cost of constructing v
// when its components already exist.
func Footprint(v Value) int64 {
	switch tv := v.(type) {
	case NumberValue:
		return NumberFootprint
	case TextValue:
		return TextFootprint(tv.Val)
	case AtomValue:
		return TextFootprint(tv.Name)
	case *ListValue:
		return ListFootprint(len(tv.Elements))
	case *RecordValue:
		return RecordFootprint(len(tv.Entries))
	case VariantValue:
		return VariantFootprint
	}
	return 0
}

// DeepFootprint sums the footprint of v and everything it contains.
func DeepFootprint(v Value) int64 {
	total := Footprint(v)
	switch tv := v.(type) {
	case *ListValue:
		for _, el := range tv.Elements {
			total += DeepFootprint(el)
		}
	case *RecordValue:
		for _, entry := range tv.Entries {
			total += DeepFootprint(entry.Value)
		}
	case VariantValue:
		if tv.Payload != nil {
			total += DeepFootprint(tv.Payload)
		}
	}
	return total
}
