package ast

import "fmt"

// SetSpan annotates the node with the provided span.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setSpan(Span) }); ok {
		setter.setSpan(span)
	}
}

// ZeroSpan returns an empty span value.
func ZeroSpan() Span {
	return Span{}
}

// MergeSpans returns the smallest span covering both inputs. Zero spans are
// ignored so partially located nodes still compose.
func MergeSpans(head, tail Span) Span {
	if head == (Span{}) {
		return tail
	}
	if tail == (Span{}) {
		return head
	}
	out := head
	if tail.End.Offset > out.End.Offset {
		out.End = tail.End
	}
	if tail.Start.Offset < out.Start.Offset {
		out.Start = tail.Start
	}
	return out
}

// String renders the span start as line:column.
func (s Span) String() string {
	if s == (Span{}) {
		return "<unknown>"
	}
	return fmt.Sprintf("%d:%d", s.Start.Line, s.Start.Column)
}

// Contains reports whether the position falls inside the span.
func (s Span) Contains(pos Position) bool {
	return pos.Offset >= s.Start.Offset && pos.Offset < s.End.Offset
}
