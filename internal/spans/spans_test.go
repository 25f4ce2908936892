package spans

import (
	"context"
	"reflect"
	"testing"

	"github.com/sirkon/deepequal"

	"github.com/sirkon/cadlint/internal/cparse"
	"github.com/sirkon/cadlint/internal/syntax"
)

func span(start, end int) syntax.Span {
	return syntax.Span{Start: syntax.Pos{Offset: start}, End: syntax.Pos{Offset: end}}
}

func TestPath(t *testing.T) {
	idx := New()
	idx.Add(span(0, 100), "f")
	idx.Add(span(10, 50), "outer")
	idx.Add(span(20, 30), "inner")
	idx.Add(span(60, 90), "second")
	idx.Add(span(100, 120), "g")

	tests := []struct {
		name   string
		offset int
		want   []string
	}{
		{
			name:   "function body",
			offset: 5,
			want:   []string{"f"},
		},
		{
			name:   "nested",
			offset: 25,
			want:   []string{"f", "outer", "inner"},
		},
		{
			name:   "start of span",
			offset: 20,
			want:   []string{"f", "outer", "inner"},
		},
		{
			name:   "end is excluded",
			offset: 30,
			want:   []string{"f", "outer"},
		},
		{
			name:   "sibling",
			offset: 75,
			want:   []string{"f", "second"},
		},
		{
			name:   "next function",
			offset: 100,
			want:   []string{"g"},
		},
		{
			name:   "outside",
			offset: 130,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.Path(tt.offset)
			if !reflect.DeepEqual(tt.want, got) {
				deepequal.SideBySide(t, "path", tt.want, got)
			}
		})
	}
}

func TestEnclosingAddedLater(t *testing.T) {
	idx := New()
	idx.Add(span(20, 30), "inner")
	idx.Add(span(10, 50), "outer")

	want := []string{"outer", "inner"}
	if got := idx.Path(25); !reflect.DeepEqual(want, got) {
		deepequal.SideBySide(t, "path", want, got)
	}
	if got, ok := idx.Innermost(40); !ok || got != "outer" {
		t.Errorf("outer expected, got %q", got)
	}
}

func TestPartialOverlap(t *testing.T) {
	idx := New()
	idx.Add(span(10, 50), "a")

	defer func() {
		if recover() == nil {
			t.Error("panic expected for partially overlapping spans")
		}
	}()
	idx.Add(span(40, 60), "b")
}

func TestBuild(t *testing.T) {
	src := `int f(int x) {
	while (x) {
		x--;
	}
	return x;
}
`
	tu, err := cparse.Parse(context.Background(), "input.c", []byte(src))
	if err != nil {
		t.Fatal(err)
	}

	fn := tu.Decls[0].(*syntax.FuncDef)
	loop := fn.Body.Items[0].(*syntax.While)
	dec := loop.Body.(*syntax.Block).Items[0]

	want := []string{"f", "while@2:2"}
	if got := Build(tu).Path(dec.Pos().Offset); !reflect.DeepEqual(want, got) {
		deepequal.SideBySide(t, "path", want, got)
	}
}
