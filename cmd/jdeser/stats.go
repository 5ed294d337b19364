package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	javaio "github.com/lujjjh/go-jdeserialize"
	"github.com/lujjjh/go-jdeserialize/internal/config"
)

// stats counts what a decoded stream contains. Kinds counts the top-level
// items; Instances counts every object reachable from them, per class.
type stats struct {
	TopLevel   int
	Kinds      map[javaio.ContentKind]int
	Classes    int
	Proxies    int
	Exceptions int
	Instances  map[string]int
}

func collectStats(result *javaio.Result) *stats {
	st := &stats{
		TopLevel:  len(result.Objects),
		Kinds:     make(map[javaio.ContentKind]int),
		Instances: make(map[string]int),
	}
	for _, cd := range result.Classes {
		if cd.Type == javaio.ClassDescProxy {
			st.Proxies++
			continue
		}
		st.Classes++
	}
	seen := make(map[javaio.Content]struct{})
	for _, obj := range result.Objects {
		st.Kinds[obj.Kind()]++
		st.walk(obj, seen)
	}
	return st
}

func (st *stats) walk(value any, seen map[javaio.Content]struct{}) {
	c, ok := value.(javaio.Content)
	if !ok || c == nil {
		return
	}
	if _, ok := seen[c]; ok {
		return
	}
	seen[c] = struct{}{}
	switch v := c.(type) {
	case *javaio.Instance:
		st.Instances[v.ClassName()]++
		if v.IsExceptionObject() {
			st.Exceptions++
		}
		for _, fields := range v.FieldData.AllFromFront() {
			for _, fv := range fields.AllFromFront() {
				st.walk(fv, seen)
			}
		}
		for _, contents := range v.Annotations.AllFromFront() {
			for _, a := range contents {
				st.walk(a, seen)
			}
		}
	case *javaio.ArrayContent:
		for _, e := range v.Data {
			st.walk(e, seen)
		}
	}
}

// palette styles the stats table; every style is a no-op without color.
type palette struct {
	title lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
}

func newPalette(w io.Writer, mode string) palette {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case config.ColorAlways:
		r.SetColorProfile(termenv.ANSI256)
	case config.ColorNever:
		r.SetColorProfile(termenv.Ascii)
	default:
		if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
			r.SetColorProfile(termenv.Ascii)
		}
	}
	return palette{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		label: r.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		value: r.NewStyle().Foreground(lipgloss.Color("#98FB98")),
	}
}

func (st *stats) render(p palette) string {
	var b strings.Builder
	row := func(label string, n int) {
		fmt.Fprintf(&b, "  %s %s\n", p.label.Render(fmt.Sprintf("%-40s", label)), p.value.Render(fmt.Sprint(n)))
	}

	b.WriteString(p.title.Render("stream") + "\n")
	row("top-level items", st.TopLevel)
	for _, k := range sortedKeys(st.Kinds) {
		row(string(k), st.Kinds[k])
	}
	row("class descriptions", st.Classes)
	row("proxy class descriptions", st.Proxies)
	row("exception objects", st.Exceptions)

	if len(st.Instances) > 0 {
		b.WriteString(p.title.Render("instances") + "\n")
		for _, name := range sortedKeys(st.Instances) {
			row(name, st.Instances[name])
		}
	}
	return b.String()
}

func sortedKeys[K ~string](m map[K]int) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
