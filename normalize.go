package javaio

import (
	"fmt"
	"strconv"
)

// visited holds the handles on the current normalization path.
type visited map[int32]struct{}

func (v visited) with(handle int32) visited {
	next := make(visited, len(v)+1)
	for h := range v {
		next[h] = struct{}{}
	}
	next[handle] = struct{}{}
	return next
}

// objectNormalizer renders one family of well-known classes.
type objectNormalizer interface {
	matches(instance *Instance) bool
	normalize(n *Normalizer, instance *Instance, path visited) any
}

type classSet map[string]struct{}

func newClassSet(names ...string) classSet {
	s := make(classSet, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

func (s classSet) contains(instance *Instance) bool {
	_, ok := s[instance.ClassName()]
	return ok
}

const vectorClassName = "java.util.Vector"

type vectorNormalizer struct{}

func (vectorNormalizer) matches(instance *Instance) bool {
	return instance.ClassName() == vectorClassName
}

func (vectorNormalizer) normalize(n *Normalizer, instance *Instance, path visited) any {
	data := make([]any, 0)
	count, _ := instance.Field(vectorClassName, "elementCount")
	elements, _ := instance.Field(vectorClassName, "elementData")
	size, ok := count.(int32)
	array, isArray := elements.(*ArrayContent)
	if !ok || !isArray {
		return data
	}
	for i := 0; i < int(size) && i < len(array.Data); i++ {
		data = append(data, n.contentValue(array.Data[i], path))
	}
	return data
}

// annotationValues flattens every non-block-data annotation entry, in the
// order the declaring classes were read.
func annotationValues(n *Normalizer, instance *Instance, path visited) []any {
	data := make([]any, 0)
	for _, values := range instance.Annotations.AllFromFront() {
		for _, value := range values {
			if _, ok := value.(*BlockData); ok {
				continue
			}
			data = append(data, n.contentValue(value, path))
		}
	}
	return data
}

type listNormalizer struct {
	classes classSet
}

func (l listNormalizer) matches(instance *Instance) bool {
	return l.classes.contains(instance)
}

func (listNormalizer) normalize(n *Normalizer, instance *Instance, path visited) any {
	return annotationValues(n, instance, path)
}

type mapNormalizer struct {
	classes classSet
}

func (m mapNormalizer) matches(instance *Instance) bool {
	return m.classes.contains(instance)
}

// normalize pairs up [k1, v1, k2, v2, ...].
func (mapNormalizer) normalize(n *Normalizer, instance *Instance, path visited) any {
	data := annotationValues(n, instance, path)
	result := make(map[string]any, len(data)/2)
	for i := 0; i < len(data); i += 2 {
		var value any
		if i+1 < len(data) {
			value = data[i+1]
		}
		result[mapKey(data[i])] = value
	}
	return result
}

func mapKey(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case nil:
		return "null"
	default:
		return fmt.Sprint(k)
	}
}

type wrappedPrimitiveNormalizer struct {
	classes classSet
}

func (w wrappedPrimitiveNormalizer) matches(instance *Instance) bool {
	return w.classes.contains(instance)
}

func (wrappedPrimitiveNormalizer) normalize(n *Normalizer, instance *Instance, path visited) any {
	for _, fields := range instance.FieldData.AllFromFront() {
		if value, ok := fields.Get("value"); ok {
			return n.contentValue(value, path)
		}
	}
	return nil
}

// Normalizer turns decoded content into plain values: map[string]any,
// []any and scalars. It never mutates the content it reads, so one
// Normalizer may be used from several goroutines.
type Normalizer struct {
	normalizers []objectNormalizer
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		normalizers: []objectNormalizer{
			vectorNormalizer{},
			listNormalizer{classes: newClassSet(
				"java.util.ArrayList",
				"java.util.LinkedList",
				"java.util.ArrayDeque",
				"java.util.concurrent.ConcurrentLinkedQueue",
			)},
			mapNormalizer{classes: newClassSet(
				"java.util.HashMap",
				"java.util.TreeMap",
				"java.util.LinkedHashMap",
			)},
			wrappedPrimitiveNormalizer{classes: newClassSet(
				"java.lang.Integer",
				"java.lang.Long",
				"java.lang.Boolean",
				"java.lang.Float",
				"java.lang.Byte",
				"java.lang.Short",
				"java.lang.Double",
				"java.lang.Character",
			)},
		},
	}
}

// CycleRef returns the marker substituted for content already on the path.
func CycleRef(handle int32) string {
	return fmt.Sprintf("<cycle-ref-%d>", handle)
}

// ContentValue normalizes a single field, array element or annotation value.
func (n *Normalizer) ContentValue(value any) any {
	return n.contentValue(value, visited{})
}

func (n *Normalizer) contentValue(value any, path visited) any {
	if c, ok := value.(Content); ok && c.Handle() != NoHandle {
		if _, seen := path[c.Handle()]; seen {
			return CycleRef(c.Handle())
		}
		path = path.with(c.Handle())
	}

	switch v := value.(type) {
	case *Instance:
		return n.normalizeObject(v, path)
	case *StringContent:
		return v.Value
	case *ArrayContent:
		values := make([]any, 0, len(v.Data))
		for _, d := range v.Data {
			values = append(values, n.contentValue(d, path))
		}
		return values
	case *EnumContent:
		return v.Value
	case int64:
		return strconv.FormatInt(v, 10)
	case Content:
		return nil
	}
	return value
}

// NormalizeObject normalizes an instance; any other content yields nil.
// The instance itself starts the path, so a chain leading back to it ends
// in CycleRef of its handle.
func (n *Normalizer) NormalizeObject(c Content) any {
	if c == nil {
		return nil
	}
	return n.normalizeObject(c, visited{}.with(c.Handle()))
}

func (n *Normalizer) normalizeObject(c Content, path visited) any {
	instance, ok := c.(*Instance)
	if !ok || instance == nil {
		return nil
	}
	for _, normalizer := range n.normalizers {
		if normalizer.matches(instance) {
			return normalizer.normalize(n, instance, path)
		}
	}

	fieldData := make(map[string]any)
	for _, fields := range instance.FieldData.AllFromFront() {
		for name, value := range fields.AllFromFront() {
			fieldData[name] = n.contentValue(value, path)
		}
	}
	return fieldData
}

// Normalize normalizes every top-level item, dropping the ones that are not
// objects.
func Normalize(objects []Content) []any {
	n := NewNormalizer()
	normalized := make([]any, 0, len(objects))
	for _, obj := range objects {
		if o := n.NormalizeObject(obj); o != nil {
			normalized = append(normalized, o)
		}
	}
	return normalized
}
