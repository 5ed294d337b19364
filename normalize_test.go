package javaio

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalizeStream(t *testing.T, sw *StreamWriter) []any {
	t.Helper()
	result, err := Deserialize(streamBytes(t, sw))
	require.NoError(t, err)
	return Normalize(result.Objects)
}

func TestNormalize_Primitives(t *testing.T) {
	sw := NewStreamWriter()
	sw.Object()
	sw.ClassDesc("Primitives", 1, ScSerializable,
		PrimitiveField(FieldBoolean, "f_boolean"),
		PrimitiveField(FieldByte, "f_byte"),
		PrimitiveField(FieldChar, "f_char"),
		PrimitiveField(FieldDouble, "f_double"),
		PrimitiveField(FieldFloat, "f_float"),
		PrimitiveField(FieldInt, "f_int"),
		PrimitiveField(FieldLong, "f_long"),
		PrimitiveField(FieldShort, "f_short"),
	)
	sw.EndBlockData()
	sw.Null()
	sw.Handle()
	sw.Bool(true)
	sw.Int8(1)
	sw.Char('a')
	sw.Float64(1.1)
	sw.Float32(2.2)
	sw.Int32(3)
	sw.Int64(4)
	sw.Int16(5)

	normalized := normalizeStream(t, sw)
	require.Len(t, normalized, 1)
	assert.Equal(t, map[string]any{
		"f_boolean": true,
		"f_byte":    int8(1),
		"f_char":    "a",
		"f_double":  1.1,
		"f_float":   float32(2.2),
		"f_int":     int32(3),
		"f_long":    "4",
		"f_short":   int16(5),
	}, normalized[0])
}

func TestNormalize_LongKeepsPrecision(t *testing.T) {
	n := NewNormalizer()
	assert.Equal(t, "9007199254740993", n.ContentValue(int64(9007199254740993)))
	assert.Equal(t, "-1", n.ContentValue(int64(-1)))
}

func TestNormalize_CyclicList(t *testing.T) {
	sw := NewStreamWriter()
	sw.Object()
	cd := sw.ClassDesc("Node", 1, ScSerializable, ObjectField("next", "LNode;"))
	sw.EndBlockData()
	sw.Null()
	first := sw.Handle()
	for i := 0; i < 3; i++ {
		sw.Object()
		sw.Reference(cd)
		sw.Handle()
	}
	sw.Reference(first)

	normalized := normalizeStream(t, sw)
	require.Len(t, normalized, 1)
	level := normalized[0]
	for i := 0; i < 3; i++ {
		m, ok := level.(map[string]any)
		require.True(t, ok, "level %d", i)
		level = m["next"]
	}
	m, ok := level.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, m["next"], "cycle-ref")
	assert.Equal(t, CycleRef(first), m["next"])
}

func TestNormalize_SiblingsAreNotCycles(t *testing.T) {
	sw := NewStreamWriter()
	sw.Object()
	sw.ClassDesc("Pair", 1, ScSerializable,
		ObjectField("left", "Ljava/lang/String;"),
		ObjectField("right", "Ljava/lang/String;"))
	sw.EndBlockData()
	sw.Null()
	sw.Handle()
	shared := sw.NewString("same")
	sw.Reference(shared)

	normalized := normalizeStream(t, sw)
	assert.Equal(t, map[string]any{"left": "same", "right": "same"}, normalized[0])
}

func writeHashMap(sw *StreamWriter, entries ...string) {
	sw.Object()
	sw.ClassDesc("java.util.HashMap", 362498820763181265, ScSerializable|ScWriteMethod,
		PrimitiveField(FieldFloat, "loadFactor"),
		PrimitiveField(FieldInt, "threshold"))
	sw.EndBlockData()
	sw.Null()
	sw.Handle()
	sw.Float32(0.75)
	sw.Int32(12)
	sw.BlockData([]byte{0, 0, 0, 16, 0, 0, 0, byte(len(entries) / 2)})
	for _, e := range entries {
		sw.String(e)
	}
	sw.EndBlockData()
}

func TestNormalize_Map(t *testing.T) {
	sw := NewStreamWriter()
	writeHashMap(sw, "k1", "v1", "k2", "v2")
	normalized := normalizeStream(t, sw)
	require.Len(t, normalized, 1)
	assert.Equal(t, map[string]any{"k1": "v1", "k2": "v2"}, normalized[0])
}

func TestNormalize_MapNonStringKeys(t *testing.T) {
	sw := NewStreamWriter()
	sw.Object()
	sw.ClassDesc("java.util.TreeMap", 919286545866124006, ScSerializable|ScWriteMethod)
	sw.EndBlockData()
	sw.Null()
	sw.Handle()
	sw.BlockData([]byte{0, 0, 0, 2})
	sw.Object()
	writeIntegerDesc(sw)
	sw.Handle()
	sw.Int32(1)
	sw.String("one")
	sw.Null()
	sw.String("nothing")
	sw.EndBlockData()

	normalized := normalizeStream(t, sw)
	assert.Equal(t, map[string]any{"1": "one", "null": "nothing"}, normalized[0])
}

func TestNormalize_Vector(t *testing.T) {
	sw := NewStreamWriter()
	sw.Object()
	sw.ClassDesc(vectorClassName, -2767605614048989439, ScSerializable|ScWriteMethod,
		PrimitiveField(FieldInt, "capacityIncrement"),
		PrimitiveField(FieldInt, "elementCount"),
		ArrayField("elementData", "[Ljava/lang/Object;"))
	sw.EndBlockData()
	sw.Null()
	sw.Handle()
	sw.Int32(0)
	sw.Int32(2)
	sw.Array()
	sw.ClassDesc("[Ljava.lang.Object;", -8012369246846506644, ScSerializable)
	sw.EndBlockData()
	sw.Null()
	sw.Handle()
	sw.Int32(4)
	sw.String("a")
	sw.String("b")
	sw.Null()
	sw.Null()
	sw.EndBlockData()

	normalized := normalizeStream(t, sw)
	require.Len(t, normalized, 1)
	assert.Equal(t, []any{"a", "b"}, normalized[0])
}

func TestNormalize_ListWithBoxedPrimitives(t *testing.T) {
	sw := NewStreamWriter()
	sw.Object()
	sw.ClassDesc("java.util.ArrayList", 8683452581122892189, ScSerializable|ScWriteMethod,
		PrimitiveField(FieldInt, "size"))
	sw.EndBlockData()
	sw.Null()
	sw.Handle()
	sw.Int32(3)
	sw.BlockData([]byte{0, 0, 0, 3})
	sw.String("x")
	sw.Object()
	integer := writeIntegerDesc(sw)
	sw.Handle()
	sw.Int32(7)
	sw.Object()
	sw.Reference(integer)
	sw.Handle()
	sw.Int32(8)
	sw.EndBlockData()

	normalized := normalizeStream(t, sw)
	require.Len(t, normalized, 1)
	assert.Equal(t, []any{"x", int32(7), int32(8)}, normalized[0])
}

func TestNormalize_BoxedLong(t *testing.T) {
	sw := NewStreamWriter()
	sw.Object()
	sw.ClassDesc("java.lang.Long", 4290774380558885855, ScSerializable, PrimitiveField(FieldLong, "value"))
	sw.EndBlockData()
	sw.ClassDesc("java.lang.Number", -8742448824652078965, ScSerializable)
	sw.EndBlockData()
	sw.Null()
	sw.Handle()
	sw.Int64(1 << 62)

	assert.Equal(t, []any{"4611686018427387904"}, normalizeStream(t, sw))
}

func TestNormalize_GenericFallback(t *testing.T) {
	sw := NewStreamWriter()
	sw.Object()
	sw.ClassDesc("Child", 2, ScSerializable,
		PrimitiveField(FieldInt, "x"),
		ObjectField("color", "LColor;"),
		ArrayField("data", "[B"))
	sw.EndBlockData()
	sw.ClassDesc("Parent", 1, ScSerializable, PrimitiveField(FieldInt, "x"), PrimitiveField(FieldInt, "y"))
	sw.EndBlockData()
	sw.Null()
	sw.Handle()
	sw.Int32(1) // Parent.x
	sw.Int32(2) // Parent.y
	sw.Int32(3) // Child.x
	sw.Enum()
	sw.ClassDesc("Color", 0, ScSerializable|ScEnum)
	sw.EndBlockData()
	sw.Null()
	sw.Handle()
	sw.String("RED")
	sw.Array()
	sw.ClassDesc("[B", -5984413125824719648, ScSerializable)
	sw.EndBlockData()
	sw.Null()
	sw.Handle()
	sw.Int32(2)
	sw.Int8(-1)
	sw.Int8(2)

	normalized := normalizeStream(t, sw)
	assert.Equal(t, map[string]any{
		"x":     int32(3),
		"y":     int32(2),
		"color": "RED",
		"data":  []any{int8(-1), int8(2)},
	}, normalized[0])
}

func TestNormalize_NonInstances(t *testing.T) {
	n := NewNormalizer()
	array := NewArrayContent(BaseWireHandle, "[LCustom;", []any{NewStringContent(BaseWireHandle+1, "x")})
	assert.Nil(t, n.NormalizeObject(array))
	assert.Nil(t, n.NormalizeObject(NewStringContent(BaseWireHandle, "x")))
	assert.Nil(t, n.NormalizeObject(nil))
	assert.Nil(t, n.ContentValue(NewBlockData([]byte{1})))
	assert.Equal(t, []any{"x"}, n.ContentValue(array))
	assert.Equal(t, 1.5, n.ContentValue(1.5))

	assert.Empty(t, Normalize([]Content{array, NewBlockData(nil)}))
}

func TestNormalize_Concurrent(t *testing.T) {
	sw := NewStreamWriter()
	writeHashMap(sw, "k1", "v1")
	result, err := Deserialize(streamBytes(t, sw))
	require.NoError(t, err)

	n := NewNormalizer()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, map[string]any{"k1": "v1"}, n.NormalizeObject(result.Objects[0]))
		}()
	}
	wg.Wait()
}
