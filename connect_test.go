package javaio

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClass(name string, fields ...*Field) *ClassDesc {
	cd := NewClassDesc(NoHandle, ClassDescOrdinary)
	cd.Name = name
	cd.Flags = ScSerializable
	cd.Fields = fields
	return cd
}

func TestSplitNestedName(t *testing.T) {
	outer, inner, ok := splitNestedName("a.b.Outer$Mid$Inner")
	assert.True(t, ok)
	assert.Equal(t, "a.b.Outer$Mid", outer)
	assert.Equal(t, "Inner", inner)

	for _, name := range []string{"Plain", "Outer$", "$Inner", "a$$b"} {
		_, _, ok := splitNestedName(name)
		assert.False(t, ok, name)
	}
}

func TestIsEnclosingFieldName(t *testing.T) {
	assert.True(t, isEnclosingFieldName("this$0"))
	assert.True(t, isEnclosingFieldName("this$12"))
	assert.False(t, isEnclosingFieldName("this$"))
	assert.False(t, isEnclosingFieldName("this$x"))
	assert.False(t, isEnclosingFieldName("that$0"))
	assert.False(t, isEnclosingFieldName("this"))
}

func TestConnectMemberClasses_InnerClass(t *testing.T) {
	ref := &Field{Name: "inner", Type: FieldObject, ClassName: "Lcom/example/Outer$Inner;"}
	outer := newTestClass("com.example.Outer", ref)
	enclosing := &Field{Name: "this$0", Type: FieldObject, ClassName: "Lcom/example/Outer;"}
	inner := newTestClass("com.example.Outer$Inner", enclosing, &Field{Name: "n", Type: FieldInt})

	require.NoError(t, ConnectMemberClasses([]*ClassDesc{outer, inner}))
	assert.Equal(t, "Inner", inner.Name)
	assert.True(t, inner.IsInnerClass)
	assert.False(t, inner.IsStaticMemberClass)
	assert.True(t, enclosing.IsInnerClassReference)
	assert.Equal(t, []*ClassDesc{inner}, outer.InnerClasses)
	assert.Equal(t, "LInner;", ref.ClassName)
	assert.Equal(t, "Inner", ref.JavaType())
	assert.Equal(t, "com.example.Outer", outer.Name)
}

func TestConnectMemberClasses_StaticMemberClass(t *testing.T) {
	outer := newTestClass("com.example.Outer")
	nested := newTestClass("com.example.Outer$Nested")
	lonely := newTestClass("com.example.Missing$Lonely")

	require.NoError(t, ConnectMemberClasses([]*ClassDesc{nested, outer, lonely}))
	assert.Equal(t, "Nested", nested.Name)
	assert.True(t, nested.IsStaticMemberClass)
	assert.Equal(t, []*ClassDesc{nested}, outer.InnerClasses)
	assert.Equal(t, "com.example.Missing$Lonely", lonely.Name)
	assert.False(t, lonely.IsStaticMemberClass)
}

func TestConnectMemberClasses_SkipsProxies(t *testing.T) {
	proxy := NewClassDesc(NoHandle, ClassDescProxy)
	proxy.Name = proxyClassName
	outer := newTestClass("Outer")
	require.NoError(t, ConnectMemberClasses([]*ClassDesc{proxy, outer}))
	assert.Equal(t, proxyClassName, proxy.Name)
}

func TestConnectMemberClasses_Errors(t *testing.T) {
	cases := map[string][]*ClassDesc{
		"name collision": {
			newTestClass("Outer"),
			newTestClass("Outer$Inner"),
			newTestClass("Inner"),
		},
		"outer type mismatch": {
			newTestClass("com.example.Outer"),
			newTestClass("com.example.Outer$Inner",
				&Field{Name: "this$0", Type: FieldObject, ClassName: "Lcom/example/Other;"}),
		},
		"outer class missing": {
			newTestClass("com.example.Missing$Inner",
				&Field{Name: "this$0", Type: FieldObject, ClassName: "Lcom/example/Missing;"}),
		},
		"undecomposable name": {
			newTestClass("Inner",
				&Field{Name: "this$0", Type: FieldObject, ClassName: "LOuter;"}),
		},
	}
	for name, classes := range cases {
		t.Run(name, func(t *testing.T) {
			err := ConnectMemberClasses(classes)
			assert.True(t, errors.Is(err, ErrReconnect), "%v", err)
		})
	}
}

func TestConnectMemberClasses_LaterDuplicateWins(t *testing.T) {
	first := newTestClass("Outer")
	second := newTestClass("Outer")
	nested := newTestClass("Outer$Nested")
	require.NoError(t, ConnectMemberClasses([]*ClassDesc{first, second, nested}))
	assert.Empty(t, first.InnerClasses)
	assert.Equal(t, []*ClassDesc{nested}, second.InnerClasses)
}

func TestField_SetReferenceTypeName(t *testing.T) {
	f := &Field{Name: "x", Type: FieldObject, ClassName: "Lold/Name;"}
	require.NoError(t, f.SetReferenceTypeName("new.pkg.Name"))
	assert.Equal(t, "Lnew/pkg/Name;", f.ClassName)

	f = &Field{Name: "xs", Type: FieldArray, ClassName: "[I"}
	assert.True(t, errors.Is(f.SetReferenceTypeName("Name"), ErrFieldFixup))
}

func TestDecoder_ConnectInnerClassFromStream(t *testing.T) {
	sw := NewStreamWriter()
	sw.Object()
	sw.ClassDesc("com.example.Outer", 1, ScSerializable, ObjectField("inner", "Lcom/example/Outer$Inner;"))
	sw.EndBlockData()
	sw.Null()
	outer := sw.Handle()
	sw.Object()
	sw.ClassDesc("com.example.Outer$Inner", 2, ScSerializable, ObjectField("this$0", "Lcom/example/Outer;"))
	sw.EndBlockData()
	sw.Null()
	sw.Handle()
	sw.Reference(outer)

	result, err := Deserialize(streamBytes(t, sw))
	require.NoError(t, err)
	require.Len(t, result.Classes, 2)
	assert.Equal(t, "com.example.Outer", result.Classes[0].Name)
	assert.Equal(t, "Inner", result.Classes[1].Name)
	assert.True(t, result.Classes[1].IsInnerClass)
}

func TestConnectMemberClasses_TwoEnclosingFields(t *testing.T) {
	outer := newTestClass("Outer")
	first := &Field{Name: "this$0", Type: FieldObject, ClassName: "LOuter;"}
	second := &Field{Name: "this$1", Type: FieldObject, ClassName: "LOuter;"}
	inner := newTestClass("Outer$Inner", first, second)

	require.NoError(t, ConnectMemberClasses([]*ClassDesc{outer, inner}))
	assert.Equal(t, []*ClassDesc{inner}, outer.InnerClasses)
	assert.True(t, first.IsInnerClassReference)
	assert.True(t, second.IsInnerClassReference)
	assert.Equal(t, "Inner", inner.Name)
}

func TestConnectMemberClasses_EarlierDuplicatesFollow(t *testing.T) {
	outer := newTestClass("Outer", &Field{Name: "child", Type: FieldObject, ClassName: "LOuter$Inner;"})
	earlier := newTestClass("Outer$Inner", &Field{Name: "this$0", Type: FieldObject, ClassName: "LOuter;"})
	oldest := newTestClass("Outer$Nested")
	later := newTestClass("Outer$Inner", &Field{Name: "this$0", Type: FieldObject, ClassName: "LOuter;"})
	nested := newTestClass("Outer$Nested")

	require.NoError(t, ConnectMemberClasses([]*ClassDesc{outer, earlier, oldest, later, nested}))
	assert.Equal(t, []*ClassDesc{later, nested}, outer.InnerClasses)
	assert.Equal(t, "Inner", earlier.Name)
	assert.True(t, earlier.IsInnerClass)
	assert.True(t, earlier.Fields[0].IsInnerClassReference)
	assert.Equal(t, "Nested", oldest.Name)
	assert.True(t, oldest.IsStaticMemberClass)
	assert.Equal(t, "LInner;", outer.Fields[0].ClassName)
}

func TestDecoder_ConnectAcrossReset(t *testing.T) {
	writeClasses := func(sw *StreamWriter) {
		sw.Class()
		sw.ClassDesc("com.example.Outer$Nested", 2, ScSerializable)
		sw.EndBlockData()
		sw.Null()
		sw.Class()
		sw.ClassDesc("com.example.Outer", 1, ScSerializable, ObjectField("nested", "Lcom/example/Outer$Nested;"))
		sw.EndBlockData()
		sw.Null()
	}
	sw := NewStreamWriter()
	writeClasses(sw)
	sw.Reset()
	writeClasses(sw)

	result, err := Deserialize(streamBytes(t, sw))
	require.NoError(t, err)
	require.Len(t, result.Classes, 4)
	for _, cd := range result.Classes {
		assert.NotEqual(t, "com.example.Outer$Nested", cd.Name)
	}

	out := Print(result.Classes)
	assert.NotContains(t, out, "class com.example.Outer$Nested")
	assert.Equal(t, 1, strings.Count(out, "static class Nested"))
	assert.Contains(t, out, "  Nested nested;\n")
}
