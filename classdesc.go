package javaio

import (
	"fmt"
	"strings"

	"github.com/elliotchance/orderedmap/v3"
)

// ClassDescType distinguishes ordinary descriptors from dynamic proxies.
type ClassDescType int

const (
	ClassDescOrdinary ClassDescType = iota
	ClassDescProxy
)

const proxyClassName = "(proxy class; no name)"

// ClassDesc is a decoded class descriptor.
type ClassDesc struct {
	contentBase
	Type             ClassDescType
	Name             string
	SerialVersionUID int64
	Flags            byte
	// Fields are in wire order, which is also the read order of instance data.
	Fields       []*Field
	InnerClasses []*ClassDesc
	Annotations  []Content
	// SuperClass may be shared by many descriptors.
	SuperClass *ClassDesc
	Interfaces []string

	IsInnerClass        bool
	IsLocalInnerClass   bool
	IsStaticMemberClass bool

	enumConstants *orderedmap.OrderedMap[string, struct{}]
}

func NewClassDesc(handle int32, typ ClassDescType) *ClassDesc {
	return &ClassDesc{
		contentBase:   contentBase{handle: handle},
		Type:          typ,
		enumConstants: orderedmap.NewOrderedMap[string, struct{}](),
	}
}

func (*ClassDesc) Kind() ContentKind { return KindClass }

func (cd *ClassDesc) HasFlag(flag byte) bool {
	return cd.Flags&flag != 0
}

// IsArrayClass reports whether the descriptor names an array type such as "[I".
func (cd *ClassDesc) IsArrayClass() bool {
	return len(cd.Name) > 1 && cd.Name[0] == '['
}

// AddEnumConstant records a constant name; duplicates are ignored.
func (cd *ClassDesc) AddEnumConstant(name string) {
	cd.enumConstants.Set(name, struct{}{})
}

// EnumConstants returns the distinct constant names in first-seen order.
func (cd *ClassDesc) EnumConstants() []string {
	names := make([]string, 0, cd.enumConstants.Len())
	for name := range cd.enumConstants.Keys() {
		names = append(names, name)
	}
	return names
}

func (cd *ClassDesc) addInnerClass(inner *ClassDesc) {
	cd.InnerClasses = append(cd.InnerClasses, inner)
}

// Hierarchy returns the class chain from the most distant ancestor down to cd.
// Proxy superclasses are not part of the chain, and a chain that loops back
// on itself stops at the first repeat.
func (cd *ClassDesc) Hierarchy() []*ClassDesc {
	var chain []*ClassDesc
	seen := make(map[*ClassDesc]struct{})
	for c := cd; c != nil; c = c.SuperClass {
		if _, ok := seen[c]; ok {
			break
		}
		seen[c] = struct{}{}
		if c != cd && c.Type == ClassDescProxy {
			break
		}
		chain = append(chain, c)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

func (cd *ClassDesc) String() string {
	if cd.Type == ClassDescProxy {
		return fmt.Sprintf("[proxy class _h0x%x %s]", cd.handle, strings.Join(cd.Interfaces, ", "))
	}
	return fmt.Sprintf("[class %s _h0x%x]", cd.Name, cd.handle)
}

// Field is a field declared by a class descriptor. ClassName holds the wire
// type descriptor for object and array fields.
type Field struct {
	Name      string
	Type      FieldType
	ClassName string
	// IsInnerClassReference marks the synthetic this$N field of an inner class.
	IsInnerClassReference bool
}

// SetReferenceTypeName points an object field at the class named name.
func (f *Field) SetReferenceTypeName(name string) error {
	if f.Type != FieldObject {
		return newError(KindFieldFixup, -1, "can't fix up non-reference field %s of type %s", f.Name, f.Type)
	}
	f.ClassName = "L" + strings.ReplaceAll(name, ".", "/") + ";"
	return nil
}

// JavaType returns the Java source spelling of the field's type.
func (f *Field) JavaType() string {
	return ResolveJavaType(f.Type, f.ClassName)
}
