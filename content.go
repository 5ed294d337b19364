package javaio

import (
	"fmt"
	"strings"

	"github.com/elliotchance/orderedmap/v3"
)

// ContentKind identifies the concrete variant of a Content.
type ContentKind string

const (
	KindBlockData ContentKind = "block"
	KindInstance  ContentKind = "instance"
	KindString    ContentKind = "string"
	KindArray     ContentKind = "array"
	KindEnum      ContentKind = "enum"
	KindClass     ContentKind = "class"
)

// Content is any item decoded from a stream.
type Content interface {
	// Handle returns the wire handle, or NoHandle for block data.
	Handle() int32
	Kind() ContentKind
	// IsExceptionObject reports whether the item was read as a TC_EXCEPTION payload.
	IsExceptionObject() bool
	base() *contentBase
}

type contentBase struct {
	handle    int32
	exception bool
}

func (c *contentBase) Handle() int32           { return c.handle }
func (c *contentBase) IsExceptionObject() bool { return c.exception }
func (c *contentBase) base() *contentBase      { return c }

// BlockData is a raw span written by custom writeObject/writeExternal code.
type BlockData struct {
	contentBase
	Data []byte
}

func NewBlockData(data []byte) *BlockData {
	return &BlockData{contentBase: contentBase{handle: NoHandle}, Data: data}
}

func (*BlockData) Kind() ContentKind { return KindBlockData }

func (b *BlockData) String() string {
	return fmt.Sprintf("[blockdata %d bytes]", len(b.Data))
}

// Instance is a decoded ordinary object. FieldData and Annotations are keyed
// by the declaring class name, in the order the classes were read (root first).
type Instance struct {
	contentBase
	ClassDesc   *ClassDesc
	FieldData   *orderedmap.OrderedMap[string, *orderedmap.OrderedMap[string, any]]
	Annotations *orderedmap.OrderedMap[string, []Content]
}

func NewInstance(handle int32, desc *ClassDesc) *Instance {
	return &Instance{
		contentBase: contentBase{handle: handle},
		ClassDesc:   desc,
		FieldData:   orderedmap.NewOrderedMap[string, *orderedmap.OrderedMap[string, any]](),
		Annotations: orderedmap.NewOrderedMap[string, []Content](),
	}
}

func (*Instance) Kind() ContentKind { return KindInstance }

// AddFieldData records the value of a field declared by className.
func (i *Instance) AddFieldData(className, fieldName string, value any) {
	fields, ok := i.FieldData.Get(className)
	if !ok {
		fields = orderedmap.NewOrderedMap[string, any]()
		i.FieldData.Set(className, fields)
	}
	fields.Set(fieldName, value)
}

// Field returns the value of fieldName as declared by className.
func (i *Instance) Field(className, fieldName string) (any, bool) {
	fields, ok := i.FieldData.Get(className)
	if !ok {
		return nil, false
	}
	return fields.Get(fieldName)
}

// AddAnnotations records the annotation block written by className.
func (i *Instance) AddAnnotations(className string, contents []Content) {
	i.Annotations.Set(className, contents)
}

// ClassName returns the name of the instance's class, or "" when unknown.
func (i *Instance) ClassName() string {
	if i.ClassDesc == nil {
		return ""
	}
	return i.ClassDesc.Name
}

func (i *Instance) String() string {
	return fmt.Sprintf("%s _h0x%x", i.ClassName(), i.handle)
}

// StringContent is a decoded java.lang.String.
type StringContent struct {
	contentBase
	Value string
}

func NewStringContent(handle int32, value string) *StringContent {
	return &StringContent{contentBase: contentBase{handle: handle}, Value: value}
}

func (*StringContent) Kind() ContentKind { return KindString }

func (s *StringContent) String() string {
	return fmt.Sprintf("%q", s.Value)
}

// ArrayContent is a decoded Java array. ClassName is the wire descriptor, e.g. "[I".
type ArrayContent struct {
	contentBase
	ClassName string
	Data      []any
}

func NewArrayContent(handle int32, className string, data []any) *ArrayContent {
	return &ArrayContent{contentBase: contentBase{handle: handle}, ClassName: className, Data: data}
}

func (*ArrayContent) Kind() ContentKind { return KindArray }

func (a *ArrayContent) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[array _h0x%x %s len %d]", a.handle, a.ClassName, len(a.Data))
	return b.String()
}

// EnumContent is a decoded enum constant.
type EnumContent struct {
	contentBase
	ClassDesc *ClassDesc
	Value     string
}

func NewEnumContent(handle int32, desc *ClassDesc, value string) *EnumContent {
	return &EnumContent{contentBase: contentBase{handle: handle}, ClassDesc: desc, Value: value}
}

func (*EnumContent) Kind() ContentKind { return KindEnum }

func (e *EnumContent) String() string {
	if e.ClassDesc == nil {
		return e.Value
	}
	return e.ClassDesc.Name + "." + e.Value
}
