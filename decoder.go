package javaio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Decoder reads a Java object serialization stream held entirely in memory.
// A Decoder is a single decoding session and must not be shared between
// goroutines.
type Decoder struct {
	r          *reader
	handles    *handleTable
	classDescs []*ClassDesc
	connected  bool
}

// NewDecoder buffers all of r and validates the stream header.
func NewDecoder(r io.Reader) (*Decoder, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, errors.Wrap(err, "NewDecoder: read stream")
	}
	return newDecoder(buf.Bytes())
}

func newDecoder(data []byte) (*Decoder, error) {
	dec := &Decoder{
		r:       newReader(data),
		handles: newHandleTable(),
	}
	if err := dec.readHeader(); err != nil {
		return nil, err
	}
	return dec, nil
}

func (dec *Decoder) readHeader() error {
	magic, err := dec.r.readUint16()
	if err != nil {
		return err
	}
	if magic != StreamMagic {
		return newError(KindFormat, 0, "magic mismatch: expected 0x%04x, got 0x%04x", StreamMagic, magic)
	}
	version, err := dec.r.readUint16()
	if err != nil {
		return err
	}
	if version != StreamVersion {
		return newError(KindFormat, 2, "version mismatch: expected %d, got %d", StreamVersion, version)
	}
	Logger().Debug("stream header accepted", zap.Int("size", len(dec.r.data)))
	return nil
}

// ReadObject returns the next non-null top-level item, or io.EOF once the
// buffer is exhausted.
func (dec *Decoder) ReadObject() (Content, error) {
	for dec.r.hasMore() {
		tc, err := dec.r.readUint8()
		if err != nil {
			return nil, err
		}
		if tc == TcReset {
			dec.reset()
			continue
		}
		c, err := dec.readContent(tc, true)
		if err != nil {
			return nil, err
		}
		if c != nil {
			return c, nil
		}
	}
	return nil, io.EOF
}

// ReadAll decodes every remaining top-level item.
func (dec *Decoder) ReadAll() ([]Content, error) {
	var objects []Content
	for {
		c, err := dec.ReadObject()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		objects = append(objects, c)
	}
	Logger().Debug("stream decoded",
		zap.Int("objects", len(objects)),
		zap.Int("classes", len(dec.classDescs)))
	return objects, nil
}

// ClassDescriptions returns every class descriptor decoded so far, ordinary
// and proxy, in the order their bodies were completed.
func (dec *Decoder) ClassDescriptions() []*ClassDesc {
	return dec.classDescs
}

func (dec *Decoder) reset() {
	Logger().Debug("stream reset", zap.Int("offset", dec.r.offset()), zap.Int("handles", dec.handles.len()))
	dec.handles.reset()
}

func (dec *Decoder) errorf(kind Kind, format string, args ...any) error {
	return newError(kind, dec.r.offset(), format, args...)
}

func (dec *Decoder) readContent(tc byte, blockData bool) (Content, error) {
	switch tc {
	case TcNull:
		return nil, nil
	case TcClass:
		return dec.readNewClass()
	case TcObject:
		return dec.readOrdinaryObject()
	case TcArray:
		return dec.readArray()
	case TcEnum:
		return dec.readEnum()
	case TcString, TcLongstring:
		return dec.readNewString(tc)
	case TcReference:
		return dec.readHandle()
	case TcBlockdata, TcBlockdatalong:
		if !blockData {
			return nil, dec.errorf(KindFormat, "got %s, but block data is not allowed here", tagName(tc))
		}
		return dec.readBlockData(tc)
	case TcException:
		return dec.readException()
	case TcClassdesc, TcProxyclassdesc:
		return dec.handleClassDesc(tc, true)
	default:
		return nil, dec.errorf(KindFormat, "unknown content tag 0x%02x (%s)", tc, tagName(tc))
	}
}

func (dec *Decoder) readHandle() (Content, error) {
	handle, err := dec.r.readInt32()
	if err != nil {
		return nil, err
	}
	c, ok := dec.handles.resolve(handle)
	if !ok {
		return nil, dec.errorf(KindReference, "failure finding an entry for handle 0x%x", handle)
	}
	return c, nil
}

func (dec *Decoder) readNewString(tc byte) (*StringContent, error) {
	switch tc {
	case TcReference:
		c, err := dec.readHandle()
		if err != nil {
			return nil, err
		}
		s, ok := c.(*StringContent)
		if !ok {
			return nil, dec.errorf(KindReference, "handle 0x%x is %s, expected a string", c.Handle(), c.Kind())
		}
		return s, nil
	case TcString:
		handle := dec.handles.newHandle()
		value, err := dec.r.readUTF()
		if err != nil {
			return nil, err
		}
		s := NewStringContent(handle, value)
		dec.handles.save(handle, s)
		return s, nil
	case TcLongstring:
		return nil, dec.errorf(KindFormat, "TC_LONGSTRING is not supported")
	case TcNull:
		return nil, dec.errorf(KindFormat, "stream signaled TC_NULL when a string was expected")
	default:
		return nil, dec.errorf(KindFormat, "invalid tag 0x%02x in string", tc)
	}
}

func (dec *Decoder) readClassDesc() (*ClassDesc, error) {
	tc, err := dec.r.readUint8()
	if err != nil {
		return nil, err
	}
	return dec.handleClassDesc(tc, false)
}

func (dec *Decoder) readNewClass() (Content, error) {
	tc, err := dec.r.readUint8()
	if err != nil {
		return nil, err
	}
	return dec.handleClassDesc(tc, true)
}

// handleClassDesc decodes a descriptor for the given tag. When mustBeNew is
// set, null and back-references are rejected.
func (dec *Decoder) handleClassDesc(tc byte, mustBeNew bool) (*ClassDesc, error) {
	switch tc {
	case TcClassdesc:
		return dec.readNonProxyDesc()
	case TcProxyclassdesc:
		return dec.readProxyDesc()
	case TcNull:
		if mustBeNew {
			return nil, dec.errorf(KindReference, "expected a new class description, got null")
		}
		return nil, nil
	case TcReference:
		if mustBeNew {
			return nil, dec.errorf(KindReference, "expected a new class description, got a reference")
		}
		c, err := dec.readHandle()
		if err != nil {
			return nil, err
		}
		cd, ok := c.(*ClassDesc)
		if !ok {
			return nil, dec.errorf(KindReference, "handle 0x%x is %s, expected a class description", c.Handle(), c.Kind())
		}
		return cd, nil
	default:
		return nil, dec.errorf(KindFormat, "expected a class description, got tag 0x%02x (%s)", tc, tagName(tc))
	}
}

func (dec *Decoder) readNonProxyDesc() (*ClassDesc, error) {
	name, err := dec.r.readUTF()
	if err != nil {
		return nil, err
	}
	suid, err := dec.r.readInt64()
	if err != nil {
		return nil, err
	}
	// Registered before the body so that a superclass chain pointing back
	// at this descriptor resolves.
	handle := dec.handles.newHandle()
	cd := NewClassDesc(handle, ClassDescOrdinary)
	cd.Name = name
	cd.SerialVersionUID = suid
	dec.handles.save(handle, cd)

	if err := dec.readClassDescriptor(cd); err != nil {
		return nil, errors.WithMessagef(err, "class %s", name)
	}
	dec.classDescs = append(dec.classDescs, cd)
	Logger().Debug("class description",
		zap.String("name", name),
		zap.String("handle", fmt.Sprintf("0x%x", handle)),
		zap.Int("fields", len(cd.Fields)))
	return cd, nil
}

func (dec *Decoder) readClassDescriptor(cd *ClassDesc) error {
	flags, err := dec.r.readUint8()
	if err != nil {
		return err
	}
	cd.Flags = flags
	numFields, err := dec.r.readInt16()
	if err != nil {
		return err
	}
	if numFields < 0 {
		return dec.errorf(KindFormat, "invalid number of fields: %d", numFields)
	}
	cd.Fields = make([]*Field, 0, int(numFields))
	for i := 0; i < int(numFields); i++ {
		field, err := dec.readFieldDesc()
		if err != nil {
			return err
		}
		cd.Fields = append(cd.Fields, field)
	}
	if cd.Annotations, err = dec.readAnnotation(); err != nil {
		return err
	}
	if cd.SuperClass, err = dec.readClassDesc(); err != nil {
		return err
	}
	return nil
}

func (dec *Decoder) readFieldDesc() (*Field, error) {
	tcode, err := dec.r.readUint8()
	if err != nil {
		return nil, err
	}
	typ := FieldType(tcode)
	if !typ.IsPrimitive() && !typ.IsReference() {
		return nil, dec.errorf(KindFormat, "invalid field type %q", tcode)
	}
	name, err := dec.r.readUTF()
	if err != nil {
		return nil, err
	}
	field := &Field{Name: name, Type: typ}
	if typ.IsReference() {
		tc, err := dec.r.readUint8()
		if err != nil {
			return nil, err
		}
		className, err := dec.readNewString(tc)
		if err != nil {
			return nil, errors.WithMessagef(err, "type of field %s", name)
		}
		field.ClassName = className.Value
	}
	return field, nil
}

func (dec *Decoder) readProxyDesc() (*ClassDesc, error) {
	handle := dec.handles.newHandle()
	cd := NewClassDesc(handle, ClassDescProxy)
	cd.Name = proxyClassName
	dec.handles.save(handle, cd)

	count, err := dec.r.readInt32()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, dec.errorf(KindFormat, "invalid proxy interface count: %d", count)
	}
	for i := 0; i < int(count); i++ {
		name, err := dec.r.readUTF()
		if err != nil {
			return nil, err
		}
		cd.Interfaces = append(cd.Interfaces, name)
	}
	if cd.SuperClass, err = dec.readClassDesc(); err != nil {
		return nil, errors.WithMessage(err, "proxy class")
	}
	dec.classDescs = append(dec.classDescs, cd)
	Logger().Debug("proxy class description",
		zap.String("handle", fmt.Sprintf("0x%x", handle)),
		zap.Strings("interfaces", cd.Interfaces))
	return cd, nil
}

// readAnnotation reads contents up to TC_ENDBLOCKDATA. Null entries are kept.
func (dec *Decoder) readAnnotation() ([]Content, error) {
	contents := make([]Content, 0)
	for {
		tc, err := dec.r.readUint8()
		if err != nil {
			return nil, &Error{Kind: KindFormat, Offset: dec.r.offset(), Detail: "annotation block is not terminated", Cause: err}
		}
		switch tc {
		case TcEndblockdata:
			return contents, nil
		case TcReset:
			dec.reset()
			continue
		}
		c, err := dec.readContent(tc, true)
		if err != nil {
			return nil, err
		}
		contents = append(contents, c)
	}
}

func (dec *Decoder) readEnum() (Content, error) {
	cd, err := dec.readClassDesc()
	if err != nil {
		return nil, err
	}
	if cd == nil {
		return nil, dec.errorf(KindFormat, "enum constant without a class description")
	}
	handle := dec.handles.newHandle()
	tc, err := dec.r.readUint8()
	if err != nil {
		return nil, err
	}
	name, err := dec.readNewString(tc)
	if err != nil {
		return nil, errors.WithMessagef(err, "constant of enum %s", cd.Name)
	}
	e := NewEnumContent(handle, cd, name.Value)
	dec.handles.save(handle, e)
	cd.AddEnumConstant(name.Value)
	return e, nil
}

func (dec *Decoder) readOrdinaryObject() (Content, error) {
	cd, err := dec.readClassDesc()
	if err != nil {
		return nil, err
	}
	if cd == nil {
		return nil, dec.errorf(KindFormat, "object without a class description")
	}
	handle := dec.handles.newHandle()
	instance := NewInstance(handle, cd)
	dec.handles.save(handle, instance)
	if err := dec.readSerialData(instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// readSerialData reads the class data of every class in the hierarchy,
// most distant ancestor first.
func (dec *Decoder) readSerialData(instance *Instance) error {
	for _, cd := range instance.ClassDesc.Hierarchy() {
		switch {
		case cd.HasFlag(ScSerializable):
			for _, field := range cd.Fields {
				value, err := dec.readFieldValue(field.Type)
				if err != nil {
					return errors.WithMessagef(err, "field %s.%s", cd.Name, field.Name)
				}
				instance.AddFieldData(cd.Name, field.Name, value)
			}
			if !cd.HasFlag(ScWriteMethod) {
				continue
			}
			if cd.HasFlag(ScEnum) {
				return dec.errorf(KindFormat, "class %s has both SC_ENUM and SC_WRITE_METHOD", cd.Name)
			}
			annotations, err := dec.readAnnotation()
			if err != nil {
				return errors.WithMessagef(err, "writeObject data of %s", cd.Name)
			}
			instance.AddAnnotations(cd.Name, annotations)
		case cd.HasFlag(ScExternalizable):
			if cd.HasFlag(ScBlockData) {
				return dec.errorf(KindFormat, "externalizable class %s has SC_BLOCK_DATA set; can't interpret data", cd.Name)
			}
			annotations, err := dec.readAnnotation()
			if err != nil {
				return errors.WithMessagef(err, "external data of %s", cd.Name)
			}
			instance.AddAnnotations(cd.Name, annotations)
		}
	}
	return nil
}

func (dec *Decoder) readFieldValue(typ FieldType) (any, error) {
	switch typ {
	case FieldByte:
		return dec.r.readInt8()
	case FieldChar:
		return dec.r.readChar()
	case FieldDouble:
		return dec.r.readFloat64()
	case FieldFloat:
		return dec.r.readFloat32()
	case FieldInt:
		return dec.r.readInt32()
	case FieldLong:
		return dec.r.readInt64()
	case FieldShort:
		return dec.r.readInt16()
	case FieldBoolean:
		return dec.r.readBool()
	case FieldArray, FieldObject:
		tc, err := dec.r.readUint8()
		if err != nil {
			return nil, err
		}
		c, err := dec.readContent(tc, false)
		if err != nil || c == nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, dec.errorf(KindFormat, "can't read a value of field type %q", byte(typ))
	}
}

func (dec *Decoder) readArray() (Content, error) {
	cd, err := dec.readClassDesc()
	if err != nil {
		return nil, err
	}
	if cd == nil {
		return nil, dec.errorf(KindFormat, "array without a class description")
	}
	elemType, ok := arrayElementType(cd.Name)
	if !ok {
		return nil, dec.errorf(KindFormat, "%q is not an array class", cd.Name)
	}
	handle := dec.handles.newHandle()
	array := NewArrayContent(handle, cd.Name, nil)
	dec.handles.save(handle, array)

	size, err := dec.r.readInt32()
	if err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, dec.errorf(KindFormat, "invalid array size: %d", size)
	}
	values := make([]any, 0, min(int(size), dec.r.remaining()))
	for i := 0; i < int(size); i++ {
		value, err := dec.readFieldValue(elemType)
		if err != nil {
			return nil, errors.WithMessagef(err, "element %d of %s", i, cd.Name)
		}
		values = append(values, value)
	}
	array.Data = values
	return array, nil
}

func (dec *Decoder) readBlockData(tc byte) (Content, error) {
	var size int
	if tc == TcBlockdata {
		n, err := dec.r.readUint8()
		if err != nil {
			return nil, err
		}
		size = int(n)
	} else {
		n, err := dec.r.readInt32()
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, dec.errorf(KindFormat, "invalid block data size: %d", n)
		}
		size = int(n)
	}
	data, err := dec.r.readBytes(size)
	if err != nil {
		return nil, err
	}
	return NewBlockData(data), nil
}

func (dec *Decoder) readException() (Content, error) {
	dec.reset()
	tc, err := dec.r.readUint8()
	if err != nil {
		return nil, err
	}
	if tc == TcReset {
		return nil, dec.errorf(KindException, "TC_RESET while reading an exception object")
	}
	c, err := dec.readContent(tc, false)
	if err != nil {
		return nil, errors.WithMessage(err, "exception object")
	}
	instance, err := dec.markException(c)
	if err != nil {
		return nil, err
	}
	Logger().Debug("exception object", zap.String("class", instance.ClassName()))
	dec.reset()
	return instance, nil
}

// markException flags c as an exception payload. An object is marked at
// most once.
func (dec *Decoder) markException(c Content) (*Instance, error) {
	if c == nil {
		return nil, dec.errorf(KindException, "stream signaled an exception, but the exception object was null")
	}
	instance, ok := c.(*Instance)
	if !ok {
		return nil, dec.errorf(KindException, "stream signaled an exception, but the content is %s, not an object", c.Kind())
	}
	if instance.exception {
		return nil, dec.errorf(KindException, "exception object 0x%x was already read as an exception", instance.handle)
	}
	instance.exception = true
	return instance, nil
}

// Result is the outcome of Deserialize.
type Result struct {
	Objects []Content
	Classes []*ClassDesc
}

type options struct {
	connect bool
}

// Option configures Deserialize.
type Option func(*options)

// WithoutMemberClassConnection leaves inner-class names as they appear on
// the wire.
func WithoutMemberClassConnection() Option {
	return func(o *options) {
		o.connect = false
	}
}

// Deserialize decodes a complete stream and, unless disabled, reconnects
// inner classes to their enclosing classes.
func Deserialize(data []byte, opts ...Option) (*Result, error) {
	o := options{connect: true}
	for _, opt := range opts {
		opt(&o)
	}
	dec, err := newDecoder(data)
	if err != nil {
		return nil, err
	}
	objects, err := dec.ReadAll()
	if err != nil {
		return nil, err
	}
	if o.connect {
		if err := dec.ConnectMemberClasses(); err != nil {
			return nil, err
		}
	}
	return &Result{Objects: objects, Classes: dec.ClassDescriptions()}, nil
}
