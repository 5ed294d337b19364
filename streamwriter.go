package javaio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

// StreamWriter emits the serialization grammar token by token. It keeps the
// handle counter the way ObjectOutputStream does, so callers can write
// back-references, but it does not check that the tokens form a valid
// stream. Errors are sticky and reported by Bytes.
type StreamWriter struct {
	buf     bytes.Buffer
	err     error
	next    int32
	strings map[string]int32
}

// FieldSpec describes one field of a class descriptor.
type FieldSpec struct {
	Type      FieldType
	Name      string
	ClassName string
}

func PrimitiveField(typ FieldType, name string) FieldSpec {
	return FieldSpec{Type: typ, Name: name}
}

// ObjectField declares an object field; className is a JVM descriptor such
// as "Ljava/lang/String;".
func ObjectField(name, className string) FieldSpec {
	return FieldSpec{Type: FieldObject, Name: name, ClassName: className}
}

// ArrayField declares an array field; className is a JVM descriptor such as "[I".
func ArrayField(name, className string) FieldSpec {
	return FieldSpec{Type: FieldArray, Name: name, ClassName: className}
}

// NewStreamWriter starts a stream with the standard header.
func NewStreamWriter() *StreamWriter {
	return NewStreamWriterWithHeader(StreamMagic, StreamVersion)
}

// NewStreamWriterWithHeader starts a stream with an arbitrary header.
func NewStreamWriterWithHeader(magic, version uint16) *StreamWriter {
	sw := &StreamWriter{}
	sw.ClearHandles()
	sw.writeBinary(magic, version)
	return sw
}

// Bytes returns the stream written so far.
func (sw *StreamWriter) Bytes() ([]byte, error) {
	if sw.err != nil {
		return nil, sw.err
	}
	return sw.buf.Bytes(), nil
}

func (sw *StreamWriter) writeBinary(values ...any) {
	for _, value := range values {
		if sw.err != nil {
			return
		}
		sw.err = binary.Write(&sw.buf, binary.BigEndian, value)
	}
}

// Handle assigns the next wire handle, as the JVM does right after the
// class description of a new object, array or enum constant.
func (sw *StreamWriter) Handle() int32 {
	h := sw.next
	sw.next++
	return h
}

// ClearHandles forgets every handle without writing anything.
func (sw *StreamWriter) ClearHandles() {
	sw.next = BaseWireHandle
	sw.strings = make(map[string]int32)
}

func (sw *StreamWriter) Byte(b byte) { sw.writeBinary(b) }
func (sw *StreamWriter) Bool(v bool) { sw.writeBinary(v) }
func (sw *StreamWriter) Int8(v int8) { sw.writeBinary(v) }
func (sw *StreamWriter) Int16(v int16) { sw.writeBinary(v) }
func (sw *StreamWriter) Int32(v int32) { sw.writeBinary(v) }
func (sw *StreamWriter) Int64(v int64) { sw.writeBinary(v) }
func (sw *StreamWriter) Float32(v float32) { sw.writeBinary(v) }
func (sw *StreamWriter) Float64(v float64) { sw.writeBinary(v) }
func (sw *StreamWriter) Null() { sw.writeBinary(TcNull) }
func (sw *StreamWriter) EndBlockData() { sw.writeBinary(TcEndblockdata) }
func (sw *StreamWriter) Reference(h int32) { sw.writeBinary(TcReference, h) }
func (sw *StreamWriter) Object() { sw.writeBinary(TcObject) }
func (sw *StreamWriter) Array() { sw.writeBinary(TcArray) }
func (sw *StreamWriter) Enum() { sw.writeBinary(TcEnum) }
func (sw *StreamWriter) Class() { sw.writeBinary(TcClass) }

// Char writes a UTF-16 code unit; runes outside the BMP are rejected.
func (sw *StreamWriter) Char(r rune) {
	if utf16.IsSurrogate(r) || r > 0xFFFF {
		if sw.err == nil {
			sw.err = fmt.Errorf("Char: %U does not fit in one UTF-16 code unit", r)
		}
		return
	}
	sw.writeBinary(uint16(r))
}

// UTF writes a string with a 16-bit length prefix.
func (sw *StreamWriter) UTF(s string) {
	p := []byte(s)
	if len(p) > 0xFFFF {
		if sw.err == nil {
			sw.err = fmt.Errorf("UTF: string of %d bytes is too long", len(p))
		}
		return
	}
	sw.writeBinary(uint16(len(p)), p)
}

// Reset writes TC_RESET and clears the handle table.
func (sw *StreamWriter) Reset() {
	sw.writeBinary(TcReset)
	sw.ClearHandles()
}

// Exception writes TC_EXCEPTION and clears the handle table. The caller
// writes the exception object and then calls ClearHandles.
func (sw *StreamWriter) Exception() {
	sw.writeBinary(TcException)
	sw.ClearHandles()
}

// String writes s as a back-reference if it was written before, or as a
// new TC_STRING otherwise, and returns its handle.
func (sw *StreamWriter) String(s string) int32 {
	if h, ok := sw.strings[s]; ok {
		sw.Reference(h)
		return h
	}
	return sw.NewString(s)
}

// NewString always writes a new TC_STRING.
func (sw *StreamWriter) NewString(s string) int32 {
	sw.writeBinary(TcString)
	h := sw.Handle()
	sw.strings[s] = h
	sw.UTF(s)
	return h
}

// ClassDesc writes TC_CLASSDESC up to and including the field specs and
// returns the descriptor's handle. The caller continues with the class
// annotations, EndBlockData and the superclass description.
func (sw *StreamWriter) ClassDesc(name string, suid int64, flags byte, fields ...FieldSpec) int32 {
	sw.writeBinary(TcClassdesc)
	sw.UTF(name)
	sw.writeBinary(suid)
	h := sw.Handle()
	sw.writeBinary(flags, int16(len(fields)))
	for _, f := range fields {
		sw.writeBinary(byte(f.Type))
		sw.UTF(f.Name)
		if f.Type.IsReference() {
			sw.String(f.ClassName)
		}
	}
	return h
}

// ProxyClassDesc writes TC_PROXYCLASSDESC and the interface names and
// returns the descriptor's handle. The caller continues with the superclass
// description.
func (sw *StreamWriter) ProxyClassDesc(interfaces ...string) int32 {
	sw.writeBinary(TcProxyclassdesc)
	h := sw.Handle()
	sw.writeBinary(int32(len(interfaces)))
	for _, name := range interfaces {
		sw.UTF(name)
	}
	return h
}

// BlockData writes p as TC_BLOCKDATA, or TC_BLOCKDATALONG when it is longer
// than 255 bytes.
func (sw *StreamWriter) BlockData(p []byte) {
	if len(p) <= 0xFF {
		sw.writeBinary(TcBlockdata, byte(len(p)))
	} else {
		sw.writeBinary(TcBlockdatalong, int32(len(p)))
	}
	sw.writeBinary(p)
}
