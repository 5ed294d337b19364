package javaio

// The following symbols in `java.io.ObjectStreamConstants` define
// the terminal and constant values expected in a stream.
const (
	StreamMagic      uint16 = 0xaced
	StreamVersion    uint16 = 5
	TcNull           byte   = 0x70
	TcReference      byte   = 0x71
	TcClassdesc      byte   = 0x72
	TcObject         byte   = 0x73
	TcString         byte   = 0x74
	TcArray          byte   = 0x75
	TcClass          byte   = 0x76
	TcBlockdata      byte   = 0x77
	TcEndblockdata   byte   = 0x78
	TcReset          byte   = 0x79
	TcBlockdatalong  byte   = 0x7A
	TcException      byte   = 0x7B
	TcLongstring     byte   = 0x7C
	TcProxyclassdesc byte   = 0x7D
	TcEnum           byte   = 0x7E
	BaseWireHandle   int32  = 0x7E0000
)

// NoHandle marks content that never enters the handle table (block data).
const NoHandle int32 = -1

// The flag byte classDescFlags may include values of
const (
	ScWriteMethod    byte = 0x01 // if SC_SERIALIZABLE
	ScBlockData      byte = 0x08 // if SC_EXTERNALIZABLE
	ScSerializable   byte = 0x02
	ScExternalizable byte = 0x04
	ScEnum           byte = 0x10
)

// FieldType is the one-byte type code of a declared field.
type FieldType byte

const (
	FieldByte    FieldType = 'B'
	FieldChar    FieldType = 'C'
	FieldDouble  FieldType = 'D'
	FieldFloat   FieldType = 'F'
	FieldInt     FieldType = 'I'
	FieldLong    FieldType = 'J'
	FieldShort   FieldType = 'S'
	FieldBoolean FieldType = 'Z'
	FieldArray   FieldType = '['
	FieldObject  FieldType = 'L'
)

// IsPrimitive reports whether values of this type are read as fixed-width primitives.
func (t FieldType) IsPrimitive() bool {
	switch t {
	case FieldByte, FieldChar, FieldDouble, FieldFloat, FieldInt, FieldLong, FieldShort, FieldBoolean:
		return true
	}
	return false
}

// IsReference reports whether values of this type are nested content.
func (t FieldType) IsReference() bool {
	return t == FieldObject || t == FieldArray
}

func (t FieldType) String() string {
	switch t {
	case FieldByte:
		return "byte"
	case FieldChar:
		return "char"
	case FieldDouble:
		return "double"
	case FieldFloat:
		return "float"
	case FieldInt:
		return "int"
	case FieldLong:
		return "long"
	case FieldShort:
		return "short"
	case FieldBoolean:
		return "boolean"
	case FieldArray:
		return "array"
	case FieldObject:
		return "object"
	}
	return "unknown"
}

// tagName is used in error messages.
func tagName(tc byte) string {
	switch tc {
	case TcNull:
		return "TC_NULL"
	case TcReference:
		return "TC_REFERENCE"
	case TcClassdesc:
		return "TC_CLASSDESC"
	case TcObject:
		return "TC_OBJECT"
	case TcString:
		return "TC_STRING"
	case TcArray:
		return "TC_ARRAY"
	case TcClass:
		return "TC_CLASS"
	case TcBlockdata:
		return "TC_BLOCKDATA"
	case TcEndblockdata:
		return "TC_ENDBLOCKDATA"
	case TcReset:
		return "TC_RESET"
	case TcBlockdatalong:
		return "TC_BLOCKDATALONG"
	case TcException:
		return "TC_EXCEPTION"
	case TcLongstring:
		return "TC_LONGSTRING"
	case TcProxyclassdesc:
		return "TC_PROXYCLASSDESC"
	case TcEnum:
		return "TC_ENUM"
	}
	return "unknown"
}
