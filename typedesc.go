package javaio

import "strings"

// decodeClassName turns "Ljava/lang/String;" into "java.lang.String".
func decodeClassName(desc string) string {
	if len(desc) >= 2 && desc[0] == 'L' && desc[len(desc)-1] == ';' {
		desc = desc[1 : len(desc)-1]
	}
	return strings.ReplaceAll(desc, "/", ".")
}

// ResolveJavaType renders a field type and its wire descriptor the way it
// would be spelled in Java source: "Ljava/lang/String;" becomes
// "java.lang.String" and "[[I" becomes "int[][]".
func ResolveJavaType(typ FieldType, className string) string {
	switch typ {
	case FieldObject:
		return decodeClassName(className)
	case FieldArray:
		var suffix strings.Builder
		for i := 0; i < len(className); i++ {
			switch ch := className[i]; ch {
			case '[':
				suffix.WriteString("[]")
			case 'L':
				return decodeClassName(className[i:]) + suffix.String()
			default:
				return FieldType(ch).String() + suffix.String()
			}
		}
		return className
	}
	return typ.String()
}

// arrayElementType returns the element type code of an array class name
// such as "[I" or "[Ljava/lang/String;".
func arrayElementType(className string) (FieldType, bool) {
	if len(className) < 2 || className[0] != '[' {
		return 0, false
	}
	t := FieldType(className[1])
	if !t.IsPrimitive() && !t.IsReference() {
		return 0, false
	}
	return t, true
}
