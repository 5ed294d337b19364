package javaio

import (
	"fmt"
	"strings"
)

// ClassPrinter renders class descriptors as pseudo Java source.
type ClassPrinter struct {
	b strings.Builder
}

func indent(level int) string {
	return strings.Repeat("  ", level)
}

// Print renders every top-level class. Array classes are skipped, and member
// classes are printed inside their enclosing class.
func Print(classes []*ClassDesc) string {
	var p ClassPrinter
	for _, cd := range classes {
		if cd.IsArrayClass() || cd.IsStaticMemberClass || cd.IsInnerClass {
			continue
		}
		fmt.Fprintf(&p.b, "// handle: %x\n", cd.handle)
		p.dump(0, cd)
		p.b.WriteByte('\n')
	}
	return p.b.String()
}

func (p *ClassPrinter) println(s string) {
	p.b.WriteString(s)
	p.b.WriteByte('\n')
}

func (p *ClassPrinter) print(s string) {
	p.b.WriteString(s)
}

func (p *ClassPrinter) dump(level int, cd *ClassDesc) {
	if len(cd.Annotations) > 0 {
		p.println(indent(level) + "// annotations: ")
		for _, c := range cd.Annotations {
			p.println(indent(level) + "// " + indent(1) + describe(c))
		}
	}
	if cd.Type == ClassDescProxy {
		p.dumpProxy(level, cd)
		return
	}
	if cd.HasFlag(ScEnum) {
		p.dumpEnum(level, cd)
		return
	}

	p.print(indent(level))
	if cd.IsStaticMemberClass {
		p.print("static ")
	}
	name := cd.Name
	if cd.IsArrayClass() {
		name = ResolveJavaType(FieldArray, cd.Name)
	}
	p.print("class " + name)
	if cd.SuperClass != nil {
		p.print(" extends " + cd.SuperClass.Name)
	}
	p.print(" implements ")
	if cd.HasFlag(ScExternalizable) {
		p.print("java.io.Externalizable")
	} else {
		p.print("java.io.Serializable")
	}
	for _, intf := range cd.Interfaces {
		p.print(", " + intf)
	}
	p.println(" {")
	p.println(fmt.Sprintf("%sstatic final long serialVersionUID = %dL;", indent(level+1), cd.SerialVersionUID))
	p.println("")

	for _, inner := range cd.InnerClasses {
		p.dump(level+1, inner)
		p.println("")
	}
	for _, f := range cd.Fields {
		if f.IsInnerClassReference {
			continue
		}
		p.println(indent(level+1) + f.JavaType() + " " + f.Name + ";")
	}
	p.println(indent(level) + "}")
}

func (p *ClassPrinter) dumpEnum(level int, cd *ClassDesc) {
	p.print(indent(level) + "enum " + cd.Name + " {")
	if constants := cd.EnumConstants(); len(constants) > 0 {
		p.println("")
		p.print(indent(level+1) + strings.Join(constants, ",\n"+indent(level+1)) + ";")
	}
	p.println("")
	p.println(indent(level) + "}")
}

func (p *ClassPrinter) dumpProxy(level int, cd *ClassDesc) {
	p.print(fmt.Sprintf("%s// proxy class %x", indent(level), cd.handle))
	if cd.SuperClass != nil {
		p.print(" extends " + cd.SuperClass.Name)
	}
	p.println(" implements ")
	for _, intf := range cd.Interfaces {
		p.println(indent(level) + "//    " + intf + ", ")
	}
	if cd.HasFlag(ScExternalizable) {
		p.println(indent(level) + "//    java.io.Externalizable")
	} else {
		p.println(indent(level) + "//    java.io.Serializable")
	}
}

func describe(c Content) string {
	if s, ok := c.(fmt.Stringer); ok {
		return s.String()
	}
	if c == nil {
		return "null"
	}
	return string(c.Kind())
}
