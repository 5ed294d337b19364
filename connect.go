package javaio

import (
	"strings"

	"go.uber.org/zap"
)

const (
	nestedClassSeparator = "$"
	enclosingFieldPrefix = "this$"
)

// splitNestedName splits "a.b.Outer$Mid$Inner" into "a.b.Outer$Mid" and
// "Inner". Every '$'-separated segment must be non-empty.
func splitNestedName(name string) (outer, inner string, ok bool) {
	i := strings.LastIndex(name, nestedClassSeparator)
	if i <= 0 || i == len(name)-1 {
		return "", "", false
	}
	for _, seg := range strings.Split(name, nestedClassSeparator) {
		if seg == "" {
			return "", "", false
		}
	}
	return name[:i], name[i+1:], true
}

// isEnclosingFieldName matches the compiler's synthetic outer-instance
// field: "this$" followed by decimal digits.
func isEnclosingFieldName(name string) bool {
	digits := strings.TrimPrefix(name, enclosingFieldPrefix)
	if len(digits) == len(name) || digits == "" {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}

type rename struct {
	cd      *ClassDesc
	newName string
}

// ConnectMemberClasses links inner and static member classes to their
// enclosing classes and renames them to their simple names. It mutates the
// decoded descriptors in place and may only run once per session.
func (dec *Decoder) ConnectMemberClasses() error {
	if dec.connected {
		return newError(KindReconnect, -1, "member classes were already connected")
	}
	dec.connected = true
	return ConnectMemberClasses(dec.classDescs)
}

// ConnectMemberClasses runs the inner-class reconnection over classes.
// Proxy descriptors are ignored. When several descriptors share a name, the
// last one is linked to its enclosing class and the earlier ones follow its
// marks and rename. Running it twice over the same descriptors is not
// supported.
func ConnectMemberClasses(classes []*ClassDesc) error {
	byName := make(map[string]*ClassDesc)
	shadows := make(map[*ClassDesc][]*ClassDesc)
	var ordered, all []*ClassDesc
	for _, cd := range classes {
		if cd.Type == ClassDescProxy {
			continue
		}
		all = append(all, cd)
		if prev, ok := byName[cd.Name]; ok {
			// The later descriptor wins the name.
			for i, c := range ordered {
				if c == prev {
					ordered = append(ordered[:i], ordered[i+1:]...)
					break
				}
			}
			shadows[cd] = append(shadows[prev], prev)
			delete(shadows, prev)
		}
		byName[cd.Name] = cd
		ordered = append(ordered, cd)
	}
	names := make(map[string]struct{}, len(byName))
	for name := range byName {
		names[name] = struct{}{}
	}

	var renames []rename
	pending := make(map[*ClassDesc]struct{})
	addRename := func(cd *ClassDesc, newName string) bool {
		if _, ok := pending[cd]; ok {
			return false
		}
		pending[cd] = struct{}{}
		renames = append(renames, rename{cd: cd, newName: newName})
		return true
	}

	// Inner classes: a this$N field points at the enclosing instance.
	for _, cd := range ordered {
		for _, f := range cd.Fields {
			if f.Type != FieldObject || !isEnclosingFieldName(f.Name) {
				continue
			}
			outer, inner, ok := splitNestedName(cd.Name)
			if !ok {
				return newError(KindReconnect, -1,
					"inner class enclosing-class reference field exists, but class name doesn't match expected pattern: class %s field %s",
					cd.Name, f.Name)
			}
			outerCD, ok := byName[outer]
			if !ok {
				return newError(KindReconnect, -1,
					"couldn't connect inner classes: outer class %s not found for field %s of %s", outer, f.Name, cd.Name)
			}
			if outerCD.Name != f.JavaType() {
				return newError(KindReconnect, -1,
					"outer class field type doesn't match field type name: %s outer class name %s", f.ClassName, outerCD.Name)
			}
			cd.IsLocalInnerClass = false
			cd.IsInnerClass = true
			f.IsInnerClassReference = true
			if addRename(cd, inner) {
				outerCD.addInnerClass(cd)
			}
		}
	}

	// Static member classes: no outer reference, only the name.
	for _, cd := range ordered {
		if cd.IsInnerClass {
			continue
		}
		outer, inner, ok := splitNestedName(cd.Name)
		if !ok {
			continue
		}
		if outerCD, ok := byName[outer]; ok {
			outerCD.addInnerClass(cd)
			cd.IsStaticMemberClass = true
			addRename(cd, inner)
		}
	}

	for _, rn := range renames {
		if err := applyRename(all, names, rn); err != nil {
			return err
		}
		for _, shadow := range shadows[rn.cd] {
			followMarks(shadow, rn.cd)
		}
	}
	return nil
}

// followMarks copies the member-class marks and the name of winner onto an
// earlier descriptor of the same class.
func followMarks(shadow, winner *ClassDesc) {
	shadow.Name = winner.Name
	shadow.IsInnerClass = winner.IsInnerClass
	shadow.IsLocalInnerClass = winner.IsLocalInnerClass
	shadow.IsStaticMemberClass = winner.IsStaticMemberClass
	for _, f := range shadow.Fields {
		if f.Type == FieldObject && winner.IsInnerClass && isEnclosingFieldName(f.Name) {
			f.IsInnerClassReference = true
		}
	}
}

func applyRename(classes []*ClassDesc, names map[string]struct{}, rn rename) error {
	oldName := rn.cd.Name
	if _, ok := names[rn.newName]; ok {
		return newError(KindReconnect, -1, "can't rename class from %s to %s -- class already exists", oldName, rn.newName)
	}
	for _, cd := range classes {
		for _, f := range cd.Fields {
			if f.Type != FieldObject || f.JavaType() != oldName {
				continue
			}
			if err := f.SetReferenceTypeName(rn.newName); err != nil {
				return err
			}
		}
	}
	if _, ok := names[oldName]; !ok {
		return newError(KindReconnect, -1, "tried to remove %s from the class name set, but couldn't find it", oldName)
	}
	delete(names, oldName)
	names[rn.newName] = struct{}{}
	rn.cd.Name = rn.newName
	Logger().Debug("renamed member class", zap.String("from", oldName), zap.String("to", rn.newName))
	return nil
}
