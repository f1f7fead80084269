package core

// ObjectClass is the IGC/UDK class of a catalog object (column obj_class).
type ObjectClass string

// Known IGC object classes.
const (
	ClassJob         ObjectClass = "0"
	ClassGeodata     ObjectClass = "1"
	ClassDocument    ObjectClass = "2"
	ClassService     ObjectClass = "3"
	ClassProject     ObjectClass = "4"
	ClassDatabase    ObjectClass = "5"
	ClassApplication ObjectClass = "6"
)

// Valid reports whether the class is one of 0..6.
func (c ObjectClass) Valid() bool {
	switch c {
	case ClassJob, ClassGeodata, ClassDocument, ClassService, ClassProject, ClassDatabase, ClassApplication:
		return true
	}
	return false
}

// IsServiceLike reports whether records of this class are described as
// ISO 19119 services (services and applications).
func (c ObjectClass) IsServiceLike() bool {
	return c == ClassService || c == ClassApplication
}
