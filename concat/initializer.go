package concat

// Initializer names the fill applied to buffer positions that no
// component of the source concatenation writes: used when the source
// has a filler and there is no sink to pull the existing value from
// (a pure construction macro). InitNone seeds nothing: uncovered
// positions keep whatever the buffer already held.
type Initializer int

const (
	InitNone Initializer = iota
	InitZero
	InitUmax
	InitImax
	InitImin
	InitUone
	InitOpaque
)

// initWords maps the six initializer-word identifiers the macro
// grammar recognizes (as a lowercase identifier immediately followed
// by ':') to their Initializer value.
var initWords = map[string]Initializer{
	"zero":   InitZero,
	"umax":   InitUmax,
	"imax":   InitImax,
	"imin":   InitImin,
	"uone":   InitUone,
	"opaque": InitOpaque,
}

// seedInitializer fills every bit of buf per init. Concrete Fielders
// (the only kind Run works against today) have no representation for
// "unconstrained", so InitOpaque degrades to a zero fill; a symbolic
// Fielder wired in later could give it its own meaning.
func seedInitializer(buf Fielder, init Initializer) {
	w := buf.BW()
	switch init {
	case InitUmax:
		for i := 0; i < w; i++ {
			buf.SetBit(i, true)
		}
	case InitImax:
		for i := 0; i < w; i++ {
			buf.SetBit(i, i != w-1)
		}
	case InitImin:
		for i := 0; i < w; i++ {
			buf.SetBit(i, i == w-1)
		}
	case InitUone:
		for i := 0; i < w; i++ {
			buf.SetBit(i, i == 0)
		}
	default: // InitNone, InitZero, InitOpaque
		for i := 0; i < w; i++ {
			buf.SetBit(i, false)
		}
	}
}
