package compiler

// ASCII boundary constants
const (
	// MaxASCIIRune is the exclusive upper bound for ASCII characters.
	// Class members below it are tested against the current byte, the rest
	// against the current rune.
	MaxASCIIRune = 128
)

// stubPanicPrefix prefixes the panic message emitted for stubs in strict mode.
const stubPanicPrefix = "regcps: "
