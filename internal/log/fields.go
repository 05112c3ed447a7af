package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldBackend    = "backend"
	FieldPolicy     = "policy"
	FieldPriceCents = "price_cents"
)

// Components defines standard component names for the binaries
const (
	ComponentApp     = "app"
	ComponentWorker  = "worker"
	ComponentCharger = "charger"
)
