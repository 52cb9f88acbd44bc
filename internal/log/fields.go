package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldSource      = "source"
	FieldRow         = "row"
	FieldRawDate     = "raw_date"
	FieldCategory    = "category"
	FieldMonth       = "month"
	FieldGranularity = "granularity"
	FieldRows        = "rows"
	FieldKept        = "kept"
	FieldDropped     = "dropped"
	FieldReclassed   = "reclassified"
	FieldShared      = "shared"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentDashboard = "dashboard"
	ComponentStorage   = "storage"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentBackend   = "backend"
	ComponentConfig    = "config"
	ComponentRateLimit = "rate_limit"
)

// Operations defines standard operation names
const (
	OpFetch     = "fetch"
	OpNormalize = "normalize"
	OpDerive    = "derive"
	OpImport    = "import"
	OpMigrate   = "migrate"
	OpRefresh   = "refresh"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)
