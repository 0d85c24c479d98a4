// internal/config/model.go
//
// Typed configuration model for FieldTrak.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                             – dotenv values,
//   • `conf/global.yaml`                          – primary static file,
//   • `FIELDTRAK_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *after* unmarshalling, so the rest of the app
// never sees Vault URIs—only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the MySQL DSN.  The DSN must include
// `parseTime=true&loc=UTC`; see internal/database.  The value may be a
// `vault:` URI resolved at load time so credentials stay out of flat
// files and git history.
type Database struct {
	DSN string `koanf:"dsn" validate:"required"`
}

//
// Auth section
//

// Auth holds token-issuance settings.  JWTSecret may be a `vault:` URI.
type Auth struct {
	JWTSecret     string `koanf:"jwt_secret" validate:"required"`
	AccessTTLMins int    `koanf:"access_ttl_mins" validate:"required,min=1"`
}

//
// Geo section
//

// Geo configures optional IP geolocation for request audit logs.  When
// CityDBPath is empty the lookup is skipped entirely.
type Geo struct {
	CityDBPath string `koanf:"city_db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or FIELDTRAK_ROOT override) so later code
// can build absolute file paths.
type Paths struct {
	Root string // FIELDTRAK_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Auth     Auth     `koanf:"auth"`
	Geo      Geo      `koanf:"geo"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
