// Package config provides configuration loading and management for the entries server.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/entries-server/internal/service"
	"github.com/stacklok/entries-server/internal/telemetry"
	"github.com/stacklok/entries-server/pkg/versions"
)

// Storage backends
const (
	// StorageTypeMemory keeps entries, trees and revisions in process memory
	StorageTypeMemory = "memory"

	// StorageTypeDatabase stores everything in PostgreSQL
	StorageTypeDatabase = "database"
)

// Search index backends
const (
	// SearchTypeMemory uses the in-process inverted index
	SearchTypeMemory = "memory"

	// SearchTypeDatabase uses PostgreSQL full-text search
	SearchTypeDatabase = "database"
)

// Authentication modes
const (
	// AuthModeAnonymous treats every request as the configured anonymous user
	AuthModeAnonymous = "anonymous"

	// AuthModeJWT validates bearer tokens
	AuthModeJWT = "jwt"
)

// DefaultBasePath is the path prefix of the control panel API
const DefaultBasePath = "/api/v1"

// EnvPrefix is the prefix of the environment variables read by the server
const EnvPrefix = "ENTRIES"

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks; this also cleans the path.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// RequiredVersion is a semver constraint the server version must meet
	RequiredVersion string `yaml:"requiredVersion,omitempty"`

	Server        ServerConfig         `yaml:"server,omitempty"`
	Storage       StorageConfig        `yaml:"storage,omitempty"`
	Database      *DatabaseConfig      `yaml:"database,omitempty"`
	Redis         *RedisConfig         `yaml:"redis,omitempty"`
	Search        SearchConfig         `yaml:"search,omitempty"`
	BlueprintsDir string               `yaml:"blueprintsDir"`
	Sites         []service.Site       `yaml:"sites"`
	Collections   []service.Collection `yaml:"collections"`
	Assets        AssetsConfig         `yaml:"assets,omitempty"`
	Auth          *AuthConfig          `yaml:"auth,omitempty"`
	Authz         *AuthzConfig         `yaml:"authz,omitempty"`
	Telemetry     *telemetry.Config    `yaml:"telemetry,omitempty"`
}

// ServerConfig defines HTTP settings
type ServerConfig struct {
	// BasePath is the prefix of the API routes. Defaults to /api/v1.
	BasePath string `yaml:"basePath,omitempty"`

	// CPPath is the control panel prefix used when building edit URLs.
	// Defaults to BasePath.
	CPPath string `yaml:"cpPath,omitempty"`

	// RequestTimeout bounds each request (e.g., "30s")
	RequestTimeout string `yaml:"requestTimeout,omitempty"`
}

// GetBasePath returns the API prefix, using DefaultBasePath if not specified
func (s *ServerConfig) GetBasePath() string {
	if s.BasePath == "" {
		return DefaultBasePath
	}
	return strings.TrimSuffix(s.BasePath, "/")
}

// GetCPPath returns the control panel prefix
func (s *ServerConfig) GetCPPath() string {
	if s.CPPath == "" {
		return s.GetBasePath()
	}
	return strings.TrimSuffix(s.CPPath, "/")
}

// GetRequestTimeout returns the request timeout, 30s if not specified
func (s *ServerConfig) GetRequestTimeout() time.Duration {
	if d, err := time.ParseDuration(s.RequestTimeout); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Type string `yaml:"type,omitempty"`

	// SeedFile is a YAML list of entries loaded into memory storage at startup
	SeedFile string `yaml:"seedFile,omitempty"`
}

// GetType returns the storage type, memory if not specified
func (s *StorageConfig) GetType() string {
	if s.Type == "" {
		return StorageTypeMemory
	}
	return s.Type
}

// SearchConfig selects the search index backend
type SearchConfig struct {
	Type string `yaml:"type,omitempty"`
}

// GetType returns the search type, memory if not specified
func (s *SearchConfig) GetType() string {
	if s.Type == "" {
		return SearchTypeMemory
	}
	return s.Type
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password.
	// The file should contain only the password with optional trailing whitespace
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int32 `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`

	// DynamicAuth replaces the static password with short-lived credentials
	DynamicAuth *DynamicAuthConfig `yaml:"dynamicAuth,omitempty"`

	// MigrateOnStart applies pending migrations before serving
	MigrateOnStart bool `yaml:"migrateOnStart,omitempty"`
}

// DynamicAuthConfig configures password providers evaluated per connection
type DynamicAuthConfig struct {
	AWSRDSIAM *AWSRDSIAMConfig `yaml:"awsRdsIam,omitempty"`
}

// AWSRDSIAMConfig configures RDS IAM authentication tokens
type AWSRDSIAMConfig struct {
	// Region of the RDS instance. When empty it is detected from the
	// instance metadata service.
	Region string `yaml:"region,omitempty"`
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from ENTRIES_DATABASE_PASSWORD environment variable
//
// The password from file will have leading/trailing whitespace trimmed.
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		return readSecretFile(d.PasswordFile)
	}

	if envPassword := os.Getenv("ENTRIES_DATABASE_PASSWORD"); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile or ENTRIES_DATABASE_PASSWORD environment variable",
	)
}

// GetConnectionString builds a PostgreSQL connection string with proper password handling.
// The password is URL-escaped to handle special characters safely. With
// dynamic authentication the password is omitted and supplied per connection.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	userInfo := url.User(d.User)
	if d.DynamicAuth == nil || d.DynamicAuth.AWSRDSIAM == nil {
		password, err := d.GetPassword()
		if err != nil {
			return "", err
		}
		userInfo = url.UserPassword(d.User, password)
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Database,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	return u.String(), nil
}

// GetConnMaxLifetime parses ConnMaxLifetime, returning zero when unset
func (d *DatabaseConfig) GetConnMaxLifetime() (time.Duration, error) {
	if d.ConnMaxLifetime == "" {
		return 0, nil
	}
	return time.ParseDuration(d.ConnMaxLifetime)
}

// RedisConfig enables the Redis working-copy store
type RedisConfig struct {
	Addr         string `yaml:"addr"`
	PasswordFile string `yaml:"passwordFile,omitempty"`
	DB           int    `yaml:"db,omitempty"`
	KeyPrefix    string `yaml:"keyPrefix,omitempty"`
}

// GetPassword reads the Redis password, empty when no file is configured
func (r *RedisConfig) GetPassword() (string, error) {
	if r.PasswordFile == "" {
		return "", nil
	}
	return readSecretFile(r.PasswordFile)
}

// GetKeyPrefix returns the key prefix, "entries:" if not specified
func (r *RedisConfig) GetKeyPrefix() string {
	if r.KeyPrefix == "" {
		return "entries:"
	}
	return r.KeyPrefix
}

// AssetsConfig lists the asset containers entries may reference
type AssetsConfig struct {
	Containers []AssetContainerConfig `yaml:"containers,omitempty"`
}

// AssetContainerConfig defines one container; exactly one backend is set
type AssetContainerConfig struct {
	Handle string                `yaml:"handle"`
	Local  *LocalContainerConfig `yaml:"local,omitempty"`
	S3     *S3ContainerConfig    `yaml:"s3,omitempty"`
}

// LocalContainerConfig serves assets from a directory
type LocalContainerConfig struct {
	Dir string `yaml:"dir"`
	URL string `yaml:"url"`
}

// S3ContainerConfig serves assets from an S3 bucket
type S3ContainerConfig struct {
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix,omitempty"`
	Region       string `yaml:"region,omitempty"`
	Endpoint     string `yaml:"endpoint,omitempty"`
	URL          string `yaml:"url,omitempty"`
	UsePathStyle bool   `yaml:"usePathStyle,omitempty"`
}

// AuthConfig defines how requests are authenticated
type AuthConfig struct {
	Mode          string         `yaml:"mode,omitempty"`
	JWT           *JWTConfig     `yaml:"jwt,omitempty"`
	AnonymousUser *AnonymousUser `yaml:"anonymousUser,omitempty"`
	PublicPaths   []string       `yaml:"publicPaths,omitempty"`
}

// JWTConfig configures bearer token validation. Exactly one of
// HMACSecretFile and PublicKeyFile must be set.
type JWTConfig struct {
	Issuer         string `yaml:"issuer,omitempty"`
	Audience       string `yaml:"audience,omitempty"`
	HMACSecretFile string `yaml:"hmacSecretFile,omitempty"`
	PublicKeyFile  string `yaml:"publicKeyFile,omitempty"`
	Realm          string `yaml:"realm,omitempty"`
	Leeway         string `yaml:"leeway,omitempty"`
}

// GetHMACSecret reads the shared secret
func (j *JWTConfig) GetHMACSecret() ([]byte, error) {
	secret, err := readSecretFile(j.HMACSecretFile)
	if err != nil {
		return nil, err
	}
	return []byte(secret), nil
}

// GetPublicKey reads the PEM encoded verification key
func (j *JWTConfig) GetPublicKey() ([]byte, error) {
	data, err := os.ReadFile(filepath.Clean(j.PublicKeyFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read public key from file %s: %w", j.PublicKeyFile, err)
	}
	return data, nil
}

// GetLeeway returns the allowed clock skew, zero when unset or invalid
func (j *JWTConfig) GetLeeway() time.Duration {
	d, err := time.ParseDuration(j.Leeway)
	if err != nil {
		return 0
	}
	return d
}

// AnonymousUser is the acting user of unauthenticated requests
type AnonymousUser struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name,omitempty"`
	Email       string   `yaml:"email,omitempty"`
	Super       bool     `yaml:"super,omitempty"`
	Permissions []string `yaml:"permissions,omitempty"`
}

// ActingUser converts the anonymous user configuration
func (a *AnonymousUser) ActingUser() *service.ActingUser {
	if a == nil {
		return &service.ActingUser{ID: "anonymous", Name: "Anonymous", Super: true}
	}
	return &service.ActingUser{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		Super:       a.Super,
		Permissions: slices.Clone(a.Permissions),
	}
}

// AuthzConfig configures the authorization gate
type AuthzConfig struct {
	// PolicyFile replaces the built-in Cedar policies
	PolicyFile string `yaml:"policyFile,omitempty"`

	// ScopeMapping grants permissions for OAuth scopes found in tokens
	ScopeMapping []ScopeMappingEntry `yaml:"scopeMapping,omitempty"`
}

// ScopeMappingEntry maps one OAuth scope to permissions
type ScopeMappingEntry struct {
	Scope       string   `yaml:"scope"`
	Permissions []string `yaml:"permissions"`
}

// LoadPolicies returns the custom policy file contents, nil when unset
func (a *AuthzConfig) LoadPolicies() ([]byte, error) {
	if a == nil || a.PolicyFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(filepath.Clean(a.PolicyFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file %s: %w", a.PolicyFile, err)
	}
	return data, nil
}

// GetScopeMapping returns the configured mapping, nil safe
func (a *AuthzConfig) GetScopeMapping() []ScopeMappingEntry {
	if a == nil {
		return nil
	}
	return a.ScopeMapping
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	// Relative directories are resolved against the config file
	config.resolvePaths(filepath.Dir(loaderCfg.path))

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c *Config) resolvePaths(base string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.BlueprintsDir = resolve(c.BlueprintsDir)
	c.Storage.SeedFile = resolve(c.Storage.SeedFile)
	for i := range c.Assets.Containers {
		if local := c.Assets.Containers[i].Local; local != nil {
			local.Dir = resolve(local.Dir)
		}
	}
}

// FindSite returns the site configuration for a handle
func (c *Config) FindSite(handle string) (*service.Site, bool) {
	for i := range c.Sites {
		if c.Sites[i].Handle == handle {
			return &c.Sites[i], true
		}
	}
	return nil, false
}

func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := c.validateVersion(versions.GetVersionInfo().Version); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateSites(); err != nil {
		return err
	}
	if err := c.validateCollections(); err != nil {
		return err
	}
	if err := c.validateAssets(); err != nil {
		return err
	}
	if err := c.validateAuth(); err != nil {
		return err
	}
	if _, err := time.ParseDuration(c.Server.RequestTimeout); c.Server.RequestTimeout != "" && err != nil {
		return fmt.Errorf("server.requestTimeout must be a valid duration: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	return nil
}

func (c *Config) validateVersion(running string) error {
	if c.RequiredVersion == "" {
		return nil
	}
	ok, err := versions.Satisfies(running, c.RequiredVersion)
	if err != nil {
		return fmt.Errorf("requiredVersion: %w", err)
	}
	if !ok {
		return fmt.Errorf("server version %s does not satisfy requiredVersion %q", running, c.RequiredVersion)
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.GetType() {
	case StorageTypeMemory:
	case StorageTypeDatabase:
		if c.Storage.SeedFile != "" {
			return fmt.Errorf("storage.seedFile is only supported for storage type %s", StorageTypeMemory)
		}
		if c.Database == nil {
			return fmt.Errorf("database configuration is required for storage type %s", StorageTypeDatabase)
		}
		if _, err := c.Database.GetConnMaxLifetime(); err != nil {
			return fmt.Errorf("database.connMaxLifetime must be a valid duration: %w", err)
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	switch c.Search.GetType() {
	case SearchTypeMemory:
	case SearchTypeDatabase:
		if c.Storage.GetType() != StorageTypeDatabase {
			return fmt.Errorf("search type %s requires storage type %s", SearchTypeDatabase, StorageTypeDatabase)
		}
	default:
		return fmt.Errorf("unsupported search type: %s", c.Search.Type)
	}

	if c.Redis != nil && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	return nil
}

func (c *Config) validateSites() error {
	if len(c.Sites) == 0 {
		return fmt.Errorf("at least one site must be configured")
	}
	seen := make(map[string]bool)
	for i, s := range c.Sites {
		if s.Handle == "" {
			return fmt.Errorf("sites[%d]: handle is required", i)
		}
		if seen[s.Handle] {
			return fmt.Errorf("sites[%d]: duplicate site handle '%s'", i, s.Handle)
		}
		seen[s.Handle] = true
	}
	return nil
}

func (c *Config) validateCollections() error {
	seen := make(map[string]bool)
	for i := range c.Collections {
		col := &c.Collections[i]
		prefix := fmt.Sprintf("collections[%d] (%s)", i, col.Handle)
		if col.Handle == "" {
			return fmt.Errorf("collections[%d]: handle is required", i)
		}
		if seen[col.Handle] {
			return fmt.Errorf("%s: duplicate collection handle", prefix)
		}
		seen[col.Handle] = true

		if len(col.Sites) == 0 {
			col.Sites = []string{c.Sites[0].Handle}
		}
		for _, site := range col.Sites {
			if _, ok := c.FindSite(site); !ok {
				return fmt.Errorf("%s: unknown site '%s'", prefix, site)
			}
		}
		switch col.SortDirection {
		case "", service.SortAsc, service.SortDesc:
		default:
			return fmt.Errorf("%s: sortDirection must be %s or %s", prefix, service.SortAsc, service.SortDesc)
		}
		if col.MaxDepth < 0 {
			return fmt.Errorf("%s: maxDepth cannot be negative", prefix)
		}
	}
	return nil
}

func (c *Config) validateAssets() error {
	seen := make(map[string]bool)
	for i, container := range c.Assets.Containers {
		prefix := fmt.Sprintf("assets.containers[%d] (%s)", i, container.Handle)
		if container.Handle == "" {
			return fmt.Errorf("assets.containers[%d]: handle is required", i)
		}
		if seen[container.Handle] {
			return fmt.Errorf("%s: duplicate container handle", prefix)
		}
		seen[container.Handle] = true

		switch {
		case container.Local != nil && container.S3 != nil:
			return fmt.Errorf("%s: only one of local or s3 may be specified", prefix)
		case container.Local != nil:
			if container.Local.Dir == "" {
				return fmt.Errorf("%s: local.dir is required", prefix)
			}
		case container.S3 != nil:
			if container.S3.Bucket == "" {
				return fmt.Errorf("%s: s3.bucket is required", prefix)
			}
		default:
			return fmt.Errorf("%s: one of local or s3 must be specified", prefix)
		}
	}
	return nil
}

func (c *Config) validateAuth() error {
	if c.Auth == nil {
		return nil
	}
	switch c.Auth.Mode {
	case "", AuthModeAnonymous:
		return nil
	case AuthModeJWT:
		jwt := c.Auth.JWT
		if jwt == nil {
			return fmt.Errorf("auth.jwt is required for mode %s", AuthModeJWT)
		}
		if (jwt.HMACSecretFile == "") == (jwt.PublicKeyFile == "") {
			return fmt.Errorf("auth.jwt: exactly one of hmacSecretFile or publicKeyFile must be set")
		}
		if jwt.Leeway != "" {
			if _, err := time.ParseDuration(jwt.Leeway); err != nil {
				return fmt.Errorf("auth.jwt.leeway must be a valid duration: %w", err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported auth mode: %s", c.Auth.Mode)
	}
}

func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to read secret from file %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}
