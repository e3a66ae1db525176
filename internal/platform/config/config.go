package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

const (
	defaultEnvFile              = ".env"
	defaultPort                 = "8080"
	defaultReadTimeout          = 15 * time.Second
	defaultWriteTimeout         = 30 * time.Second
	defaultIdleTimeout          = 120 * time.Second
	defaultEnvironment          = "local"
	defaultStateBackend         = StateBackendMemory
	defaultStateCollection      = "storefront_state"
	defaultDeliveryFee          = "10"
	defaultFreeDeliveryAbove    = "100"
	defaultMessageFee           = "5"
	defaultCurrency             = "USD"
	defaultLocale               = "en-US"
	defaultTimezone             = "UTC"
	defaultCoupons              = "WELCOME10=0.10,BIRTHDAY15=0.15"
	defaultSessionTTL           = 2 * time.Hour
	defaultIdempotencyHeader    = "Idempotency-Key"
	defaultIdempotencyTTL       = 24 * time.Hour
	defaultIdempotencyInterval  = time.Hour
	defaultIdempotencyBatchSize = 200
)

const (
	// StateBackendMemory keeps the cart and order mirror in process memory.
	StateBackendMemory = "memory"
	// StateBackendFirestore mirrors the cart and order collections to Firestore.
	StateBackendFirestore = "firestore"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Environment string
	Server      ServerConfig
	State       StateConfig
	Firestore   FirestoreConfig
	PubSub      PubSubConfig
	Catalog     CatalogConfig
	Pricing     PricingConfig
	Promotions  PromotionsConfig
	Customizer  CustomizerConfig
	DemoUser    DemoUserConfig
	Idempotency IdempotencyConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StateConfig selects the persistence mirror backend.
type StateConfig struct {
	Backend string
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID       string
	EmulatorHost    string
	StateCollection string
}

// PubSubConfig configures order event publishing. An empty topic disables it.
type PubSubConfig struct {
	ProjectID    string
	OrderTopic   string
	EmulatorHost string
}

// CatalogConfig points at an optional YAML catalog override.
type CatalogConfig struct {
	File   string
	Bucket string
	Object string
}

// PricingConfig holds checkout fees and presentation settings.
type PricingConfig struct {
	DeliveryFee           decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
	MessageFee            decimal.Decimal
	Currency              string
	Locale                string
	Location              *time.Location
}

// PromotionsConfig lists coupon codes and their discount rates.
type PromotionsConfig struct {
	Coupons map[string]decimal.Decimal
}

// CustomizerConfig controls in-progress configuration sessions.
type CustomizerConfig struct {
	SessionTTL time.Duration
}

// DemoUserConfig describes the signed-in user supplied to the storefront. An empty
// ID means visitors are anonymous.
type DemoUserConfig struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Address   string
	Favorites []string
}

// IdempotencyConfig controls idempotency middleware behaviour.
type IdempotencyConfig struct {
	Header           string
	TTL              time.Duration
	CleanupInterval  time.Duration
	CleanupBatchSize int
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map that takes precedence over the process environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration from defaults, the .env file, the process
// environment and any explicit map, in increasing order of precedence.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return Config{}, err
		}
	}

	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if value, ok := options.envMap[key]; ok {
			return value, true
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		value, ok := dotEnvValues[key]
		return value, ok
	}

	var invalid []string
	decimalField := func(key, fallback, field string) decimal.Decimal {
		value, err := decimalWithDefault(lookup, key, fallback)
		if err != nil {
			invalid = append(invalid, field)
		}
		return value
	}

	cfg := Config{
		Environment: strings.ToLower(stringWithDefault(lookup, "API_ENVIRONMENT", defaultEnvironment)),
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "API_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "API_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "API_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "API_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		State: StateConfig{
			Backend: strings.ToLower(stringWithDefault(lookup, "API_STATE_BACKEND", defaultStateBackend)),
		},
		Firestore: FirestoreConfig{
			ProjectID:       stringWithDefault(lookup, "API_FIRESTORE_PROJECT_ID", ""),
			EmulatorHost:    stringWithDefault(lookup, "API_FIRESTORE_EMULATOR_HOST", ""),
			StateCollection: stringWithDefault(lookup, "API_FIRESTORE_STATE_COLLECTION", defaultStateCollection),
		},
		PubSub: PubSubConfig{
			ProjectID:    stringWithDefault(lookup, "API_PUBSUB_PROJECT_ID", ""),
			OrderTopic:   stringWithDefault(lookup, "API_PUBSUB_ORDER_TOPIC", ""),
			EmulatorHost: stringWithDefault(lookup, "API_PUBSUB_EMULATOR_HOST", ""),
		},
		Catalog: CatalogConfig{
			File:   stringWithDefault(lookup, "API_CATALOG_FILE", ""),
			Bucket: stringWithDefault(lookup, "API_CATALOG_BUCKET", ""),
			Object: stringWithDefault(lookup, "API_CATALOG_OBJECT", ""),
		},
		Pricing: PricingConfig{
			DeliveryFee:           decimalField("API_PRICING_DELIVERY_FEE", defaultDeliveryFee, "Pricing.DeliveryFee"),
			FreeDeliveryThreshold: decimalField("API_PRICING_FREE_DELIVERY_THRESHOLD", defaultFreeDeliveryAbove, "Pricing.FreeDeliveryThreshold"),
			MessageFee:            decimalField("API_PRICING_MESSAGE_FEE", defaultMessageFee, "Pricing.MessageFee"),
			Currency:              strings.ToUpper(stringWithDefault(lookup, "API_PRICING_CURRENCY", defaultCurrency)),
			Locale:                stringWithDefault(lookup, "API_PRICING_LOCALE", defaultLocale),
		},
		Customizer: CustomizerConfig{
			SessionTTL: durationWithDefault(lookup, "API_CUSTOMIZER_SESSION_TTL", defaultSessionTTL),
		},
		DemoUser: DemoUserConfig{
			ID:        stringWithDefault(lookup, "API_DEMO_USER_ID", ""),
			Name:      stringWithDefault(lookup, "API_DEMO_USER_NAME", ""),
			Email:     stringWithDefault(lookup, "API_DEMO_USER_EMAIL", ""),
			Phone:     stringWithDefault(lookup, "API_DEMO_USER_PHONE", ""),
			Address:   stringWithDefault(lookup, "API_DEMO_USER_ADDRESS", ""),
			Favorites: csvWithDefault(lookup, "API_DEMO_USER_FAVORITES"),
		},
		Idempotency: IdempotencyConfig{
			Header:           stringWithDefault(lookup, "API_IDEMPOTENCY_HEADER", defaultIdempotencyHeader),
			TTL:              durationWithDefault(lookup, "API_IDEMPOTENCY_TTL", defaultIdempotencyTTL),
			CleanupInterval:  durationWithDefault(lookup, "API_IDEMPOTENCY_CLEANUP_INTERVAL", defaultIdempotencyInterval),
			CleanupBatchSize: intWithDefault(lookup, "API_IDEMPOTENCY_CLEANUP_BATCH", defaultIdempotencyBatchSize),
		},
	}

	// Pub/Sub shares the Firestore project unless configured separately.
	if cfg.PubSub.ProjectID == "" {
		cfg.PubSub.ProjectID = cfg.Firestore.ProjectID
	}

	location, err := time.LoadLocation(stringWithDefault(lookup, "API_PRICING_TIMEZONE", defaultTimezone))
	if err != nil {
		invalid = append(invalid, "Pricing.Location")
		location = time.UTC
	}
	cfg.Pricing.Location = location

	coupons, err := parseCoupons(stringWithDefault(lookup, "API_PROMOTIONS_COUPONS", defaultCoupons))
	if err != nil {
		invalid = append(invalid, "Promotions.Coupons")
	}
	cfg.Promotions.Coupons = coupons

	if err := validateConfig(cfg, invalid); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config, invalid []string) error {
	fields := append([]string(nil), invalid...)

	if cfg.Server.Port == "" {
		fields = append(fields, "Server.Port")
	}
	switch cfg.State.Backend {
	case StateBackendMemory:
	case StateBackendFirestore:
		if cfg.Firestore.ProjectID == "" {
			fields = append(fields, "Firestore.ProjectID")
		}
		if strings.TrimSpace(cfg.Firestore.StateCollection) == "" {
			fields = append(fields, "Firestore.StateCollection")
		}
	default:
		fields = append(fields, "State.Backend")
	}
	if cfg.PubSub.OrderTopic != "" && cfg.PubSub.ProjectID == "" {
		fields = append(fields, "PubSub.ProjectID")
	}
	if (cfg.Catalog.Bucket == "") != (cfg.Catalog.Object == "") {
		fields = append(fields, "Catalog.Object")
	}
	if cfg.Pricing.DeliveryFee.IsNegative() {
		fields = append(fields, "Pricing.DeliveryFee")
	}
	if cfg.Pricing.FreeDeliveryThreshold.IsNegative() {
		fields = append(fields, "Pricing.FreeDeliveryThreshold")
	}
	if cfg.Pricing.MessageFee.IsNegative() {
		fields = append(fields, "Pricing.MessageFee")
	}
	if _, err := currency.ParseISO(cfg.Pricing.Currency); err != nil {
		fields = append(fields, "Pricing.Currency")
	}
	if _, err := language.Parse(cfg.Pricing.Locale); err != nil {
		fields = append(fields, "Pricing.Locale")
	}
	if cfg.Customizer.SessionTTL <= 0 {
		fields = append(fields, "Customizer.SessionTTL")
	}
	if strings.TrimSpace(cfg.Idempotency.Header) == "" {
		fields = append(fields, "Idempotency.Header")
	}
	if cfg.Idempotency.TTL <= 0 {
		fields = append(fields, "Idempotency.TTL")
	}
	if cfg.Idempotency.CleanupInterval <= 0 {
		fields = append(fields, "Idempotency.CleanupInterval")
	}
	if cfg.Idempotency.CleanupBatchSize <= 0 {
		fields = append(fields, "Idempotency.CleanupBatchSize")
	}

	if len(fields) > 0 {
		sort.Strings(fields)
		return &ValidationError{fields: fields}
	}
	return nil
}

// parseCoupons reads CODE=RATE pairs. Codes are upper-cased; rates must lie in (0, 1].
func parseCoupons(raw string) (map[string]decimal.Decimal, error) {
	coupons := make(map[string]decimal.Decimal)
	var bad []string
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		code, rateRaw, found := strings.Cut(entry, "=")
		code = strings.ToUpper(strings.TrimSpace(code))
		if !found || code == "" {
			bad = append(bad, entry)
			continue
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(rateRaw))
		if err != nil || !rate.IsPositive() || rate.GreaterThan(decimal.NewFromInt(1)) {
			bad = append(bad, entry)
			continue
		}
		coupons[code] = rate
	}
	if len(bad) > 0 {
		return coupons, fmt.Errorf("config: invalid coupon entries %v", bad)
	}
	return coupons, nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, found := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func decimalWithDefault(lookup func(string) (string, bool), key, fallback string) (decimal.Decimal, error) {
	raw := stringWithDefault(lookup, key, fallback)
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.RequireFromString(fallback), err
	}
	return value, nil
}

func csvWithDefault(lookup func(string) (string, bool), key string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
