package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every runtime setting of the service.
type Config struct {
	Server  ServerConfig
	Widget  WidgetConfig
	AI      AIConfig
	Archive ArchiveConfig
	Notify  NotifyConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	widget, err := loadWidgetConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		Widget:  widget,
		AI:      ai,
		Archive: loadArchiveConfig(),
		Notify:  loadNotifyConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// WidgetConfig carries everything the embedded widget consumes: display
// identity, canned texts, simulated latencies and the proactive trigger rules.
type WidgetConfig struct {
	BotName          string
	WelcomeMessage   string
	OfflineMessage   string
	ProactiveMessage string
	TypingIndicator  bool
	ButtonCorner     string

	ResponseDelay time.Duration
	ConnectDelay  time.Duration

	ProactiveDelay         time.Duration
	ProactiveCheckoutDelay time.Duration
	ProactivePaths         []string
}

// PathAllowed reports whether the proactive trigger may arm on the given page.
func (c WidgetConfig) PathAllowed(path string) bool {
	for _, prefix := range c.ProactivePaths {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// IsCheckoutPath classifies checkout-like pages, which use the longer delay.
func (c WidgetConfig) IsCheckoutPath(path string) bool {
	return strings.Contains(path, "checkout") || strings.Contains(path, "cart")
}

// ProactiveDelayFor picks the proactive delay for a page path.
func (c WidgetConfig) ProactiveDelayFor(path string) time.Duration {
	if c.IsCheckoutPath(path) {
		return c.ProactiveCheckoutDelay
	}
	return c.ProactiveDelay
}

func loadWidgetConfig() (WidgetConfig, error) {
	typing, err := parseBoolEnv("WIDGET_TYPING_INDICATOR", true)
	if err != nil {
		return WidgetConfig{}, err
	}

	responseDelay, err := parseDurationMsEnv("WIDGET_RESPONSE_DELAY_MS", 1200*time.Millisecond)
	if err != nil {
		return WidgetConfig{}, err
	}

	connectDelay, err := parseDurationMsEnv("WIDGET_CONNECT_DELAY_MS", 2*time.Second)
	if err != nil {
		return WidgetConfig{}, err
	}

	proactiveDelay, err := parseDurationMsEnv("WIDGET_PROACTIVE_DELAY_MS", 30*time.Second)
	if err != nil {
		return WidgetConfig{}, err
	}

	proactiveCheckoutDelay, err := parseDurationMsEnv("WIDGET_PROACTIVE_CHECKOUT_DELAY_MS", 45*time.Second)
	if err != nil {
		return WidgetConfig{}, err
	}

	paths := strings.Split(getEnvOrDefault("WIDGET_PROACTIVE_PATHS", "/,/products,/cart,/checkout"), ",")
	for i := range paths {
		paths[i] = strings.TrimSpace(paths[i])
	}

	return WidgetConfig{
		BotName:          getEnvOrDefault("WIDGET_BOT_NAME", "Mia"),
		WelcomeMessage:   getEnvOrDefault("WIDGET_WELCOME_MESSAGE", "Hi! I'm your shopping assistant. How can I help you today?"),
		OfflineMessage:   getEnvOrDefault("WIDGET_OFFLINE_MESSAGE", "We're offline right now. Leave a message and we'll get back to you by email."),
		ProactiveMessage: getEnvOrDefault("WIDGET_PROACTIVE_MESSAGE", "Need a hand with anything? I'm right here if you have questions."),
		TypingIndicator:  typing,
		ButtonCorner:     getEnvOrDefault("WIDGET_BUTTON_CORNER", "bottom-right"),

		ResponseDelay: responseDelay,
		ConnectDelay:  connectDelay,

		ProactiveDelay:         proactiveDelay,
		ProactiveCheckoutDelay: proactiveCheckoutDelay,
		ProactivePaths:         paths,
	}, nil
}

// AIConfig describes the optional LLM-assisted fallback responder.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials were provided.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds an Ark chat model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + ARK_MODEL, or the AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

// ArchiveConfig describes the optional Mongo transcript archive.
type ArchiveConfig struct {
	MongoURI string
	Database string
}

// Enabled reports whether an archive target was configured.
func (c ArchiveConfig) Enabled() bool {
	return c.MongoURI != ""
}

func loadArchiveConfig() ArchiveConfig {
	return ArchiveConfig{
		MongoURI: strings.TrimSpace(os.Getenv("MONGO_URI")),
		Database: getEnvOrDefault("MONGO_DB", "shopmate"),
	}
}

// NotifyConfig describes the optional Redis handoff notifier.
type NotifyConfig struct {
	RedisAddr     string
	RedisPassword string
	Channel       string
}

// Enabled reports whether a Redis target was configured.
func (c NotifyConfig) Enabled() bool {
	return c.RedisAddr != ""
}

func loadNotifyConfig() NotifyConfig {
	return NotifyConfig{
		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		Channel:       getEnvOrDefault("REDIS_HANDOFF_CHANNEL", "support-handoffs"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseDurationMsEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	ms, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if ms < 0 {
		return 0, fmt.Errorf("invalid %s value %q: must not be negative", key, raw)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
