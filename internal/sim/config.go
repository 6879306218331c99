package sim

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Modes.
const (
	ModeMQTT = "mqtt"
	ModeHTTP = "http"
)

type Config struct {
	Mode     string
	Interval time.Duration
	Seed     uint64

	// HTTP mode.
	BaseURL   string
	SecretKey string

	// MQTT mode.
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	MQTTTopic    string
}

func LoadFromEnv() (Config, error) {
	mode := strings.TrimSpace(os.Getenv("SIM_MODE"))
	if mode == "" {
		mode = ModeHTTP
	}
	switch mode {
	case ModeHTTP, ModeMQTT:
	default:
		return Config{}, fmt.Errorf("invalid SIM_MODE %q (allowed: http, mqtt)", mode)
	}

	intervalStr := strings.TrimSpace(os.Getenv("SIM_INTERVAL"))
	if intervalStr == "" {
		intervalStr = "30s"
	}
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SIM_INTERVAL %q: %w", intervalStr, err)
	}
	if interval <= 0 {
		return Config{}, fmt.Errorf("invalid SIM_INTERVAL %q: must be positive", intervalStr)
	}

	var seed uint64
	if s := strings.TrimSpace(os.Getenv("SIM_SEED")); s != "" {
		seed, err = strconv.ParseUint(s, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SIM_SEED %q: %w", s, err)
		}
	}

	baseURL := strings.TrimSpace(os.Getenv("SIM_BASE_URL"))
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	secretKey := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if mode == ModeHTTP && secretKey == "" {
		return Config{}, errors.New("SECRET_KEY is required when SIM_MODE=http")
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))
	if mqttBroker == "" {
		mqttBroker = "localhost"
	}
	mqttPort := 1883
	if s := strings.TrimSpace(os.Getenv("MQTT_PORT")); s != "" {
		mqttPort, err = strconv.Atoi(s)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", s, err)
		}
	}
	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "esp8266-sim"
	}
	mqttTopic := strings.TrimSpace(os.Getenv("MQTT_TOPIC"))
	if mqttTopic == "" {
		mqttTopic = "esp8266/readings"
	}

	return Config{
		Mode:         mode,
		Interval:     interval,
		Seed:         seed,
		BaseURL:      baseURL,
		SecretKey:    secretKey,
		MQTTBroker:   mqttBroker,
		MQTTPort:     mqttPort,
		MQTTClientID: mqttClientID,
		MQTTTopic:    mqttTopic,
	}, nil
}
