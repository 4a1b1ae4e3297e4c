package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/messagely/internal/flagx"
	"github.com/dmitrijs2005/messagely/internal/timex"
)

// JsonConfig is the on-disk JSON shape. Durations accept "30s" style strings
// or integer nanoseconds. Only keys present in the file override Config.
type JsonConfig struct {
	HTTPAddr              string          `json:"http_addr"`
	GRPCHealthAddr        string          `json:"grpc_health_addr"`
	DatabaseDSN           string          `json:"database_dsn"`
	SecretKey             string          `json:"secret_key"`
	BcryptCost            int             `json:"bcrypt_cost"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration"`
	RequestTimeout        *timex.Duration `json:"request_timeout"`
	LogLevel              string          `json:"log_level"`
	LogFormat             string          `json:"log_format"`

	NotifyTransport  string          `json:"notify_transport"`
	NotifyQueueSize  int             `json:"notify_queue_size"`
	NotifyWorkers    int             `json:"notify_workers"`
	NotifyMaxRetries int             `json:"notify_max_retries"`
	NotifyTimeout    *timex.Duration `json:"notify_timeout"`

	RabbitMQURL   string `json:"rabbitmq_url"`
	RabbitMQQueue string `json:"rabbitmq_queue"`

	TwilioAccountSID string `json:"twilio_account_sid"`
	TwilioAuthToken  string `json:"twilio_auth_token"`
	TwilioFromNumber string `json:"twilio_from_number"`
	TwilioToNumber   string `json:"twilio_to_number"`

	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
}

// parseJson overlays Config with the JSON file named by -c / -config.
// Without the flag nothing happens; unreadable or invalid files panic.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.HTTPAddr, jc.HTTPAddr)
	setString(&cfg.GRPCHealthAddr, jc.GRPCHealthAddr)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.SecretKey, jc.SecretKey)
	setInt(&cfg.BcryptCost, jc.BcryptCost)
	if jc.TokenValidityDuration != nil {
		cfg.TokenValidityDuration = jc.TokenValidityDuration.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)

	setString(&cfg.NotifyTransport, jc.NotifyTransport)
	setInt(&cfg.NotifyQueueSize, jc.NotifyQueueSize)
	setInt(&cfg.NotifyWorkers, jc.NotifyWorkers)
	setInt(&cfg.NotifyMaxRetries, jc.NotifyMaxRetries)
	if jc.NotifyTimeout != nil {
		cfg.NotifyTimeout = jc.NotifyTimeout.Duration
	}

	setString(&cfg.RabbitMQURL, jc.RabbitMQURL)
	setString(&cfg.RabbitMQQueue, jc.RabbitMQQueue)

	setString(&cfg.TwilioAccountSID, jc.TwilioAccountSID)
	setString(&cfg.TwilioAuthToken, jc.TwilioAuthToken)
	setString(&cfg.TwilioFromNumber, jc.TwilioFromNumber)
	setString(&cfg.TwilioToNumber, jc.TwilioToNumber)

	setString(&cfg.S3RootUser, jc.S3RootUser)
	setString(&cfg.S3RootPassword, jc.S3RootPassword)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
