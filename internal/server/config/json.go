package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/jbarakanov/videohost/internal/flagx"
)

// JsonConfig is an intermediate DTO used only for reading JSON
// configuration files. Duration fields are given in seconds. After
// unmarshalling, set fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr            string `json:"endpoint_addr"`
	DatabaseDSN             string `json:"database_dsn"`
	SecretKey               string `json:"secret_key"`
	TokenValiditySeconds    int64  `json:"token_validity_seconds"`
	RedisAddr               string `json:"redis_addr"`
	UserListCacheTTLSeconds int64  `json:"user_list_cache_ttl_seconds"`
	MailQueueKey            string `json:"mail_queue_key"`
	S3RootUser              string `json:"s3_root_user"`
	S3RootPassword          string `json:"s3_root_password"`
	S3Bucket                string `json:"s3_bucket"`
	S3Region                string `json:"s3_region"`
	S3BaseEndpoint          string `json:"s3_base_endpoint"`
	SendgridAPIKey          string `json:"sendgrid_api_key"`
	MailFrom                string `json:"mail_from"`
	MaxUploadBytes          int64  `json:"max_upload_bytes"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path is taken from the -c or -config flags;
// if neither is set, no JSON file is loaded. Unknown or zero-valued JSON
// fields leave the current Config values untouched. If the file cannot be
// read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenValiditySeconds > 0 {
		config.TokenValidityDuration = time.Duration(c.TokenValiditySeconds) * time.Second
	}
	if c.RedisAddr != "" {
		config.RedisAddr = c.RedisAddr
	}
	if c.UserListCacheTTLSeconds > 0 {
		config.UserListCacheTTL = time.Duration(c.UserListCacheTTLSeconds) * time.Second
	}
	if c.MailQueueKey != "" {
		config.MailQueueKey = c.MailQueueKey
	}
	if c.S3RootUser != "" {
		config.S3RootUser = c.S3RootUser
	}
	if c.S3RootPassword != "" {
		config.S3RootPassword = c.S3RootPassword
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
	if c.SendgridAPIKey != "" {
		config.SendgridAPIKey = c.SendgridAPIKey
	}
	if c.MailFrom != "" {
		config.MailFrom = c.MailFrom
	}
	if c.MaxUploadBytes > 0 {
		config.MaxUploadBytes = c.MaxUploadBytes
	}
}
