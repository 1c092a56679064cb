package config

import "github.com/spf13/viper"

func Load() error {
	// API Configuration
	viper.SetDefault("API_ADDR", ":8080")
	viper.SetDefault("APP_ENV", "development")

	// Storage Configuration
	viper.SetDefault("USE_LOCAL_STORAGE", "true") // Toggle for local vs DynamoDB
	viper.SetDefault("LOCAL_DATA_DIR", "")

	// AWS Configuration
	viper.SetDefault("AWS_REGION", "eu-west-2")
	viper.SetDefault("ASSETS_TABLE", "water-tap-assets")
	viper.SetDefault("AUDIT_TABLE", "water-tap-audit-logs")
	viper.SetDefault("ASSET_TYPES_TABLE", "water-tap-asset-types")
	viper.SetDefault("AWS_SNS_TOPIC_ARN", "")
	viper.SetDefault("AWS_S3_BUCKET", "")
	viper.SetDefault("TEMPLATE_ARCHIVE_ENABLED", "false")

	viper.AutomaticEnv()
	return nil
}

func APIAddr() string         { return viper.GetString("API_ADDR") }
func AppEnv() string          { return viper.GetString("APP_ENV") }
func UseLocalStorage() bool   { return viper.GetBool("USE_LOCAL_STORAGE") }
func LocalDataDir() string    { return viper.GetString("LOCAL_DATA_DIR") }
func AWSRegion() string       { return viper.GetString("AWS_REGION") }
func AssetsTable() string     { return viper.GetString("ASSETS_TABLE") }
func AuditTable() string      { return viper.GetString("AUDIT_TABLE") }
func AssetTypesTable() string { return viper.GetString("ASSET_TYPES_TABLE") }
func SNSTopicArn() string     { return viper.GetString("AWS_SNS_TOPIC_ARN") }
func S3Bucket() string        { return viper.GetString("AWS_S3_BUCKET") }
func TemplateArchiveOn() bool { return viper.GetBool("TEMPLATE_ARCHIVE_ENABLED") }
func IsProduction() bool      { return viper.GetString("APP_ENV") == "production" }
