package bootstrap

import (
	"testing"

	"go.uber.org/zap"
)

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:            "mongodb://localhost:27017",
		MongoDatabase:       "teamlens",
		JWTSecret:           "secret",
		AlgorithmCommand:    "python3",
		AlgorithmMaxWorkers: 10,
	}
}

func TestValidateConfig_Valid(t *testing.T) {
	if err := ValidateConfig(nil, validAppConfig(), zap.NewNop()); err != nil {
		t.Fatalf("ValidateConfig failed: %v", err)
	}
}

func TestValidateConfig_BadMongoURI(t *testing.T) {
	cfg := validAppConfig()
	cfg.MongoURI = "not-a-mongo-uri"
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Error("expected error for invalid MongoDB URI")
	}
}

func TestValidateConfig_MissingJWTSecret(t *testing.T) {
	cfg := validAppConfig()
	cfg.JWTSecret = ""
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Error("expected error for empty jwt_secret")
	}
}

func TestValidateConfig_MissingAlgorithmCommand(t *testing.T) {
	cfg := validAppConfig()
	cfg.AlgorithmCommand = ""
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Error("expected error for empty algorithm_command")
	}
}

func TestValidateConfig_NegativeWorkers(t *testing.T) {
	cfg := validAppConfig()
	cfg.AlgorithmMaxWorkers = -1
	if err := ValidateConfig(nil, cfg, zap.NewNop()); err == nil {
		t.Error("expected error for negative algorithm_max_workers")
	}
}
